package properties

import (
	"context"

	googleClient "carsensor/internal/client/google"

	"go.uber.org/zap"
)

type RepositoryDrive struct {
	logger *zap.Logger
	client *googleClient.Client
}

func NewRepositoryDrive(logger *zap.Logger, client *googleClient.Client) *RepositoryDrive {
	return &RepositoryDrive{
		logger: logger,
		client: client,
	}
}

func (r *RepositoryDrive) Authenticate(ctx context.Context) error {
	_, err := r.client.Authenticate(ctx)
	return err
}

func (r *RepositoryDrive) Workbook(ctx context.Context, fileId string) ([]byte, error) {
	r.logger.Debug("downloading workbook from Google Drive", zap.String("fileId", fileId))
	return r.client.Download(ctx, fileId)
}
