package properties

import (
	"context"

	"carsensor/internal/client/box"

	"go.uber.org/zap"
)

type RepositoryBox struct {
	logger *zap.Logger
	client *box.BoxClient
}

func NewRepositoryBox(logger *zap.Logger, client *box.BoxClient) *RepositoryBox {
	return &RepositoryBox{
		logger: logger,
		client: client,
	}
}

func (r *RepositoryBox) Authenticate(ctx context.Context) error {
	_, err := r.client.Authenticate(ctx)
	return err
}

func (r *RepositoryBox) Workbook(ctx context.Context, fileId string) ([]byte, error) {
	r.logger.Debug("downloading workbook from Box", zap.String("fileId", fileId))
	return r.client.Download(ctx, fileId)
}
