package properties

import (
	"bytes"
	"context"
	"fmt"

	"carsensor/internal/workbook"

	"go.uber.org/zap"
)

type ServiceProperties struct {
	logger     *zap.Logger
	repository Repository
	opts       workbook.Options
}

func NewServiceProperties(logger *zap.Logger, repository Repository, opts workbook.Options) *ServiceProperties {
	return &ServiceProperties{
		logger:     logger,
		repository: repository,
		opts:       opts,
	}
}

func (s *ServiceProperties) Authenticate(ctx context.Context) error {
	return s.repository.Authenticate(ctx)
}

// Extract downloads a workbook and parses its properties sheet.
func (s *ServiceProperties) Extract(ctx context.Context, name, fileId string) (workbook.Properties, error) {
	content, err := s.repository.Workbook(ctx, fileId)
	if err != nil {
		return nil, err
	}

	props, err := workbook.ParseProperties(bytes.NewReader(content), s.opts)
	if err != nil {
		return nil, fmt.Errorf("unable to parse Excel workbook: %w", err)
	}

	s.logger.Debug("workbook parsed", zap.String("name", name), zap.Int("properties", len(props)))
	return props, nil
}
