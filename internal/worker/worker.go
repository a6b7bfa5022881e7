package worker

import (
	"context"
	"fmt"
	"time"

	"carsensor/config"
	"carsensor/internal/properties"
	"carsensor/internal/report"

	"go.uber.org/zap"
)

type Worker struct {
	logger  *zap.Logger
	service *properties.ServiceProperties
	cfg     config.Config

	now func() time.Time
}

func NewWorker(
	logger *zap.Logger,
	service *properties.ServiceProperties,
	cfg config.Config,
) *Worker {
	return &Worker{
		logger:  logger,
		service: service,
		cfg:     cfg,
		now:     time.Now,
	}
}

// ProcessAllCars authenticates and then extracts every configured workbook in turn. The
// first failure ends the run and is returned for the caller to report.
func (w *Worker) ProcessAllCars(ctx context.Context) (report.Results, error) {
	for _, car := range w.cfg.Cars {
		if car.Name == report.RefreshKey {
			return nil, fmt.Errorf("car name %q is reserved", report.RefreshKey)
		}
	}

	if err := w.service.Authenticate(ctx); err != nil {
		return nil, err
	}

	results := report.NewResults(w.now())

	for _, car := range w.cfg.Cars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w.logger.Info("Processing car file", zap.String("name", car.Name), zap.String("fileId", car.FileId))

		props, err := w.service.Extract(ctx, car.Name, car.FileId)
		if err != nil {
			return nil, fmt.Errorf("car %s (file %s): %w", car.Name, car.FileId, err)
		}

		results[car.Name] = props
	}

	return results, nil
}

// Refresh processes all cars and saves the results to output.
func (w *Worker) Refresh(ctx context.Context, output string) error {
	results, err := w.ProcessAllCars(ctx)
	if err != nil {
		return err
	}

	if err := report.Save(output, results); err != nil {
		return fmt.Errorf("unable to save results to %s: %w", output, err)
	}

	w.logger.Info("Output saved", zap.String("path", output), zap.Int("cars", len(results)-1))
	return nil
}
