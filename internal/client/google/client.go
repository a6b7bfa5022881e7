package google

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type Client struct {
	logger  *zap.Logger
	Service *drive.Service
}

// NewGoogleClient builds a read-only Drive client authorised by a service account key.
func NewGoogleClient(ctx context.Context, logger *zap.Logger, serviceAccountPath string, timeout time.Duration) (*Client, error) {
	b, err := os.ReadFile(serviceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account file: %w", err)
	}

	httpClient := config.Client(ctx)
	httpClient.Timeout = timeout

	return newClient(ctx, logger, option.WithHTTPClient(httpClient))
}

func newClient(ctx context.Context, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &Client{
		logger:  logger,
		Service: srv,
	}, nil
}
