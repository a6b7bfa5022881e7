package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"carsensor/config"
	"carsensor/internal/client/box"
	googleClient "carsensor/internal/client/google"
	"carsensor/internal/cron"
	"carsensor/internal/properties"
	"carsensor/internal/report"
	"carsensor/internal/workbook"
	"carsensor/internal/worker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	outputPath string
	schedule   string
	debug      bool
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stderr))
}

// execute runs the command line and returns the process exit code. Errors are reported
// once, on stderr.
func execute(ctx context.Context, args []string, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "car-sensor",
		Short: "Collect car properties from Excel workbooks in cloud storage",
		Long: `car-sensor downloads the Excel workbooks listed in the [cars] section of its
config file, reads the key/value rows of each workbook's Properties sheet and
writes them, with a last_data_refresh timestamp, to a JSON file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Path to config file")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", report.DefaultPath, "Output file location")
	cmd.Flags().StringVar(&opts.schedule, "schedule", "", "Cron schedule (with seconds) to keep refreshing on, e.g. '0 0 * * * *'")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	return cmd
}

func run(ctx context.Context, opts options) error {
	// Logger
	zapLogger, err := newLogger(opts.debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg, err := config.Read(opts.configPath)
	if err != nil {
		return err
	}

	// Storage client
	repo, err := newRepository(ctx, zapLogger, cfg)
	if err != nil {
		return fmt.Errorf("failed to create %s storage client: %w", cfg.Storage.Provider, err)
	}

	service := properties.NewServiceProperties(zapLogger, repo, workbook.Options{
		Sheet:       cfg.Workbook.Sheet,
		KeyColumn:   cfg.Workbook.KeyColumn,
		ValueColumn: cfg.Workbook.ValueColumn,
	})

	w := worker.NewWorker(zapLogger, service, cfg)

	if opts.schedule == "" {
		return w.Refresh(ctx, opts.outputPath)
	}

	s := cron.NewScheduler(zapLogger, w, opts.schedule, opts.outputPath)
	if err := s.Start(ctx); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", opts.schedule, err)
	}
	defer s.Stop()

	s.RunNow()

	<-ctx.Done()
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newRepository(ctx context.Context, logger *zap.Logger, cfg config.Config) (properties.Repository, error) {
	switch cfg.Storage.Provider {
	case config.ProviderGoogleDrive:
		client, err := googleClient.NewGoogleClient(ctx, logger, cfg.Google.Credentials, cfg.Storage.Timeout)
		if err != nil {
			return nil, err
		}
		return properties.NewRepositoryDrive(logger, client), nil

	default:
		client := box.NewBoxClient(ctx, logger, cfg.Box, cfg.Storage.Timeout)
		return properties.NewRepositoryBox(logger, client), nil
	}
}
