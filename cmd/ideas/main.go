package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"innovator-portal/pkg/config"
	"innovator-portal/pkg/coordinator"
	"innovator-portal/pkg/ideas"
	"innovator-portal/pkg/store"
)

var (
	// Global flags
	verbose bool
	apiURL  string
	token   string
	timeout time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ideas",
	Short: "Manage your innovator ideas from the terminal",
	Long: `ideas talks to the innovator idea endpoints with your bearer token.

Mutations are confirmed by the server before the local view changes.
Bulk deletes report exactly which ideas were removed and which were not.

Configuration comes from the environment (INNOVATOR_API_URL,
INNOVATOR_ACCESS_TOKEN, REQUEST_TIMEOUT, BULK_DELETE_CONCURRENCY) or
a .env.local file; flags override both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("api-url") {
			cfg.APIBaseURL = apiURL
		}
		if cmd.Flags().Changed("token") {
			cfg.AccessToken = token
		}
		if cmd.Flags().Changed("timeout") {
			cfg.RequestTimeout = timeout
		}

		logger, err = newLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zc = zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if verbose || cfg.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (or set INNOVATOR_API_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token (or set INNOVATOR_ACCESS_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultRequestTimeout, "Per-request timeout")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(bulkDeleteCmd)
	rootCmd.AddCommand(serveMockCmd)
	rootCmd.AddCommand(mockTokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(exitCode(err))
	}
}

// describe prefers the user-facing message for client errors.
func describe(err error) string {
	if ideas.KindOf(err) == ideas.KindUnknown {
		return err.Error()
	}
	return ideas.UserMessage(err)
}

func exitCode(err error) int {
	switch ideas.KindOf(err) {
	case ideas.KindAuthRequired:
		return 3
	case ideas.KindValidation:
		return 2
	}
	return 1
}

// newCoordinator wires client, store and coordinator from the loaded config.
func newCoordinator() (*coordinator.Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := ideas.NewClient(cfg.APIBaseURL,
		ideas.WithTimeout(cfg.RequestTimeout),
		ideas.WithLogger(logger.Named("client")))
	return coordinator.New(client, store.New(), coordinator.StaticToken(cfg.AccessToken),
		coordinator.WithLogger(logger.Named("coordinator")),
		coordinator.WithBulkConcurrency(cfg.BulkDeleteConcurrency)), nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
