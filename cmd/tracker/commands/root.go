package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/app"
	"github.com/benvon/interview-tracker/internal/config"
	"github.com/benvon/interview-tracker/internal/logger"
)

// Env is what a command works against
type Env struct {
	Config *config.Config
	Stores *app.Stores
	Logger *zap.Logger
}

// Close releases the stores and flushes the logger
func (e *Env) Close() {
	if err := e.Stores.Close(); err != nil {
		e.Logger.Warn("failed_to_close_storage", zap.Error(err))
	}
	_ = logger.Sync(e.Logger)
}

// Opener prepares the environment for one command invocation
type Opener func(ctx context.Context, debug bool) (*Env, error)

// DefaultOpener loads configuration from the environment and opens the configured
// storage backend
func DefaultOpener(ctx context.Context, debug bool) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	zapLogger, err := logger.NewDevelopmentLogger(debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	stores, err := app.OpenStores(ctx, cfg, zapLogger)
	if err != nil {
		return nil, err
	}
	return &Env{Config: cfg, Stores: stores, Logger: zapLogger}, nil
}

// NewRootCmd creates the tracker command tree
func NewRootCmd(version string, open Opener) *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "tracker",
		Short:         "Interview question tracker",
		Long:          "CLI for managing interview questions, categories, imports and exports over the configured storage backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	withEnv := func(fn func(cmd *cobra.Command, args []string, env *Env) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			env, err := open(cmd.Context(), debug)
			if err != nil {
				return err
			}
			defer env.Close()
			return fn(cmd, args, env)
		}
	}

	rootCmd.AddCommand(newListCmd(withEnv))
	rootCmd.AddCommand(newExportCmd(withEnv))
	rootCmd.AddCommand(newImportCmd(withEnv))
	rootCmd.AddCommand(newCategoriesCmd(withEnv))
	rootCmd.AddCommand(newSeedCmd(withEnv))
	rootCmd.AddCommand(newBackfillCmd(withEnv))
	rootCmd.AddCommand(newMCPCmd(version, withEnv))

	return rootCmd
}

// envRunner adapts a command body that needs an opened Env
type envRunner func(fn func(cmd *cobra.Command, args []string, env *Env) error) func(*cobra.Command, []string) error
