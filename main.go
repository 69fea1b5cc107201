package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storedir/internal/app"
	"storedir/internal/config"
	"storedir/internal/logging"
	"storedir/internal/seed"
	"storedir/internal/uploads"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configFile string
	verbose    bool
	seedFile   string
	seedReset  bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "storedir",
	Short:         "Store directory web application",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		if configFile != "" {
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config %s: %w", configFile, err)
			}
		}

		var err error
		cfg, err = config.Load(v)
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		logger, err = logging.New(cfg.LogLevel, cfg.Env)
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

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the tables or indexes of the configured database",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample users, stores and reviews",
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	seedCmd.Flags().StringVar(&seedFile, "file", "data/sample.yaml", "seed file to load")
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "delete all data before seeding")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close(context.Background())
	if err := backend.Migrate(ctx); err != nil {
		return err
	}

	storage, err := app.OpenSessionStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if storage != nil {
		defer storage.Close()
	}

	// The mail worker, if any, stops with ctx.
	mail, err := app.OpenMail(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer mail.Close()

	processor, err := uploads.NewProcessor(cfg.UploadDir)
	if err != nil {
		return err
	}

	server, err := app.New(app.Deps{
		Config:  cfg,
		Logger:  logger,
		Stores:  backend.Stores,
		Users:   backend.Users,
		Reviews: backend.Reviews,
		Mail:    mail.Sender,
		Uploads: processor,
		Storage: storage,
	})
	if err != nil {
		return err
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Port), zap.String("env", cfg.Env))
		errCh <- server.Listen(cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close(context.Background())

	if err := backend.Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrated %s database\n", cfg.DBDriver)
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	file, err := seed.Load(seedFile)
	if err != nil {
		return err
	}

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close(context.Background())
	if err := backend.Migrate(ctx); err != nil {
		return err
	}

	seeder := seed.New(backend.Stores, backend.Users, backend.Reviews, logger)
	if seedReset {
		if err := seeder.Reset(ctx); err != nil {
			return err
		}
	}
	res, err := seeder.Run(ctx, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d stores, %d reviews\n", res.Users, res.Stores, res.Reviews)
	return nil
}
