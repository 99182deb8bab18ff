package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-planner/internal/config"
	"task-planner/internal/logger"
	"task-planner/internal/repository"
)

var (
	cfg config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "taskplanner",
	Short: "Task planner with per-user statuses, priorities and durations",
	Long: `Task planner engine exposed over HTTP and Telegram.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if log, err = logger.New(cfg.Logger()); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(provisionCmd)
}

// openDB opens the configured database and makes sure the default
// vocabulary is seeded.
func openDB(cmd *cobra.Command) (*gorm.DB, func(), error) {
	db, err := repository.NewDB(repository.Config{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseURL}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	inserted, err := repository.SeedDefaults(cmd.Context(), db)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("seed defaults: %w", err)
	}
	if inserted > 0 {
		log.Info("default vocabulary seeded", zap.Int64("inserted", inserted))
	}
	return db, closeFn, nil
}
