package main

import (
	"context"
	"os"

	"ResumeSense/internal/config"
	"ResumeSense/internal/logging"
	"ResumeSense/internal/storage"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "resumesense",
	Short: "ResumeSense API server",
	Long:  "ResumeSense stores uploaded resumes, renders their preview and scores them against a job description.",
	// 인자 없이 실행하면 serve
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config file (default: RESUMESENSE_CONFIG env var, then env only)")
}

// loadConfig resolves the config path and initialises the global logger.
func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = os.Getenv("RESUMESENSE_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.InitLogger(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*storage.DB, error) {
	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
