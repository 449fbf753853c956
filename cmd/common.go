package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Rana718/transit-studio/internal/config"
	"github.com/Rana718/transit-studio/internal/database"
	"github.com/Rana718/transit-studio/internal/logging"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// loadConfig loads and validates the config, applying the --db override
// when the command has one.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if flag := cmd.Flags().Lookup("db"); flag != nil && flag.Value.String() != "" {
		dbURL := flag.Value.String()
		os.Setenv(cfg.Database.URLEnv, dbURL)
		color.Cyan("📊 Using database: %s", maskDBURL(dbURL))
	}
	return cfg, nil
}

func connect(ctx context.Context, cfg *config.Config) (database.Adapter, error) {
	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, err
	}

	adapter := database.NewAdapter(cfg.Database.Provider)
	if err := adapter.Connect(ctx, dbURL); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := adapter.Ping(ctx); err != nil {
		adapter.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logging.Debug("connected to database", "provider", cfg.Database.Provider)
	return adapter, nil
}

// maskDBURL masks password in database URL for display
func maskDBURL(url string) string {
	if len(url) < 20 {
		return "***"
	}
	return url[:10] + "***" + url[len(url)-10:]
}
