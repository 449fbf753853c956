package cmd

import (
	"github.com/Rana718/transit-studio/internal/gtfs"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the GTFS tables",
	Long: `
Create agency, stops, routes, shapes, trips and stop_times in the configured
database. With --demo a small network is loaded so the cascade delete has
something to work on.

Examples:
  transit init-db
  transit init-db --demo --reset`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		demo, _ := cmd.Flags().GetBool("demo")
		reset, _ := cmd.Flags().GetBool("reset")

		ctx := cmd.Context()
		adapter, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer adapter.Close()

		if reset {
			color.Yellow("⚠️  Dropping existing GTFS tables")
		}
		if err := gtfs.Init(ctx, adapter, gtfs.Options{
			Provider: cfg.Database.Provider,
			Demo:     demo,
			Reset:    reset,
		}); err != nil {
			return err
		}

		color.Green("✅ GTFS tables ready")
		if demo {
			color.Green("✅ Demo data loaded")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
	initDBCmd.Flags().Bool("demo", false, "Load demo routes, trips and shapes")
	initDBCmd.Flags().Bool("reset", false, "Drop the GTFS tables first")
	initDBCmd.Flags().String("db", "", "Database URL (overrides config/env)")
}
