package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables with their row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		adapter, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer adapter.Close()

		names, err := adapter.GetAllTableNames(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tables: %w", err)
		}
		if len(names) == 0 {
			color.Yellow("⚠️  No tables found. Run 'transit init-db --demo' to create the GTFS tables.")
			return nil
		}

		counts, err := adapter.GetAllTableRowCounts(ctx, names)
		if err != nil {
			return fmt.Errorf("failed to count rows: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TABLE\tROWS")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%d\n", name, counts[name])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.Flags().String("db", "", "Database URL (overrides config/env)")
}
