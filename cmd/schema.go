package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Rana718/transit-studio/internal/server"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <table>",
	Short: "Print the column schema of a table",
	Long: `
Print the columns of a table as the record API reports them.

Examples:
  transit schema routes
  transit schema stop_times --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		ctx := cmd.Context()
		adapter, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer adapter.Close()

		schema, err := server.NewService(adapter).GetSchema(ctx, args[0])
		if err != nil {
			return err
		}

		switch format {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(schema)
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(schema)
		case "table", "":
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tTYPE\tPK\tNULLABLE\tDEFAULT")
			for _, col := range schema.Columns {
				fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%s\n", col.Name, col.Type, col.PrimaryKey, col.Nullable, col.Default)
			}
			return w.Flush()
		default:
			return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringP("format", "f", "table", "Output format: table, json or yaml")
	schemaCmd.Flags().String("db", "", "Database URL (overrides config/env)")
}
