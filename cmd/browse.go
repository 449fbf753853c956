package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/Rana718/transit-studio/internal/browser"
	"github.com/Rana718/transit-studio/internal/client"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse [table]",
	Short: "Browse and edit records through a running API",
	Long: `
Open an interactive session against the record API started by 'transit serve'.

Commands inside the session:
  open <table>         switch to another table
  tables               list tables with row counts
  search <term>        filter rows (applied after the quiet period)
  find <term>          filter rows immediately
  more                 load the next page
  show                 print the loaded rows
  new                  start creating a record
  edit <pk>            edit a loaded record
  set <field> <value>  change a field of the open record
  save | cancel        submit or discard the open record
  delete <pk>          delete a record (routes cascade to trips and shapes)
  refresh              reload from the first page
  quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if url, _ := cmd.Flags().GetString("url"); url != "" {
			cfg.Client.BaseURL = strings.TrimRight(url, "/")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		api := client.New(cfg.Client.BaseURL, cfg.Client.Timeout)
		if err := api.Ping(ctx); err != nil {
			return fmt.Errorf("cannot reach %s: %w", cfg.Client.BaseURL, err)
		}

		table := cfg.Browser.CascadeTable
		if len(args) == 1 {
			table = args[0]
		}

		sess := newBrowseSession(os.Stdin, os.Stdout, api)
		sess.browser = browser.New(api, browser.Options{
			PageSize:     cfg.Browser.PageSize,
			QuietPeriod:  cfg.Browser.SearchQuietPeriod,
			CascadeTable: cfg.Browser.CascadeTable,
			Confirmer:    sess,
			OnUpdate:     sess.onSearchApplied,
		})
		defer sess.browser.Close()

		color.Green("✅ Connected to %s", cfg.Client.BaseURL)
		return sess.run(ctx, table)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().String("url", "", "API base URL (overrides client.base_url)")
}

type browseSession struct {
	in      *bufio.Scanner
	out     io.Writer
	api     *client.Client
	browser *browser.RecordBrowser

	mu sync.Mutex
}

func newBrowseSession(in io.Reader, out io.Writer, api *client.Client) *browseSession {
	return &browseSession{in: bufio.NewScanner(in), out: out, api: api}
}

// Confirm asks on the same input stream the command loop reads from. It is
// only called from within a command, so the two never read concurrently.
func (s *browseSession) Confirm(ctx context.Context, p browser.Prompt) (bool, error) {
	color.New(color.FgYellow).Fprintf(s.out, "%s [y/N]: ", p.Message)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return false, err
		}
		return false, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(s.in.Text()))
	return answer == "y" || answer == "yes", nil
}

func (s *browseSession) onSearchApplied(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out)
	if err != nil {
		color.New(color.FgRed).Fprintf(s.out, "❌ %v\n", err)
	}
	s.printCounters()
	fmt.Fprint(s.out, "> ")
}

func (s *browseSession) run(ctx context.Context, table string) error {
	if err := s.browser.Mount(ctx, table); err != nil {
		color.New(color.FgRed).Fprintf(s.out, "❌ %v\n", err)
	} else {
		s.printRows()
	}

	for {
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			return s.in.Err()
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		name, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		if name == "quit" || name == "exit" {
			return nil
		}
		if err := s.dispatch(ctx, name, rest); err != nil {
			s.mu.Lock()
			color.New(color.FgRed).Fprintf(s.out, "❌ %v\n", err)
			s.mu.Unlock()
		}
	}
}

func (s *browseSession) dispatch(ctx context.Context, name, rest string) error {
	b := s.browser
	switch name {
	case "open":
		if rest == "" {
			return errors.New("usage: open <table>")
		}
		if err := b.Mount(ctx, rest); err != nil {
			return err
		}
		s.printRows()
	case "tables":
		tables, err := s.api.ListTables(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TABLE\tROWS")
		for _, t := range tables {
			fmt.Fprintf(w, "%s\t%d\n", t.Name, t.RowCount)
		}
		return w.Flush()
	case "search":
		b.SearchInput(rest)
	case "find":
		if err := b.ApplySearch(ctx, rest); err != nil {
			return err
		}
		s.printRows()
	case "more":
		loaded, err := b.ScrollVisible(ctx)
		if err != nil {
			return err
		}
		if !loaded {
			color.New(color.FgCyan).Fprintln(s.out, "No more rows")
		}
		s.printRows()
	case "show":
		s.printRows()
	case "refresh":
		if err := b.Refresh(ctx); err != nil {
			return err
		}
		s.printRows()
	case "new":
		session, err := b.OpenCreate()
		if err != nil {
			return err
		}
		s.printSession(session)
	case "edit":
		session, err := b.OpenEdit(rest)
		if err != nil {
			return err
		}
		s.printSession(session)
	case "set":
		field, value, _ := strings.Cut(rest, " ")
		if field == "" {
			return errors.New("usage: set <field> <value>")
		}
		if err := b.Change(field, value); err != nil {
			return err
		}
		s.printSession(b.Session())
	case "save":
		if err := b.Save(ctx); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintln(s.out, "✅ Saved")
		s.printRows()
	case "cancel":
		b.Cancel()
	case "delete":
		if rest == "" {
			return errors.New("usage: delete <pk>")
		}
		result, err := b.Delete(ctx, rest)
		if errors.Is(err, browser.ErrDeclined) {
			color.New(color.FgCyan).Fprintln(s.out, "Cancelled")
			return nil
		}
		if err != nil {
			return err
		}
		if result != nil {
			color.New(color.FgGreen).Fprintf(s.out, "✅ Deleted %s (trips: %d, stop_times: %d, shapes: %d)\n",
				rest, result.TripsDeleted, result.StopTimesDeleted, result.ShapesDeleted)
		} else {
			color.New(color.FgGreen).Fprintf(s.out, "✅ Deleted %s\n", rest)
		}
		s.printRows()
	default:
		return fmt.Errorf("unknown command %q", name)
	}
	return nil
}

func (s *browseSession) printRows() {
	s.mu.Lock()
	defer s.mu.Unlock()

	schema := s.browser.Schema()
	state := s.browser.State()
	if schema == nil {
		return
	}

	cols := schema.ColumnNames()
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(cols, "\t")))
	for _, row := range state.Items {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = browser.KeyString(row[col])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	s.printCounters()
}

func (s *browseSession) printCounters() {
	shown, total := s.browser.Counters()
	cyan := color.New(color.FgCyan)
	cyan.Fprintf(s.out, "%s: %d of %d rows", s.browser.Table(), shown, total)
	if s.browser.HasMore() {
		cyan.Fprint(s.out, " (more available)")
	}
	fmt.Fprintln(s.out)
}

func (s *browseSession) printSession(session *browser.EditSession) {
	if session == nil {
		return
	}
	mode := "Editing"
	if session.IsCreating {
		mode = "Creating"
	}
	color.New(color.FgCyan, color.Bold).Fprintf(s.out, "%s %s\n", mode, s.browser.Table())

	var fields []string
	if schema := session.Schema(); schema != nil {
		fields = schema.ColumnNames()
	} else {
		for k := range session.Record {
			fields = append(fields, k)
		}
		sort.Strings(fields)
	}
	for _, f := range fields {
		marker := " "
		if session.ReadOnly(f) {
			marker = "🔒"
		}
		fmt.Fprintf(s.out, "  %s %s = %s\n", marker, f, browser.KeyString(session.Record[f]))
	}
	if session.Err != nil {
		color.New(color.FgRed).Fprintf(s.out, "  ❌ %v\n", session.Err)
	}
}
