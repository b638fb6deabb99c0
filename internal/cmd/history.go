package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Iron-Ham/adaptui/internal/config"
	"github.com/Iron-Ham/adaptui/internal/history"
	"github.com/Iron-Ham/adaptui/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently applied layouts",
	Long: `Show the layouts adaptui applied, newest first.

Each row is one dispatch: the trigger that made it, whether it ran
synchronously or across frames, and how much the cost dropped.

The history database is locked while 'adaptui run' is active; use the HTTP
API's /api/v1/adaptations endpoint to read it during a run.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyLimit int  // Maximum records to show
	historyJSON  bool // Output as JSON
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of records to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output records as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	path := cfg.History.ResolvePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(cmd.OutOrStdout(), "No history found at %s\n", path)
		return nil
	}

	store, err := history.OpenBolt(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	records, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	total, err := store.Count()
	if err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}

	if historyJSON {
		return writeHistoryJSON(cmd.OutOrStdout(), records)
	}
	writeHistoryTable(cmd.OutOrStdout(), records, total)
	return nil
}

func writeHistoryJSON(w io.Writer, records []history.Record) error {
	if records == nil {
		records = []history.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// historyColumns are the table's headers and widths.
var historyColumns = []struct {
	title string
	width int
}{
	{"APPLIED", 19},
	{"TRIGGER", 14},
	{"MODE", 5},
	{"BEFORE", 8},
	{"AFTER", 8},
	{"GAIN", 8},
	{"ELEMENTS", 0},
}

func writeHistoryTable(w io.Writer, records []history.Record, total int) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No adaptations recorded.")
		return
	}

	cell := func(i int, s string) string {
		width := historyColumns[i].width
		if width == 0 {
			return s
		}
		if len(s) > width {
			s = s[:width-1] + "…"
		}
		return lipgloss.NewStyle().Width(width + 2).Render(s)
	}

	var header strings.Builder
	for i, col := range historyColumns {
		header.WriteString(cell(i, col.title))
	}
	fmt.Fprintln(w, styles.TableHeader.Render(header.String()))

	for _, r := range records {
		gain := styles.Secondary
		if r.Improvement() <= 0 {
			gain = styles.Warning
		}
		row := cell(0, r.AppliedAt.Local().Format("2006-01-02 15:04:05")) +
			cell(1, r.TriggerID) +
			cell(2, r.Mode) +
			cell(3, fmt.Sprintf("%.4f", r.PreviousCost)) +
			cell(4, fmt.Sprintf("%.4f", r.Cost)) +
			gain.Render(cell(5, fmt.Sprintf("%+.4f", -r.Improvement()))) +
			styles.Muted.Render(cell(6, strings.Join(r.ElementIDs, ",")))
		fmt.Fprintln(w, row)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf("Showing %d of %d adaptation(s)", len(records), total)))
}
