package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/stagehand/packages/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the history store",
	Long: `Show recent suite runs recorded in the history database.

Examples:
  stagehand history
  stagehand history --limit 25
  stagehand history --history-file ./ci/history.db`,
	Args: cobra.NoArgs,
	RunE: historyCommand,
}

var (
	historyLimitFlag int
	historyDBFlag    string
)

func init() {
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 10, "Number of runs to show")
	historyCmd.Flags().StringVar(&historyDBFlag, "history-file", getEnvString("STAGEHAND_HISTORY_FILE", history.DefaultFile), "Path to the history database (env: STAGEHAND_HISTORY_FILE)")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	store, err := history.Open(historyDBFlag)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(historyLimitFlag)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No run history yet.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"When", "Suite", "Result", "Tests", "Passed", "Failed", "Errors", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Errors", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, run := range runs {
		result := "pass"
		if !run.Success() {
			result = "fail"
		}
		if run.Stopped {
			result += " (stopped)"
		}
		t.AppendRow(table.Row{
			run.Started.Format("2006-01-02 15:04:05"),
			run.Suite,
			result,
			run.Total,
			run.Passed,
			run.Failed,
			run.Errors,
			fmt.Sprintf("%dms", run.Duration.Milliseconds()),
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}
