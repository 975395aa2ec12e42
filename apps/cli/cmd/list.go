package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/stagehand/packages/manifest"
)

var listCmd = &cobra.Command{
	Use:   "list [manifest|directory...]",
	Short: "List scenarios in suite manifests",
	Long: `List the scenarios defined in *.suite.yaml manifests, with their
groups, dependencies and declared state.

Examples:
  stagehand list
  stagehand list ./suites/
  stagehand list smoke.suite.yaml`,
	Args: cobra.ArbitraryArgs,
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	paths, err := discoverAll(roots)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no suite manifests found")
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Suite", "Scenario", "Groups", "Needs", "State"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Suite", AutoMerge: true},
	})

	total := 0
	for _, path := range paths {
		m, err := manifest.ParseFile(path)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error parsing %s: %v\n", path, err)
			continue
		}
		for _, sc := range m.Scenarios {
			state := ""
			switch {
			case sc.Skip != nil:
				state = "skip"
				if *sc.Skip != "" {
					state = "skip: " + *sc.Skip
				}
			case sc.Incomplete != nil:
				state = "incomplete"
			}
			t.AppendRow(table.Row{
				m.Suite,
				sc.Name,
				strings.Join(sc.Groups, ", "),
				strings.Join(sc.Needs, ", "),
				state,
			})
			total++
		}
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d scenarios", total), "", "", ""})
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}
