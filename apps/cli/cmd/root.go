package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "Scenario suites in plain YAML.",
	Long: `stagehand runs scenario suites defined in YAML manifests. Scenarios
call capability modules (shell, env, fs, wait), declare expectations on
what comes back and can depend on one another; stagehand resolves the
order, runs them one at a time and reports the results.`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}
