package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/stagehand/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new stagehand project",
	Long: `Initialize a new stagehand project in the current directory.

This creates:
  - stagehand.yaml      - Project configuration
  - example.suite.yaml  - Example suite manifest

Examples:
  stagehand init
  stagehand init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "stagehand.yaml")
	exampleFile := filepath.Join(cwd, "example.suite.yaml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	if err := config.DefaultConfig().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	exampleContent := `suite: example

variables:
  scratch: .stagehand-example
  greeting: hello

scenarios:
  - name: prepare workspace
    groups: [setup]
    steps:
      - action: fs.mkdir
        args: ["${scratch}"]
      - action: fs.write
        args: ["${scratch}/greeting.txt", "${greeting} world"]

  - name: greeting file has content
    groups: [smoke]
    needs: ["prepare workspace"]
    steps:
      - action: fs.read
        args: ["${scratch}/greeting.txt"]
        expect:
          - op: contains
            value: world

  - name: shell reports the greeting
    groups: [smoke]
    steps:
      - action: shell.run
        args: ["echo ${greeting}"]
        expect:
          - op: contains
            value: "${greeting}"

  - name: staging endpoint answers
    skip: waiting on a staging URL
    steps:
      - action: wait.for_http
        args: ["https://staging.example.com/health", "200", "10s"]

  - name: clean up workspace
    groups: [setup]
    needs: ["greeting file has content"]
    steps:
      - action: fs.remove
        args: ["${scratch}"]
`

	if err := os.WriteFile(exampleFile, []byte(exampleContent), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nstagehand project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'stagehand run example.suite.yaml' to execute the example suite.\n")

	return nil
}
