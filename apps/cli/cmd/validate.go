package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/stagehand/packages/core/order"
	"github.com/abdul-hamid-achik/stagehand/packages/manifest"
	"github.com/abdul-hamid-achik/stagehand/packages/modules"
)

var validateCmd = &cobra.Command{
	Use:   "validate [manifest|directory...]",
	Short: "Validate suite manifests without running them",
	Long: `Validate suite manifests against the manifest schema and check the
scenario graph: duplicate scenario signatures, dependencies on unknown
scenarios, and dependency cycles.

Examples:
  stagehand validate
  stagehand validate ./suites/
  stagehand validate smoke.suite.yaml`,
	Args: cobra.ArbitraryArgs,
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
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

	hasErrors := false
	for _, path := range paths {
		if !validateManifest(cmd, path) {
			hasErrors = true
		}
	}

	if hasErrors {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// validateManifest checks one manifest: schema shape, scenario signature
// collisions, dependencies on unknown scenarios and dependency cycles.
// Collisions and unknown dependencies warn; everything else fails the file.
func validateManifest(cmd *cobra.Command, path string) bool {
	if err := manifest.ValidateFile(path); err != nil {
		fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", path, err)
		return false
	}

	m, err := manifest.ParseFile(path)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", path, err)
		return false
	}

	// Later scenarios shadow earlier ones with the same signature during
	// dependency resolution.
	seen := make(map[string]bool)
	for _, sc := range m.Scenarios {
		sig := sc.Signature
		if sig == "" {
			sig = sc.Name
		}
		if seen[sig] {
			fmt.Fprintf(cmd.OutOrStderr(), "Warning in %s: duplicate scenario %q\n", path, sig)
		}
		seen[sig] = true
	}

	registry, err := manifest.Build(m, manifest.WithModules(modules.Builtin(filepath.Dir(path))))
	if err != nil {
		fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", path, err)
		return false
	}

	for _, miss := range order.Missing(registry.Tests()) {
		fmt.Fprintf(cmd.OutOrStderr(), "Warning in %s: %s needs unknown scenario %q\n", path, miss.Test, miss.Signature)
	}

	if err := order.Sort(registry); err != nil {
		fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", path, err)
		return false
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", path)
	return true
}
