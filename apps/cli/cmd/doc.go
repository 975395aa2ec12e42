// Package cmd implements the stagehand CLI commands using Cobra.
//
// Available commands:
//   - run: Execute scenario suites from manifest files
//   - validate: Check manifests against the schema without executing
//   - list: Display all scenarios defined in manifests
//   - history: Show recent runs from the history store
//   - init: Create a new stagehand project with example files
//   - version: Show stagehand version information
//
// The CLI supports various flags for group filtering, output formatting,
// run history, metrics export and watch mode for development workflows.
package cmd
