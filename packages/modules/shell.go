package modules

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
)

// Shell executes command lines through the system shell.
type Shell struct {
	workdir string
}

// NewShell returns a shell module running commands in workdir. An empty
// workdir runs in the process working directory.
func NewShell(workdir string) *Shell {
	return &Shell{workdir: workdir}
}

func (m *Shell) Name() string { return "shell" }

func (m *Shell) Actions() map[string]suite.Action {
	return map[string]suite.Action{
		"run": m.run,
	}
}

// run joins its arguments into one command line and executes it via sh -c,
// returning combined stdout and stderr. A leading "-" makes a non-zero exit
// status non-fatal; the output is still returned.
func (m *Shell) run(args ...string) (string, error) {
	cmdStr := strings.TrimSpace(strings.Join(args, " "))
	if cmdStr == "" {
		return "", nil
	}

	ignoreError := strings.HasPrefix(cmdStr, "-")
	if ignoreError {
		cmdStr = strings.TrimSpace(strings.TrimPrefix(cmdStr, "-"))
	}

	cmd := exec.Command("sh", "-c", cmdStr)
	cmd.Dir = m.workdir
	cmd.Env = os.Environ()

	output, err := cmd.CombinedOutput()
	if err != nil && !ignoreError {
		return string(output), fmt.Errorf("command %q failed: %v", cmdStr, err)
	}
	return string(output), nil
}
