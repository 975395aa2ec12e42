package modules

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
)

// Env reads and mutates process environment variables. Combined with the
// suite's backup-globals flag the mutations stay scoped to one test.
type Env struct{}

// NewEnv returns the env module.
func NewEnv() *Env {
	return &Env{}
}

func (m *Env) Name() string { return "env" }

func (m *Env) Actions() map[string]suite.Action {
	return map[string]suite.Action{
		"set":   m.set,
		"unset": m.unset,
		"get":   m.get,
	}
}

func (m *Env) set(args ...string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("env.set wants KEY VALUE, got %d arguments", len(args))
	}
	return "", os.Setenv(args[0], args[1])
}

func (m *Env) unset(args ...string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("env.unset wants KEY, got %d arguments", len(args))
	}
	return "", os.Unsetenv(args[0])
}

// get returns the variable's value as the step output so expectations can
// examine it. A missing variable yields empty output, not an error.
func (m *Env) get(args ...string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("env.get wants KEY, got %d arguments", len(args))
	}
	return os.Getenv(args[0]), nil
}
