package modules

import "github.com/abdul-hamid-achik/stagehand/packages/core/suite"

// Builtin returns the standard module map for a suite, keyed by module name.
// workdir anchors shell commands and relative fs paths, typically the
// manifest's directory.
func Builtin(workdir string) map[string]suite.Module {
	mods := []suite.Module{
		NewShell(workdir),
		NewEnv(),
		NewFS(workdir),
		NewWait(),
	}

	out := make(map[string]suite.Module, len(mods))
	for _, m := range mods {
		out[m.Name()] = m
	}
	return out
}
