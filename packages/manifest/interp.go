package manifest

import (
	"os"
	"regexp"

	"github.com/abdul-hamid-achik/stagehand/packages/builtin"
)

var variablePattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// WarnFunc receives diagnostics about unresolved variables.
type WarnFunc func(format string, args ...any)

// Interpolator substitutes ${NAME} references. Manifest variables win over
// builtin function calls, which win over the process environment; unresolved
// references are left as written and reported through the warn function.
type Interpolator struct {
	vars  map[string]string
	funcs *builtin.Registry
	warn  WarnFunc
}

// NewInterpolator returns an interpolator over the given variables.
func NewInterpolator(vars map[string]string) *Interpolator {
	return &Interpolator{
		vars:  vars,
		funcs: builtin.NewRegistry(),
	}
}

// SetWarnFunc installs a handler for unresolved references.
func (i *Interpolator) SetWarnFunc(fn WarnFunc) {
	i.warn = fn
}

// Resolve substitutes every ${NAME} in input. A reference that looks like a
// call, ${uuid()}, is evaluated through the builtin function registry.
func (i *Interpolator) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[2 : len(match)-1]

		if val, ok := i.vars[name]; ok {
			return val
		}
		if val, ok := i.funcs.Call(name); ok {
			return val
		}
		if val, ok := os.LookupEnv(name); ok {
			return val
		}

		if i.warn != nil {
			i.warn("unresolved variable: %s", name)
		}
		return match
	})
}

// ResolveAll substitutes in place over a slice of values.
func (i *Interpolator) ResolveAll(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, len(values))
	for idx, v := range values {
		out[idx] = i.Resolve(v)
	}
	return out
}
