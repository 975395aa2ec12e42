package scenario

import (
	"os"
	"sort"
	"strings"
)

// environSnapshot captures the process environment as a map.
func environSnapshot() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// restoreEnviron resets the process environment to a snapshot: variables
// added since are unset, changed and removed ones are written back.
func restoreEnviron(snapshot map[string]string) {
	current := environSnapshot()
	for k := range current {
		if _, ok := snapshot[k]; !ok {
			os.Unsetenv(k)
		}
	}
	for k, v := range snapshot {
		if cur, ok := current[k]; !ok || cur != v {
			os.Setenv(k, v)
		}
	}
}

// environLeaks lists the variables whose value differs between two
// snapshots, sorted for stable reporting. Removed variables are suffixed
// with "(unset)".
func environLeaks(before, after map[string]string) []string {
	var leaked []string
	for k, v := range after {
		if prev, ok := before[k]; !ok || prev != v {
			leaked = append(leaked, k)
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			leaked = append(leaked, k+" (unset)")
		}
	}
	sort.Strings(leaked)
	return leaked
}
