package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
)

// ErrCycleDetected is the sentinel wrapped by every CycleError.
var ErrCycleDetected = errors.New("dependency cycle detected")

// CycleError reports a dependency chain that leads back into itself. Chain
// holds the signatures along the walk, ending with the repeated one.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Chain, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// Reorder returns the collection in dependency-satisfying order: every
// declared prerequisite that resolves to a test in the collection appears
// before its dependent, each test exactly once, first occurrence winning.
// Tests without dependencies keep their relative order. The input slice is
// not modified.
func Reorder(tests []suite.Test) ([]suite.Test, error) {
	e := &expander{
		index:  indexBySignature(tests),
		onPath: make(map[string]struct{}),
	}

	var ordered []suite.Test
	for _, t := range tests {
		chain, err := e.expand(t)
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, chain...)
	}
	return dedupe(ordered), nil
}

// Sort reorders the registry's collection in place. The previous order is
// discarded. On cycle the registry is left untouched.
func Sort(r *suite.Registry) error {
	ordered, err := Reorder(r.Tests())
	if err != nil {
		return err
	}
	r.SetTests(ordered)
	return nil
}

// MissingDependency names a declared prerequisite no test in the collection
// provides. Reorder ignores these silently; validation surfaces them.
type MissingDependency struct {
	Test      string
	Signature string
}

// Missing returns every declared prerequisite signature that resolves to
// nothing, in collection order.
func Missing(tests []suite.Test) []MissingDependency {
	index := indexBySignature(tests)
	var out []MissingDependency
	for _, t := range tests {
		d, ok := t.(suite.Dependent)
		if !ok {
			continue
		}
		for _, sig := range d.DependencySignatures() {
			if _, ok := index[sig]; !ok {
				out = append(out, MissingDependency{Test: t.Name(), Signature: sig})
			}
		}
	}
	return out
}

type expander struct {
	index  map[string]suite.Test
	chain  []string
	onPath map[string]struct{}
}

// expand returns t's prerequisite chain followed by t itself. Prerequisites
// resolve against the original collection, so a dependency's own
// dependencies are honored even when it sits later in the input.
func (e *expander) expand(t suite.Test) ([]suite.Test, error) {
	key := keyOf(t)
	if _, ok := e.onPath[key]; ok {
		return nil, &CycleError{Chain: append(append([]string{}, e.chain...), key)}
	}
	e.onPath[key] = struct{}{}
	e.chain = append(e.chain, key)
	defer func() {
		delete(e.onPath, key)
		e.chain = e.chain[:len(e.chain)-1]
	}()

	var out []suite.Test
	if d, ok := t.(suite.Dependent); ok {
		for _, sig := range d.DependencySignatures() {
			dep, ok := e.index[sig]
			if !ok {
				continue
			}
			sub, err := e.expand(dep)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}
	return append(out, t), nil
}

// indexBySignature maps each signature to the first test carrying it.
func indexBySignature(tests []suite.Test) map[string]suite.Test {
	index := make(map[string]suite.Test, len(tests))
	for _, t := range tests {
		sig := suite.SignatureOf(t)
		if sig == "" {
			continue
		}
		if _, ok := index[sig]; !ok {
			index[sig] = t
		}
	}
	return index
}

func dedupe(tests []suite.Test) []suite.Test {
	seen := make(map[string]struct{}, len(tests))
	out := make([]suite.Test, 0, len(tests))
	for _, t := range tests {
		key := keyOf(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// keyOf is the identity used for deduplication and cycle tracking. Tests
// without a signature are keyed per instance so two anonymous tests never
// collapse into one.
func keyOf(t suite.Test) string {
	if sig := suite.SignatureOf(t); sig != "" {
		return sig
	}
	return fmt.Sprintf("__anon_%p", t)
}
