package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest mirrors one suite manifest file.
type Manifest struct {
	Suite     string            `yaml:"suite"`
	Config    Config            `yaml:"config"`
	Variables map[string]string `yaml:"variables"`
	Scenarios []Scenario        `yaml:"scenarios"`
}

// Config holds the suite flags a manifest can set.
type Config struct {
	ReportUselessTests bool `yaml:"report_useless_tests"`
	BackupGlobals      bool `yaml:"backup_globals"`
	StrictGlobalState  bool `yaml:"strict_global_state"`
	DisallowOutput     bool `yaml:"disallow_output"`
	CollectCoverage    bool `yaml:"collect_coverage"`
}

// Scenario is one declared test. Skip and Incomplete are pointers so an
// empty reason still marks the scenario blocked.
type Scenario struct {
	Name       string   `yaml:"name"`
	Signature  string   `yaml:"signature"`
	Groups     []string `yaml:"groups"`
	Needs      []string `yaml:"needs"`
	Skip       *string  `yaml:"skip"`
	Incomplete *string  `yaml:"incomplete"`
	Steps      []Step   `yaml:"steps"`
}

// Step is one action invocation with its expectations.
type Step struct {
	Action string        `yaml:"action"`
	Args   []string      `yaml:"args"`
	Expect []Expectation `yaml:"expect"`
}

// Expectation examines a step's output. Target defaults to "output".
type Expectation struct {
	Target string `yaml:"target"`
	Op     string `yaml:"op"`
	Value  string `yaml:"value"`
}

// Parse decodes manifest YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Suite == "" {
		return nil, fmt.Errorf("manifest is missing a suite name")
	}
	return &m, nil
}

// ParseFile reads and decodes one manifest file.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Discover walks root and returns every *.suite.yaml and *.suite.yml file,
// sorted. A root that is itself a manifest file is returned as-is.
func Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !IsManifest(root) {
			return nil, fmt.Errorf("%s is not a suite manifest", root)
		}
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsManifest(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// IsManifest reports whether path looks like a suite manifest.
func IsManifest(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, ".suite.yaml") || strings.HasSuffix(name, ".suite.yml")
}
