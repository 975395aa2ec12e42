package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `suite: checkout
config:
  backup_globals: true
  collect_coverage: true
variables:
  GREETING: hello
scenarios:
  - name: greet
    groups: [smoke]
    steps:
      - action: echo.say
        args: ["${GREETING} world"]
        expect:
          - op: contains
            value: ${GREETING}
  - name: blocked
    skip: backend down
  - name: later
    needs: [greet]
    incomplete: ""
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, "checkout", m.Suite)
	assert.True(t, m.Config.BackupGlobals)
	assert.True(t, m.Config.CollectCoverage)
	assert.False(t, m.Config.StrictGlobalState)
	assert.Equal(t, "hello", m.Variables["GREETING"])
	require.Len(t, m.Scenarios, 3)

	greet := m.Scenarios[0]
	assert.Equal(t, "greet", greet.Name)
	assert.Equal(t, []string{"smoke"}, greet.Groups)
	require.Len(t, greet.Steps, 1)
	assert.Equal(t, "echo.say", greet.Steps[0].Action)
	require.Len(t, greet.Steps[0].Expect, 1)
	assert.Equal(t, "contains", greet.Steps[0].Expect[0].Op)

	blocked := m.Scenarios[1]
	require.NotNil(t, blocked.Skip)
	assert.Equal(t, "backend down", *blocked.Skip)
	assert.Nil(t, blocked.Incomplete)

	later := m.Scenarios[2]
	assert.Equal(t, []string{"greet"}, later.Needs)
	require.NotNil(t, later.Incomplete)
	assert.Empty(t, *later.Incomplete)
}

func TestParse_Errors(t *testing.T) {
	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("suite: [unclosed"))
		assert.ErrorContains(t, err, "parsing manifest")
	})

	t.Run("missing suite name", func(t *testing.T) {
		_, err := Parse([]byte("scenarios: []"))
		assert.ErrorContains(t, err, "missing a suite name")
	})
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkout.suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0644))

	m, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "checkout", m.Suite)

	_, err = ParseFile(filepath.Join(dir, "ghost.suite.yaml"))
	assert.ErrorContains(t, err, "reading manifest")
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0755))

	for _, name := range []string{
		"b.suite.yaml",
		"a.suite.yml",
		"notes.yaml",
		"nested/c.suite.yaml",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("suite: x\n"), 0644))
	}

	t.Run("walks directories", func(t *testing.T) {
		paths, err := Discover(dir)
		require.NoError(t, err)
		require.Len(t, paths, 3)
		assert.Equal(t, filepath.Join(dir, "a.suite.yml"), paths[0])
		assert.Equal(t, filepath.Join(dir, "b.suite.yaml"), paths[1])
		assert.Equal(t, filepath.Join(sub, "c.suite.yaml"), paths[2])
	})

	t.Run("accepts a manifest file directly", func(t *testing.T) {
		paths, err := Discover(filepath.Join(dir, "b.suite.yaml"))
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "b.suite.yaml")}, paths)
	})

	t.Run("rejects a non-manifest file", func(t *testing.T) {
		_, err := Discover(filepath.Join(dir, "notes.yaml"))
		assert.ErrorContains(t, err, "not a suite manifest")
	})
}

func TestIsManifest(t *testing.T) {
	assert.True(t, IsManifest("api.suite.yaml"))
	assert.True(t, IsManifest("deep/dir/api.suite.yml"))
	assert.False(t, IsManifest("api.yaml"))
	assert.False(t, IsManifest("suite.go"))
}
