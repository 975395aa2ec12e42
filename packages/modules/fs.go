package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
)

// FS manipulates files below a working directory. Relative paths resolve
// against it; absolute paths are used as given.
type FS struct {
	workdir string
}

// NewFS returns an fs module rooted at workdir.
func NewFS(workdir string) *FS {
	return &FS{workdir: workdir}
}

func (m *FS) Name() string { return "fs" }

func (m *FS) Actions() map[string]suite.Action {
	return map[string]suite.Action{
		"write":  m.write,
		"read":   m.read,
		"mkdir":  m.mkdir,
		"remove": m.remove,
		"exists": m.exists,
	}
}

func (m *FS) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.workdir, path)
}

func (m *FS) write(args ...string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("fs.write wants PATH CONTENT, got %d arguments", len(args))
	}
	return "", os.WriteFile(m.resolve(args[0]), []byte(args[1]), 0o644)
}

// read returns the file contents as the step output.
func (m *FS) read(args ...string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("fs.read wants PATH, got %d arguments", len(args))
	}
	data, err := os.ReadFile(m.resolve(args[0]))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *FS) mkdir(args ...string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("fs.mkdir wants PATH, got %d arguments", len(args))
	}
	return "", os.MkdirAll(m.resolve(args[0]), 0o755)
}

func (m *FS) remove(args ...string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("fs.remove wants PATH, got %d arguments", len(args))
	}
	return "", os.RemoveAll(m.resolve(args[0]))
}

// exists reports "true" or "false" as the step output.
func (m *FS) exists(args ...string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("fs.exists wants PATH, got %d arguments", len(args))
	}
	_, err := os.Stat(m.resolve(args[0]))
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	return strconv.FormatBool(err == nil), nil
}
