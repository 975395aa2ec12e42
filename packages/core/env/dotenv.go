package env

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load parses a dotenv file into key-value pairs. Lines look like KEY=value,
// with optional single or double quotes around the value; blank lines and
// lines starting with # are skipped.
func Load(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open env file: %w", err)
	}
	defer file.Close()

	vars := make(map[string]string)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		vars[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	return vars, nil
}

// Apply exports vars into the process environment. Keys already present
// keep their value, so the real environment wins over the file.
func Apply(vars map[string]string) {
	for k, v := range vars {
		if os.Getenv(k) == "" {
			_ = os.Setenv(k, v)
		}
	}
}

// LoadAndApply loads path and exports its variables.
func LoadAndApply(path string) (map[string]string, error) {
	vars, err := Load(path)
	if err != nil {
		return nil, err
	}
	Apply(vars)
	return vars, nil
}
