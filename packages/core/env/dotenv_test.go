package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]string
	}{
		{"simple pair", "API_KEY=secret123", map[string]string{"API_KEY": "secret123"}},
		{"multiple pairs", "KEY1=a\nKEY2=b", map[string]string{"KEY1": "a", "KEY2": "b"}},
		{"double quoted", `GREETING="hello world"`, map[string]string{"GREETING": "hello world"}},
		{"single quoted", `GREETING='hello world'`, map[string]string{"GREETING": "hello world"}},
		{"comments and blanks skipped", "# comment\n\nKEY=v", map[string]string{"KEY": "v"}},
		{"whitespace trimmed", "  KEY  =  v  ", map[string]string{"KEY": "v"}},
		{"value keeps later equals", "DSN=postgres://u:p@h/db?ssl=true", map[string]string{"DSN": "postgres://u:p@h/db?ssl=true"}},
		{"lines without equals skipped", "not a pair\nKEY=v", map[string]string{"KEY": "v"}},
		{"empty file", "", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeEnvFile(t, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/.env")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	t.Setenv("STAGEHAND_DOTENV_SET", "from-env")
	t.Setenv("STAGEHAND_DOTENV_NEW", "")

	Apply(map[string]string{
		"STAGEHAND_DOTENV_SET": "from-file",
		"STAGEHAND_DOTENV_NEW": "from-file",
	})

	assert.Equal(t, "from-env", os.Getenv("STAGEHAND_DOTENV_SET"))
	assert.Equal(t, "from-file", os.Getenv("STAGEHAND_DOTENV_NEW"))
}

func TestLoadAndApply(t *testing.T) {
	t.Setenv("STAGEHAND_DOTENV_ROUND", "")

	path := writeEnvFile(t, "STAGEHAND_DOTENV_ROUND=applied")
	vars, err := LoadAndApply(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"STAGEHAND_DOTENV_ROUND": "applied"}, vars)
	assert.Equal(t, "applied", os.Getenv("STAGEHAND_DOTENV_ROUND"))
}
