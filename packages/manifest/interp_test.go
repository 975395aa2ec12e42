package manifest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolator_Resolve(t *testing.T) {
	interp := NewInterpolator(map[string]string{
		"HOST": "localhost",
		"PORT": "8080",
	})

	t.Run("substitutes variables", func(t *testing.T) {
		assert.Equal(t, "http://localhost:8080/health",
			interp.Resolve("http://${HOST}:${PORT}/health"))
	})

	t.Run("plain strings pass through", func(t *testing.T) {
		assert.Equal(t, "no variables here", interp.Resolve("no variables here"))
	})

	t.Run("manifest variables win over environment", func(t *testing.T) {
		t.Setenv("HOST", "example.com")
		assert.Equal(t, "localhost", interp.Resolve("${HOST}"))
	})

	t.Run("falls back to environment", func(t *testing.T) {
		t.Setenv("STAGEHAND_INTERP_REGION", "eu-west")
		assert.Equal(t, "eu-west", interp.Resolve("${STAGEHAND_INTERP_REGION}"))
	})

	t.Run("function calls resolve", func(t *testing.T) {
		assert.Equal(t, "5", interp.Resolve("${random(5, 5)}"))
		assert.Equal(t, "aGVsbG8=", interp.Resolve("${base64(hello)}"))
		assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f-]{27}$`, interp.Resolve("${uuid()}"))
		assert.Len(t, interp.Resolve("${randomString(8)}"), 8)
	})

	t.Run("manifest variables shadow functions", func(t *testing.T) {
		shadowed := NewInterpolator(map[string]string{"uuid()": "fixed"})
		assert.Equal(t, "fixed", shadowed.Resolve("${uuid()}"))
	})

	t.Run("unresolved stays literal and warns", func(t *testing.T) {
		var warnings []string
		interp.SetWarnFunc(func(format string, args ...any) {
			warnings = append(warnings, fmt.Sprintf(format, args...))
		})
		defer interp.SetWarnFunc(nil)

		assert.Equal(t, "${MISSING}", interp.Resolve("${MISSING}"))
		assert.Equal(t, []string{"unresolved variable: MISSING"}, warnings)
	})
}

func TestInterpolator_ResolveAll(t *testing.T) {
	interp := NewInterpolator(map[string]string{"A": "1"})

	assert.Equal(t, []string{"1", "x"}, interp.ResolveAll([]string{"${A}", "x"}))
	assert.Nil(t, interp.ResolveAll(nil))
}
