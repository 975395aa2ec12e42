package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectation_Check_Output(t *testing.T) {
	tests := []struct {
		name    string
		expect  Expectation
		output  string
		wantErr string
	}{
		{
			name:   "equals",
			expect: OutputEquals("hello"),
			output: "hello",
		},
		{
			name:   "equals trims whitespace",
			expect: OutputEquals("hello"),
			output: "hello\n",
		},
		{
			name:    "equals mismatch",
			expect:  OutputEquals("hello"),
			output:  "goodbye",
			wantErr: `expected output "hello", got "goodbye"`,
		},
		{
			name:   "contains",
			expect: OutputContains("lo wo"),
			output: "hello world",
		},
		{
			name:    "contains mismatch",
			expect:  OutputContains("mars"),
			output:  "hello world",
			wantErr: `expected output to contain "mars"`,
		},
		{
			name:   "matches",
			expect: OutputMatches(`^v\d+\.\d+`),
			output: "v1.42 ready",
		},
		{
			name:    "matches mismatch",
			expect:  OutputMatches(`^v\d+$`),
			output:  "version one",
			wantErr: "expected output to match",
		},
		{
			name:    "matches bad pattern",
			expect:  OutputMatches(`v(\d`),
			output:  "v1",
			wantErr: "invalid pattern",
		},
		{
			name:    "exists needs json target",
			expect:  Expectation{Target: "output", Op: OpExists},
			output:  "x",
			wantErr: "requires a json target",
		},
		{
			name:    "unknown target",
			expect:  Expectation{Target: "headers", Op: OpEquals, Value: "x"},
			output:  "x",
			wantErr: "unknown expectation target",
		},
		{
			name:    "unknown operator",
			expect:  Expectation{Target: "output", Op: "between", Value: "x"},
			output:  "x",
			wantErr: "unknown operator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expect.Check(tt.output)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestExpectation_Check_JSON(t *testing.T) {
	const output = `{"user":{"id":7,"name":"ada","tags":["admin","ops"]},"ok":true}`

	tests := []struct {
		name    string
		expect  Expectation
		wantErr string
	}{
		{
			name:   "exists",
			expect: JSONExists("user.id"),
		},
		{
			name:    "exists mismatch",
			expect:  JSONExists("user.email"),
			wantErr: `expected "user.email" to exist`,
		},
		{
			name:   "equals string",
			expect: JSONEquals("user.name", "ada"),
		},
		{
			name:   "equals number",
			expect: JSONEquals("user.id", "7"),
		},
		{
			name:   "equals bool",
			expect: JSONEquals("ok", "true"),
		},
		{
			name:   "equals array element",
			expect: JSONEquals("user.tags.1", "ops"),
		},
		{
			name:    "equals mismatch",
			expect:  JSONEquals("user.name", "grace"),
			wantErr: `expected "grace" at "user.name", got "ada"`,
		},
		{
			name:    "equals on missing path",
			expect:  JSONEquals("user.email", "x"),
			wantErr: "to exist",
		},
		{
			name:   "contains",
			expect: JSONContains("user.name", "ad"),
		},
		{
			name:    "contains mismatch",
			expect:  JSONContains("user.name", "xyz"),
			wantErr: "to contain",
		},
		{
			name:    "matches unsupported",
			expect:  Expectation{Target: "json:user.name", Op: OpMatches, Value: "a.*"},
			wantErr: "not supported for json targets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expect.Check(output)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestSequence_Builder(t *testing.T) {
	seq := NewSequence().
		Do("shell.run", "echo", "hi").
		Expect(OutputContains("hi")).
		Expect(OutputMatches("^h")).
		Do("env.set", "KEY", "value")

	steps := seq.Steps()
	assert.Equal(t, 2, seq.Len())
	assert.Equal(t, "shell.run", steps[0].Action)
	assert.Equal(t, []string{"echo", "hi"}, steps[0].Args)
	assert.Len(t, steps[0].Expect, 2)
	assert.Equal(t, "env.set", steps[1].Action)
	assert.Empty(t, steps[1].Expect)
}

func TestSequence_NilSafe(t *testing.T) {
	var seq *Sequence
	assert.Nil(t, seq.Steps())
	assert.Equal(t, 0, seq.Len())
}
