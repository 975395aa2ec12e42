package builtin

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Func evaluates one function call from a variable reference.
type Func func(args []string) string

// Registry maps function names to implementations.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry returns a registry with the standard functions installed.
func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["now"] = funcNow
	r.funcs["date"] = funcDate
	r.funcs["timestamp"] = funcTimestamp
	r.funcs["uuid"] = funcUUID
	r.funcs["random"] = funcRandom
	r.funcs["randomString"] = funcRandomString
	r.funcs["base64"] = funcBase64
	r.funcs["sha256"] = funcSHA256
}

// Register installs or replaces a function.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

var callPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// Call evaluates expr if it is a call of a registered function, like
// "uuid()" or "random(1, 10)". The second return reports whether it was.
func (r *Registry) Call(expr string) (string, bool) {
	matches := callPattern.FindStringSubmatch(expr)
	if matches == nil {
		return "", false
	}

	fn, ok := r.funcs[matches[1]]
	if !ok {
		return "", false
	}

	var args []string
	if matches[2] != "" {
		args = parseArgs(matches[2])
	}
	return fn(args), true
}

// parseArgs splits a comma-separated argument list, honoring single and
// double quotes so separators inside values survive.
func parseArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case !inQuote && (ch == '"' || ch == '\''):
			inQuote = true
			quoteChar = ch
		case inQuote && ch == quoteChar:
			inQuote = false
			quoteChar = 0
		case !inQuote && ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}
	return args
}

func funcNow(_ []string) string {
	return time.Now().UTC().Format(time.RFC3339)
}

func funcDate(args []string) string {
	layout := "2006-01-02"
	if len(args) >= 1 && args[0] != "" {
		layout = args[0]
	}
	return time.Now().UTC().Format(layout)
}

func funcTimestamp(_ []string) string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

func funcUUID(_ []string) string {
	return uuid.New().String()
}

func funcRandom(args []string) string {
	min, max := 0, 100
	if len(args) >= 2 {
		if v, err := strconv.Atoi(args[0]); err == nil {
			min = v
		}
		if v, err := strconv.Atoi(args[1]); err == nil {
			max = v
		}
	}
	if max < min {
		min, max = max, min
	}
	return strconv.Itoa(rand.Intn(max-min+1) + min)
}

func funcRandomString(args []string) string {
	length := 16
	if len(args) >= 1 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			length = v
		}
	}

	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	out := make([]byte, length)
	for i := range out {
		out[i] = charset[rand.Intn(len(charset))]
	}
	return string(out)
}

func funcBase64(args []string) string {
	if len(args) < 1 {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(args[0]))
}

func funcSHA256(args []string) string {
	if len(args) < 1 {
		return ""
	}
	hash := sha256.Sum256([]byte(args[0]))
	return hex.EncodeToString(hash[:])
}
