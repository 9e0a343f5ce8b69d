package meta

import (
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Lookup resolves a ${key} expression; ok=false leaves the expression untouched
type Lookup func(key string) (value string, ok bool)

// EnvLookup resolves ${env.KEY} to the environment variable KEY ("" if unset)
func EnvLookup(key string) (string, bool) {
	name, ok := strings.CutPrefix(key, "env.")
	if !ok {
		return "", false
	}
	return os.Getenv(name), true
}

// ExpandEnv replaces all occurrences of ${env.KEY} in value
func ExpandEnv(value string) string {
	return Expand(value, EnvLookup)
}

// Expand replaces every well-formed ${key} in value resolved by lookup. Keys
// consist of letters, digits, '_' and '.'; malformed expressions are kept
// literally while scanning resumes right after their "${".
func Expand(value string, lookup Lookup) string {
	const prefix = "${"
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(value[i:], prefix)
		if idx < 0 {
			b.WriteString(value[i:])
			break
		}
		b.WriteString(value[i : i+idx])
		startKey := i + idx + len(prefix)

		endKey := strings.IndexByte(value[startKey:], '}')
		if endKey < 0 {
			b.WriteString(value[i+idx:])
			break
		}
		key := value[startKey : startKey+endKey]
		if !isKey(key) {
			b.WriteString(prefix)
			i = startKey
			continue
		}
		if resolved, ok := lookup(key); ok {
			b.WriteString(resolved)
		} else {
			b.WriteString(value[i+idx : startKey+endKey+1])
		}
		i = startKey + endKey + 1
	}
	return b.String()
}

// Reference returns the variable name when value is a single ${name} expression
func Reference(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return "", false
	}
	key := value[2 : len(value)-1]
	if key == "" || !isKey(key) {
		return "", false
	}
	return key, true
}

// VariableLookup adapts a variable getter to Lookup, formatting values with %v
func VariableLookup(get func(name string) (interface{}, bool)) Lookup {
	return func(key string) (string, bool) {
		value, ok := get(key)
		if !ok || value == nil {
			return "", ok
		}
		return fmt.Sprintf("%v", value), true
	}
}

func isKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.') {
			return false
		}
	}
	return true
}
