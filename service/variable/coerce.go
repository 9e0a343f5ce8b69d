// Package variable coerces loosely typed process variables, including values
// restored from JSON.
package variable

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/structology/conv"
)

// Coercer converts process variables to the types activities expect
type Coercer struct {
	converter *conv.Converter
}

// Strings coerces a collection variable; JSON restored values arrive as
// []interface{} and comma separated strings are accepted as well.
func (c *Coercer) Strings(value interface{}) ([]string, error) {
	switch actual := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), actual...), nil
	case []interface{}:
		result := make([]string, 0, len(actual))
		for _, item := range actual {
			result = append(result, fmt.Sprintf("%v", item))
		}
		return result, nil
	case string:
		var result []string
		for _, item := range strings.Split(actual, ",") {
			if item = strings.TrimSpace(item); item != "" {
				result = append(result, item)
			}
		}
		return result, nil
	}
	var result []string
	if err := c.converter.Convert(value, &result); err != nil {
		return nil, fmt.Errorf("failed to convert %T to []string: %w", value, err)
	}
	return result, nil
}

// Bool coerces a flag; unconvertible values are false
func (c *Coercer) Bool(value interface{}) bool {
	switch actual := value.(type) {
	case nil:
		return false
	case bool:
		return actual
	case string:
		ret, _ := strconv.ParseBool(strings.TrimSpace(actual))
		return ret
	}
	var ret bool
	if err := c.converter.Convert(value, &ret); err != nil {
		return false
	}
	return ret
}

// Int coerces a counter; unconvertible values are 0
func (c *Coercer) Int(value interface{}) int {
	switch actual := value.(type) {
	case nil:
		return 0
	case int:
		return actual
	case int64:
		return int(actual)
	case float64:
		return int(actual)
	case json.Number:
		ret, _ := actual.Int64()
		return int(ret)
	case string:
		ret, _ := strconv.Atoi(strings.TrimSpace(actual))
		return ret
	}
	var ret int
	if err := c.converter.Convert(value, &ret); err != nil {
		return 0
	}
	return ret
}

// New creates a coercer; nil converter uses structology defaults
func New(converter *conv.Converter) *Coercer {
	if converter == nil {
		converter = conv.NewConverter(conv.DefaultOptions())
	}
	return &Coercer{converter: converter}
}
