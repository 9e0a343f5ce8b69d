package criteria

import (
	"github.com/viant/taskflow/service/dao"
)

// Fields extracts filterable field values from an entity
type Fields[T any] func(t *T) map[string]string

// Match returns true when every parameter matches the entity fields; unknown
// parameter names never match.
func Match(fields map[string]string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		actual, ok := fields[parameter.Name]
		if !ok {
			return false
		}
		if !matchValue(actual, parameter.Value) {
			return false
		}
	}
	return true
}

func matchValue(actual string, expected interface{}) bool {
	switch value := expected.(type) {
	case string:
		return actual == value
	case []string:
		for _, candidate := range value {
			if actual == candidate {
				return true
			}
		}
		return false
	}
	return false
}
