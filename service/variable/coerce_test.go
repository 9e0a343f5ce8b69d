package variable

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoercer_Strings(t *testing.T) {
	testCases := []struct {
		name   string
		value  interface{}
		expect []string
	}{
		{name: "nil"},
		{name: "strings", value: []string{"a", "b"}, expect: []string{"a", "b"}},
		{name: "json", value: []interface{}{"a", 1}, expect: []string{"a", "1"}},
		{name: "csv", value: " a, ,b ", expect: []string{"a", "b"}},
	}
	coercer := New(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := coercer.Strings(tc.value)
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
		})
	}
}

func TestCoercer_Scalars(t *testing.T) {
	coercer := New(nil)
	assert.True(t, coercer.Bool(true))
	assert.True(t, coercer.Bool("true"))
	assert.False(t, coercer.Bool(nil))
	assert.False(t, coercer.Bool("nope"))

	assert.Equal(t, 3, coercer.Int(3))
	assert.Equal(t, 3, coercer.Int(float64(3)))
	assert.Equal(t, 3, coercer.Int(json.Number("3")))
	assert.Equal(t, 3, coercer.Int(" 3"))
	assert.Equal(t, 0, coercer.Int(nil))
}
