package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// NewFunc generates identifiers for instances, executions, tasks and comments.
var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// Sequence swaps NewFunc for a counter producing prefix-1, prefix-2 ...; it
// returns a func restoring the previous generator.
func Sequence(prefix string) func() {
	prev := NewFunc
	var counter int64
	NewFunc = func() string {
		return fmt.Sprintf("%s-%d", prefix, atomic.AddInt64(&counter, 1))
	}
	return func() { NewFunc = prev }
}
