// Package multiinstance classifies co-sign activities and computes how their
// set of signers grows or shrinks while the activity is running.
package multiinstance

// Mode is the execution mode of a multi-instance activity
type Mode string

const (
	Parallel   Mode = "parallel"
	Sequential Mode = "sequential"
)

// Descriptor describes the co-sign activity a task belongs to. It is
// computed per call and never cached.
type Descriptor struct {
	Mode               Mode
	ActivityKey        string
	ElementVariable    string
	CollectionVariable string
	// Assignees and LoopCounter are only populated in Sequential mode
	Assignees   []string
	LoopCounter int
}
