package graph

// Behavior is the execution behavior an engine attaches to an activity.
// Engines may return implementations not declared here; consumers must treat
// those as plain activities.
type Behavior interface {
	BehaviorName() string
}

type (
	// UserTask is a plain single-assignee step.
	UserTask struct{}

	// ParallelMultiInstance runs one instance per collection element at once.
	ParallelMultiInstance struct {
		Collection      string
		ElementVariable string
	}

	// SequentialMultiInstance runs collection elements one after another.
	SequentialMultiInstance struct {
		Collection      string
		ElementVariable string
	}
)

func (*UserTask) BehaviorName() string                { return "userTask" }
func (*ParallelMultiInstance) BehaviorName() string   { return "parallelMultiInstance" }
func (*SequentialMultiInstance) BehaviorName() string { return "sequentialMultiInstance" }
