package engine

// Variables maintained by engines for multi-instance activities; the
// collection and element variable names come from the activity definition.
const (
	NrOfInstances          = "nrOfInstances"
	NrOfActiveInstances    = "nrOfActiveInstances"
	NrOfCompletedInstances = "nrOfCompletedInstances"
	LoopCounter            = "loopCounter"

	// SkipExpressionEnabled must be true for activity skip expressions to apply
	SkipExpressionEnabled = "skipExpressionEnabled"
	// Initiator holds the user id that started the process
	Initiator = "initiator"
)
