package graph

type (
	// Activity is a single user-task node of a process definition.
	Activity struct {
		Key             string         `json:"key,omitempty" yaml:"key,omitempty"`
		Name            string         `json:"name,omitempty" yaml:"name,omitempty"`
		Assignee        string         `json:"assignee,omitempty" yaml:"assignee,omitempty"` // literal user id or ${variable}
		CandidateUsers  []string       `json:"candidateUsers,omitempty" yaml:"candidateUsers,omitempty"`
		CandidateGroups []string       `json:"candidateGroups,omitempty" yaml:"candidateGroups,omitempty"`
		SkipExpression  string         `json:"skipExpression,omitempty" yaml:"skipExpression,omitempty"`
		MultiInstance   *MultiInstance `json:"multiInstance,omitempty" yaml:"multiInstance,omitempty"`
		Join            bool           `json:"join,omitempty" yaml:"join,omitempty"` // waits for every incoming flow
		Next            []string       `json:"next,omitempty" yaml:"next,omitempty"`
	}

	// MultiInstance configures a co-sign activity: one task per element of
	// Collection, with the element bound to ElementVariable.
	MultiInstance struct {
		Sequential      bool   `json:"sequential,omitempty" yaml:"sequential,omitempty"`
		Collection      string `json:"collection,omitempty" yaml:"collection,omitempty"`
		ElementVariable string `json:"elementVariable,omitempty" yaml:"elementVariable,omitempty"`
	}
)

// IsEnd returns true when the activity has no outgoing flow.
func (a *Activity) IsEnd() bool {
	return len(a.Next) == 0
}

// WithAssignee sets the assignee expression
func (a *Activity) WithAssignee(assignee string) *Activity {
	a.Assignee = assignee
	return a
}

// WithCandidateGroups adds candidate groups
func (a *Activity) WithCandidateGroups(groups ...string) *Activity {
	a.CandidateGroups = append(a.CandidateGroups, groups...)
	return a
}

// WithCandidateUsers adds candidate users
func (a *Activity) WithCandidateUsers(users ...string) *Activity {
	a.CandidateUsers = append(a.CandidateUsers, users...)
	return a
}

// WithNext adds outgoing flows
func (a *Activity) WithNext(keys ...string) *Activity {
	a.Next = append(a.Next, keys...)
	return a
}

// WithJoin marks the activity as a join of all incoming flows
func (a *Activity) WithJoin(join bool) *Activity {
	a.Join = join
	return a
}

// WithSkipExpression sets the skip expression
func (a *Activity) WithSkipExpression(expr string) *Activity {
	a.SkipExpression = expr
	return a
}

// WithMultiInstance turns the activity into a co-sign step
func (a *Activity) WithMultiInstance(sequential bool, collection, elementVariable string) *Activity {
	a.MultiInstance = &MultiInstance{
		Sequential:      sequential,
		Collection:      collection,
		ElementVariable: elementVariable,
	}
	return a
}

// Behavior returns the runtime behavior implied by the activity configuration.
func (a *Activity) Behavior() Behavior {
	if mi := a.MultiInstance; mi != nil {
		if mi.Sequential {
			return &SequentialMultiInstance{Collection: mi.Collection, ElementVariable: mi.ElementVariable}
		}
		return &ParallelMultiInstance{Collection: mi.Collection, ElementVariable: mi.ElementVariable}
	}
	return &UserTask{}
}
