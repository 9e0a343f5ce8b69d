package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefinition_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		definition  func() *Definition
		expectCount int
	}{
		{
			name: "valid linear",
			definition: func() *Definition {
				ret := NewDefinition("leave", "Leave request")
				ret.NewActivity("apply", "Apply").WithAssignee("${initiator}").WithNext("approve")
				ret.NewActivity("approve", "Approve").WithCandidateGroups("manager")
				return ret
			},
		},
		{
			name: "unknown next",
			definition: func() *Definition {
				ret := NewDefinition("leave", "Leave request")
				ret.NewActivity("apply", "Apply").WithNext("missing")
				return ret
			},
			expectCount: 1,
		},
		{
			name: "duplicate and unreachable",
			definition: func() *Definition {
				ret := NewDefinition("leave", "Leave request")
				ret.NewActivity("apply", "Apply")
				ret.NewActivity("apply", "Again")
				ret.NewActivity("orphan", "Orphan")
				return ret
			},
			expectCount: 2,
		},
		{
			name: "multi instance without collection",
			definition: func() *Definition {
				ret := NewDefinition("sign", "Co-sign")
				ret.NewActivity("apply", "Apply").WithNext("cosign")
				ret.NewActivity("cosign", "Co-sign").WithMultiInstance(false, "", "assignee")
				return ret
			},
			expectCount: 1,
		},
		{
			name: "empty",
			definition: func() *Definition {
				return &Definition{}
			},
			expectCount: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			issues := tc.definition().Validate()
			assert.Equal(t, tc.expectCount, len(issues), "issues: %v", issues)
		})
	}
}

func TestActivity_Behavior(t *testing.T) {
	definition := NewDefinition("sign", "Co-sign")
	plain := definition.NewActivity("apply", "Apply").WithNext("parallel", "sequential")
	parallel := definition.NewActivity("parallel", "Parallel").WithMultiInstance(false, "signers", "signer")
	sequential := definition.NewActivity("sequential", "Sequential").WithMultiInstance(true, "signers", "signer")

	assert.IsType(t, &UserTask{}, plain.Behavior())
	assert.IsType(t, &ParallelMultiInstance{}, parallel.Behavior())
	seq, ok := sequential.Behavior().(*SequentialMultiInstance)
	assert.True(t, ok)
	assert.Equal(t, "signers", seq.Collection)
	assert.Equal(t, "signer", seq.ElementVariable)

	assert.Equal(t, []string{"apply"}, definition.Incoming("parallel"))
	assert.Equal(t, "apply", definition.InitialActivity().Key)
	definition.EnsureID()
	assert.Equal(t, "sign:1", definition.ID)
}
