package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProcess_RemoveTask(t *testing.T) {
	newTask := func(id string) *Task { return &Task{ID: id} }
	proc := &Process{}
	proc.Push(newTask("a"), newTask("b"), newTask("c"))

	assert.True(t, proc.RemoveTask("b"))
	assert.False(t, proc.RemoveTask("b"))
	assert.Equal(t, 2, len(proc.Tasks))
	assert.Equal(t, "a", proc.Tasks[0].ID)
	assert.Equal(t, "c", proc.Tasks[1].ID)
	assert.Equal(t, 3, len(proc.History))
}

func TestProcess_FinishedHistory(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	proc := &Process{}
	proc.Push(&Task{ID: "late"}, &Task{ID: "early"}, &Task{ID: "audit", ParentTaskID: "early"}, &Task{ID: "open"}, &Task{ID: "deleted"})
	proc.LookupHistoricTask("late").Finish(base.Add(2*time.Minute), "")
	proc.LookupHistoricTask("early").Finish(base.Add(time.Minute), "")
	proc.LookupHistoricTask("audit").Finish(base, "")
	proc.LookupHistoricTask("deleted").Finish(base, "deleted")

	var ids []string
	for _, item := range proc.FinishedHistory() {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"early", "late"}, ids)
}

func TestProcess_Clone(t *testing.T) {
	proc := &Process{
		SCN:      3,
		Instance: &Instance{ID: "p1", Variables: map[string]interface{}{"signers": []string{"a", "b"}}},
		Arrivals: map[string]int{"join": 1},
	}
	proc.Push(&Task{ID: "t1", CandidateGroups: []string{"manager"}})
	proc.Comments = append(proc.Comments, &Comment{ID: "c1", TaskID: "t1"})

	clone := proc.Clone()
	clone.Instance.Variables["signers"].([]string)[0] = "x"
	clone.Tasks[0].CandidateGroups[0] = "director"
	clone.Arrivals["join"] = 2
	clone.Comments[0].Message = "changed"
	assert.True(t, clone.RemoveHistoricTask("t1"))

	assert.Equal(t, "a", proc.Instance.Variables["signers"].([]string)[0])
	assert.Equal(t, "manager", proc.Tasks[0].CandidateGroups[0])
	assert.Equal(t, 1, proc.Arrivals["join"])
	assert.Equal(t, "", proc.Comments[0].Message)
	assert.Equal(t, 1, len(proc.History))
	assert.Equal(t, 0, len(clone.Comments))
}

func TestTask_IsVisibleTo(t *testing.T) {
	testCases := []struct {
		name   string
		task   *Task
		user   string
		groups []string
		expect bool
	}{
		{name: "assignee", task: &Task{Assignee: "alice"}, user: "alice", expect: true},
		{name: "other assignee", task: &Task{Assignee: "bob", CandidateUsers: []string{"alice"}}, user: "alice"},
		{name: "candidate user", task: &Task{CandidateUsers: []string{"alice"}}, user: "alice", expect: true},
		{name: "candidate group", task: &Task{CandidateGroups: []string{"manager"}}, user: "alice", groups: []string{"staff", "manager"}, expect: true},
		{name: "no match", task: &Task{CandidateGroups: []string{"manager"}}, user: "alice", groups: []string{"staff"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.task.IsVisibleTo(tc.user, tc.groups))
		})
	}
}
