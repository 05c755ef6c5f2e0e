package project

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullable(t *testing.T) {
	var req struct {
		Owner    Nullable `json:"owner"`
		Assignee Nullable `json:"assignee"`
		DueDate  Nullable `json:"dueDate"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"owner":null,"assignee":"bob"}`), &req))

	assert.True(t, req.Owner.Set)
	assert.Nil(t, req.Owner.Value)
	assert.True(t, req.Assignee.Set)
	require.NotNil(t, req.Assignee.Value)
	assert.Equal(t, "bob", *req.Assignee.Value)
	assert.False(t, req.DueDate.Set)

	assert.Error(t, json.Unmarshal([]byte(`{"owner":42}`), &req))
}

func TestTaskUpdateApply(t *testing.T) {
	task := Task{Title: "a", Status: DefaultTaskStatus, Priority: DefaultTaskPriority, Assignee: strPtr("bob")}
	TaskUpdate{Priority: strPtr("high"), Assignee: Nullable{Set: true}, UpdatedAt: baseTime}.apply(&task)

	assert.Equal(t, "a", task.Title)
	assert.Equal(t, "high", task.Priority)
	assert.Nil(t, task.Assignee)
	assert.Equal(t, baseTime, task.UpdatedAt)
}
