package project

import (
	"bytes"
	"encoding/json"
	"time"
)

// Defaults applied on creation when the caller leaves a field empty.
const (
	DefaultProjectStatus = "active"
	DefaultTaskStatus    = "todo"
	DefaultTaskPriority  = "medium"

	TaskStatusDone = "done"
)

// Project attribute names match the legacy projects table.
type Project struct {
	ProjectID string    `json:"projectId" dynamodbav:"projectId"`
	Name      string    `json:"name" dynamodbav:"name"`
	Owner     *string   `json:"owner" dynamodbav:"owner"`
	Status    string    `json:"status" dynamodbav:"status"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Task is keyed by its project and its own id.
type Task struct {
	ProjectID string    `json:"projectId" dynamodbav:"projectId"`
	TaskID    string    `json:"taskId" dynamodbav:"taskId"`
	Title     string    `json:"title" dynamodbav:"title"`
	Status    string    `json:"status" dynamodbav:"status"`
	Assignee  *string   `json:"assignee" dynamodbav:"assignee"`
	Priority  string    `json:"priority" dynamodbav:"priority"`
	DueDate   *string   `json:"dueDate" dynamodbav:"dueDate"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Nullable is a JSON field that distinguishes absent, null and a value.
// Set is true when the key was present; Value is nil for an explicit null.
type Nullable struct {
	Set   bool
	Value *string
}

func (n *Nullable) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// ProjectUpdate lists the attributes to change. Nil fields are untouched.
type ProjectUpdate struct {
	Name      *string
	Status    *string
	Owner     Nullable
	UpdatedAt time.Time
}

func (upd ProjectUpdate) apply(p *Project) {
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.Owner.Set {
		p.Owner = upd.Owner.Value
	}
	p.UpdatedAt = upd.UpdatedAt
}

// TaskUpdate lists the attributes to change. Nil fields are untouched.
type TaskUpdate struct {
	Title     *string
	Status    *string
	Assignee  Nullable
	Priority  *string
	DueDate   Nullable
	UpdatedAt time.Time
}

func (upd TaskUpdate) apply(t *Task) {
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Assignee.Set {
		t.Assignee = upd.Assignee.Value
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.DueDate.Set {
		t.DueDate = upd.DueDate.Value
	}
	t.UpdatedAt = upd.UpdatedAt
}
