package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Task statuses recognized by clients. The operation layer does not enforce
// the set; status values are stored as supplied.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Task belongs to a board and is owned transitively through it.
type Task struct {
	ID          string    `json:"id"`
	BoardID     string    `json:"boardId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DueDate     *string   `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TaskUpdate carries a partial update. Nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	DueDate     OptionalString `json:"dueDate"`
}

// HasChanges reports whether any field was supplied.
func (u TaskUpdate) HasChanges() bool {
	return u.Title != nil || u.Description != nil || u.Status != nil || u.DueDate.Set
}

// OptionalString distinguishes an absent field from one supplied as null.
// UnmarshalJSON only runs when the key is present, so Set records presence
// and Value carries the supplied string or nil for an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
