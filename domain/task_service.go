package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskService implements task operations. Ownership is always checked
// through the task's parent board; tasks carry no user reference.
type TaskService struct{ st Store }

func NewTaskService(st Store) TaskService { return TaskService{st: st} }

// List returns the tasks of a board the user owns.
func (s TaskService) List(ctx context.Context, u *User, boardID string) ([]Task, error) {
	if _, err := requireBoard(ctx, s.st, u, boardID); err != nil {
		return nil, err
	}
	return s.st.ListTasks(ctx, boardID)
}

// Create persists a new task under a board the user owns. Description
// defaults to empty, status to pending, due date to null.
func (s TaskService) Create(ctx context.Context, u *User, boardID, title, description string, dueDate *string) (*Task, error) {
	if _, err := requireBoard(ctx, s.st, u, boardID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title"}
	}
	t := Task{
		ID:          uuid.NewString(),
		BoardID:     boardID,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		DueDate:     dueDate,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.st.InsertTask(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update applies only the supplied fields. An absent field is left
// unchanged; an explicit null due date clears it. Status values are
// accepted as supplied.
func (s TaskService) Update(ctx context.Context, u *User, taskID string, upd TaskUpdate) (*Task, error) {
	t, err := requireTask(ctx, s.st, u, taskID)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.DueDate.Set {
		t.DueDate = upd.DueDate.Value
	}
	if err := s.st.UpdateTask(ctx, *t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a task from a board the user owns.
func (s TaskService) Delete(ctx context.Context, u *User, taskID string) error {
	if _, err := requireTask(ctx, s.st, u, taskID); err != nil {
		return err
	}
	return s.st.DeleteTask(ctx, taskID)
}
