package domain

import "context"

// Store is the persistence contract the entity services depend on.
// Get and find methods return (nil, nil) when the entity is absent.
// Update and delete methods return ErrNotFound for a missing entity.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	InsertUser(ctx context.Context, u User) error

	ListBoards(ctx context.Context, userID string) ([]Board, error)
	GetBoard(ctx context.Context, id string) (*Board, error)
	InsertBoard(ctx context.Context, b Board) error
	UpdateBoard(ctx context.Context, b Board) error
	// DeleteBoardTree removes a board and every task that references it.
	// Backends must never leave a task whose board is gone.
	DeleteBoardTree(ctx context.Context, id string) error

	ListTasks(ctx context.Context, boardID string) ([]Task, error)
	GetTask(ctx context.Context, id string) (*Task, error)
	InsertTask(ctx context.Context, t Task) error
	UpdateTask(ctx context.Context, t Task) error
	DeleteTask(ctx context.Context, id string) error
}
