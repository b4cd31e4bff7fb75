package api

import (
	"context"

	"taskboard-api/domain"
)

// Users is the slice of user operations the handlers consume.
type Users interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Lookup(ctx context.Context, id string) (*domain.User, error)
}

// Boards is the slice of board operations the handlers consume.
type Boards interface {
	List(ctx context.Context, u *domain.User) ([]domain.Board, error)
	Create(ctx context.Context, u *domain.User, name string) (*domain.Board, error)
	Rename(ctx context.Context, u *domain.User, boardID, name string) (*domain.Board, error)
	Delete(ctx context.Context, u *domain.User, boardID string) error
}

// Tasks is the slice of task operations the handlers consume.
type Tasks interface {
	List(ctx context.Context, u *domain.User, boardID string) ([]domain.Task, error)
	Create(ctx context.Context, u *domain.User, boardID, title, description string, dueDate *string) (*domain.Task, error)
	Update(ctx context.Context, u *domain.User, taskID string, upd domain.TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, u *domain.User, taskID string) error
}

// Authenticator mints session tokens and resolves them back to identities.
type Authenticator interface {
	Issue(userID string) (string, error)
	Resolve(token string) Identity
}
