package domain

import (
	"context"
	"fmt"
)

// Ownership is a single comparison against the owner chain: boards carry the
// owning user directly, tasks reach it through their parent board.

// requireBoard resolves a board and checks the caller owns it. Lookup happens
// before the ownership check so a missing board reports not-found rather than
// forbidden.
func requireBoard(ctx context.Context, st Store, u *User, id string) (*Board, error) {
	b, err := st.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	if b.UserID != u.ID {
		return nil, ErrForbidden
	}
	return b, nil
}

// requireTask resolves a task and walks to its parent board for the ownership
// check. A task whose board record is gone reports the board as not found;
// that state indicates a broken cascade, not a permissions problem.
func requireTask(ctx context.Context, st Store, u *User, id string) (*Task, error) {
	t, err := st.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	b, err := st.GetBoard(ctx, t.BoardID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("board %s: %w", t.BoardID, ErrNotFound)
	}
	if b.UserID != u.ID {
		return nil, ErrForbidden
	}
	return t, nil
}
