package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// BoardService implements board operations with ownership enforcement.
type BoardService struct{ st Store }

func NewBoardService(st Store) BoardService { return BoardService{st: st} }

// List returns the boards owned by the user, and only those.
func (s BoardService) List(ctx context.Context, u *User) ([]Board, error) {
	return s.st.ListBoards(ctx, u.ID)
}

// Create persists a new board owned by the user.
func (s BoardService) Create(ctx context.Context, u *User, name string) (*Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name"}
	}
	b := Board{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.st.InsertBoard(ctx, b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Rename changes a board's name and nothing else.
func (s BoardService) Rename(ctx context.Context, u *User, boardID, name string) (*Board, error) {
	b, err := requireBoard(ctx, s.st, u, boardID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name"}
	}
	b.Name = name
	if err := s.st.UpdateBoard(ctx, *b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes a board together with all of its tasks.
func (s BoardService) Delete(ctx context.Context, u *User, boardID string) error {
	if _, err := requireBoard(ctx, s.st, u, boardID); err != nil {
		return err
	}
	if err := s.st.DeleteBoardTree(ctx, boardID); err != nil {
		return err
	}
	log.WithFields(log.Fields{"board": boardID, "user": u.ID}).Debug("board deleted")
	return nil
}
