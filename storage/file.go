package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"taskboard-api/domain"
)

// snapshot is the full persisted store document.
type snapshot struct {
	Users  []domain.User  `json:"users"`
	Boards []domain.Board `json:"boards"`
	Tasks  []domain.Task  `json:"tasks"`
}

// FileStore keeps the whole store in one JSON document. Every operation is a
// whole-document read-modify-write cycle; the mutex serializes those cycles
// so concurrent requests within the process cannot lose updates. Lookups are
// linear scans over the decoded snapshot.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the JSON document at path. The
// document is created lazily on first access.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (*snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			sn := &snapshot{Users: []domain.User{}, Boards: []domain.Board{}, Tasks: []domain.Task{}}
			if err := s.save(sn); err != nil {
				return nil, err
			}
			return sn, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	var sn snapshot
	if err := json.Unmarshal(raw, &sn); err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}
	return &sn, nil
}

func (s *FileStore) save(sn *snapshot) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}
	raw, err := json.MarshalIndent(sn, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

func (s *FileStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range sn.Users {
		if sn.Users[i].ID == id {
			u := sn.Users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (s *FileStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range sn.Users {
		if sn.Users[i].Email == email {
			u := sn.Users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (s *FileStore) InsertUser(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return err
	}
	sn.Users = append(sn.Users, u)
	return s.save(sn)
}

func (s *FileStore) ListBoards(ctx context.Context, userID string) ([]domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return nil, err
	}
	boards := []domain.Board{}
	for _, b := range sn.Boards {
		if b.UserID == userID {
			boards = append(boards, b)
		}
	}
	return boards, nil
}

func (s *FileStore) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range sn.Boards {
		if sn.Boards[i].ID == id {
			b := sn.Boards[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (s *FileStore) InsertBoard(ctx context.Context, b domain.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return err
	}
	sn.Boards = append(sn.Boards, b)
	return s.save(sn)
}

func (s *FileStore) UpdateBoard(ctx context.Context, b domain.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return err
	}
	for i := range sn.Boards {
		if sn.Boards[i].ID == b.ID {
			sn.Boards[i] = b
			return s.save(sn)
		}
	}
	return fmt.Errorf("board %s: %w", b.ID, domain.ErrNotFound)
}

// DeleteBoardTree removes the board and its tasks in one snapshot mutation,
// so the cascade is persisted by a single write.
func (s *FileStore) DeleteBoardTree(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return err
	}
	boards := sn.Boards[:0]
	found := false
	for _, b := range sn.Boards {
		if b.ID == id {
			found = true
			continue
		}
		boards = append(boards, b)
	}
	if !found {
		return fmt.Errorf("board %s: %w", id, domain.ErrNotFound)
	}
	sn.Boards = boards
	tasks := sn.Tasks[:0]
	for _, t := range sn.Tasks {
		if t.BoardID != id {
			tasks = append(tasks, t)
		}
	}
	sn.Tasks = tasks
	return s.save(sn)
}

func (s *FileStore) ListTasks(ctx context.Context, boardID string) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return nil, err
	}
	tasks := []domain.Task{}
	for _, t := range sn.Tasks {
		if t.BoardID == boardID {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (s *FileStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range sn.Tasks {
		if sn.Tasks[i].ID == id {
			t := sn.Tasks[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (s *FileStore) InsertTask(ctx context.Context, t domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return err
	}
	sn.Tasks = append(sn.Tasks, t)
	return s.save(sn)
}

func (s *FileStore) UpdateTask(ctx context.Context, t domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return err
	}
	for i := range sn.Tasks {
		if sn.Tasks[i].ID == t.ID {
			sn.Tasks[i] = t
			return s.save(sn)
		}
	}
	return fmt.Errorf("task %s: %w", t.ID, domain.ErrNotFound)
}

func (s *FileStore) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.load()
	if err != nil {
		return err
	}
	tasks := sn.Tasks[:0]
	found := false
	for _, t := range sn.Tasks {
		if t.ID == id {
			found = true
			continue
		}
		tasks = append(tasks, t)
	}
	if !found {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	sn.Tasks = tasks
	return s.save(sn)
}
