package domain

import "context"

type fakeStore struct {
	users  map[string]User
	boards map[string]Board
	tasks  map[string]Task
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  map[string]User{},
		boards: map[string]Board{},
		tasks:  map[string]Task{},
	}
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertUser(ctx context.Context, u User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeStore) ListBoards(ctx context.Context, userID string) ([]Board, error) {
	out := []Board{}
	for _, b := range f.boards {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) GetBoard(ctx context.Context, id string) (*Board, error) {
	b, ok := f.boards[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeStore) InsertBoard(ctx context.Context, b Board) error {
	f.boards[b.ID] = b
	return nil
}

func (f *fakeStore) UpdateBoard(ctx context.Context, b Board) error {
	if _, ok := f.boards[b.ID]; !ok {
		return ErrNotFound
	}
	f.boards[b.ID] = b
	return nil
}

func (f *fakeStore) DeleteBoardTree(ctx context.Context, id string) error {
	if _, ok := f.boards[id]; !ok {
		return ErrNotFound
	}
	delete(f.boards, id)
	for tid, t := range f.tasks {
		if t.BoardID == id {
			delete(f.tasks, tid)
		}
	}
	return nil
}

func (f *fakeStore) ListTasks(ctx context.Context, boardID string) ([]Task, error) {
	out := []Task{}
	for _, t := range f.tasks {
		if t.BoardID == boardID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) GetTask(ctx context.Context, id string) (*Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeStore) InsertTask(ctx context.Context, t Task) error {
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeStore) UpdateTask(ctx context.Context, t Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, id string) error {
	if _, ok := f.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}
