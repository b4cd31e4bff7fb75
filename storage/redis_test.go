package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"taskboard-api/domain"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb)
}

func TestRedisStoreUserRoundTrip(t *testing.T) {
	st := newTestRedisStore(t)
	ctx := context.Background()

	if u, err := st.GetUserByID(ctx, "u1"); err != nil || u != nil {
		t.Fatalf("expected nil for missing user, got %#v err=%v", u, err)
	}
	if err := st.InsertUser(ctx, domain.User{ID: "u1", Name: "Alice", Email: "alice@x.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	u, err := st.GetUserByEmail(ctx, "alice@x.com")
	if err != nil || u == nil || u.ID != "u1" {
		t.Fatalf("expected lookup by email, got %#v err=%v", u, err)
	}
	if u, _ := st.GetUserByEmail(ctx, "bob@x.com"); u != nil {
		t.Fatalf("expected nil for unknown email, got %#v", u)
	}
}

func TestRedisStoreBoardsAndTasks(t *testing.T) {
	st := newTestRedisStore(t)
	ctx := context.Background()

	if err := st.InsertBoard(ctx, domain.Board{ID: "b1", UserID: "u1", Name: "Home"}); err != nil {
		t.Fatalf("insert board: %v", err)
	}
	if err := st.InsertBoard(ctx, domain.Board{ID: "b2", UserID: "u2", Name: "Other"}); err != nil {
		t.Fatalf("insert board: %v", err)
	}

	boards, err := st.ListBoards(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(boards) != 1 || boards[0].ID != "b1" {
		t.Fatalf("expected only u1's board, got %#v", boards)
	}

	if err := st.UpdateBoard(ctx, domain.Board{ID: "b1", UserID: "u1", Name: "Renamed"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	b, _ := st.GetBoard(ctx, "b1")
	if b == nil || b.Name != "Renamed" {
		t.Fatalf("expected renamed board, got %#v", b)
	}
	if err := st.UpdateBoard(ctx, domain.Board{ID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	due := "2026-09-15"
	if err := st.InsertTask(ctx, domain.Task{ID: "t1", BoardID: "b1", Title: "Buy milk", Status: domain.StatusPending, DueDate: &due}); err != nil {
		t.Fatalf("insert task: %v", err)
	}
	task, err := st.GetTask(ctx, "t1")
	if err != nil || task == nil {
		t.Fatalf("get task: %#v err=%v", task, err)
	}
	if task.DueDate == nil || *task.DueDate != due {
		t.Fatalf("due date lost in round trip: %#v", task.DueDate)
	}

	if err := st.DeleteTask(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.DeleteTask(ctx, "t1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestRedisStoreDeleteBoardTree(t *testing.T) {
	st := newTestRedisStore(t)
	ctx := context.Background()

	if err := st.InsertBoard(ctx, domain.Board{ID: "b1", UserID: "u1"}); err != nil {
		t.Fatalf("insert board: %v", err)
	}
	if err := st.InsertBoard(ctx, domain.Board{ID: "b2", UserID: "u1"}); err != nil {
		t.Fatalf("insert board: %v", err)
	}
	for _, task := range []domain.Task{
		{ID: "t1", BoardID: "b1"},
		{ID: "t2", BoardID: "b1"},
		{ID: "t3", BoardID: "b2"},
	} {
		if err := st.InsertTask(ctx, task); err != nil {
			t.Fatalf("insert task: %v", err)
		}
	}

	if err := st.DeleteBoardTree(ctx, "b1"); err != nil {
		t.Fatalf("delete tree: %v", err)
	}
	if b, _ := st.GetBoard(ctx, "b1"); b != nil {
		t.Fatal("board must be gone")
	}
	if tasks, _ := st.ListTasks(ctx, "b1"); len(tasks) != 0 {
		t.Fatalf("expected no orphan tasks, got %#v", tasks)
	}
	if tasks, _ := st.ListTasks(ctx, "b2"); len(tasks) != 1 {
		t.Fatalf("cascade must not touch other boards, got %#v", tasks)
	}

	if err := st.DeleteBoardTree(ctx, "b1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseRedisOptions(t *testing.T) {
	opts, err := ParseRedisOptions("redis://localhost:6379/0")
	if err != nil {
		t.Fatalf("url form: %v", err)
	}
	if opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}

	opts, err = ParseRedisOptions("cache:6380,password=s3cret,ssl=true")
	if err != nil {
		t.Fatalf("connection-string form: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.Password != "s3cret" || opts.TLSConfig == nil {
		t.Fatalf("unexpected options %#v", opts)
	}

	if _, err := ParseRedisOptions(""); err == nil {
		t.Fatal("expected error for empty connection string")
	}
}
