package storage

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"taskboard-api/domain"
)

const (
	usersKey  = "tb:users"
	boardsKey = "tb:boards"
	tasksKey  = "tb:tasks"
)

// RedisStore keeps each collection in a redis hash keyed by entity id, with
// JSON-encoded records as values. Secondary lookups (email, foreign keys)
// scan the hash, matching the store contract's linear-scan semantics.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// ParseRedisOptions accepts either a redis URL or the comma-separated
// "host:port,password=...,ssl=true" connection-string form.
func ParseRedisOptions(connStr string) (*redis.Options, error) {
	opts, err := redis.ParseURL(connStr)
	if err == nil {
		return opts, nil
	}
	parts := strings.Split(connStr, ",")
	if parts[0] == "" {
		return nil, fmt.Errorf("empty redis connection string")
	}
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts, nil
}

func (s *RedisStore) getJSON(ctx context.Context, key, id string, dst any) (bool, error) {
	raw, err := s.rdb.HGet(ctx, key, id).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) putJSON(ctx context.Context, key, id string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, key, id, raw).Err()
}

func (s *RedisStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	ok, err := s.getJSON(ctx, usersKey, id, &u)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (s *RedisStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	all, err := s.rdb.HGetAll(ctx, usersKey).Result()
	if err != nil {
		return nil, err
	}
	for _, raw := range all {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return nil, err
		}
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *RedisStore) InsertUser(ctx context.Context, u domain.User) error {
	return s.putJSON(ctx, usersKey, u.ID, u)
}

func (s *RedisStore) ListBoards(ctx context.Context, userID string) ([]domain.Board, error) {
	all, err := s.rdb.HGetAll(ctx, boardsKey).Result()
	if err != nil {
		return nil, err
	}
	boards := []domain.Board{}
	for _, raw := range all {
		var b domain.Board
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, err
		}
		if b.UserID == userID {
			boards = append(boards, b)
		}
	}
	return boards, nil
}

func (s *RedisStore) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	var b domain.Board
	ok, err := s.getJSON(ctx, boardsKey, id, &b)
	if err != nil || !ok {
		return nil, err
	}
	return &b, nil
}

func (s *RedisStore) InsertBoard(ctx context.Context, b domain.Board) error {
	return s.putJSON(ctx, boardsKey, b.ID, b)
}

func (s *RedisStore) UpdateBoard(ctx context.Context, b domain.Board) error {
	exists, err := s.rdb.HExists(ctx, boardsKey, b.ID).Result()
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("board %s: %w", b.ID, domain.ErrNotFound)
	}
	return s.putJSON(ctx, boardsKey, b.ID, b)
}

// DeleteBoardTree removes the board and its tasks through one MULTI/EXEC
// pipeline, so the cascade commits atomically.
func (s *RedisStore) DeleteBoardTree(ctx context.Context, id string) error {
	exists, err := s.rdb.HExists(ctx, boardsKey, id).Result()
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("board %s: %w", id, domain.ErrNotFound)
	}
	tasks, err := s.ListTasks(ctx, id)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.HDel(ctx, boardsKey, id)
	if len(tasks) > 0 {
		ids := make([]string, len(tasks))
		for i, t := range tasks {
			ids[i] = t.ID
		}
		pipe.HDel(ctx, tasksKey, ids...)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) ListTasks(ctx context.Context, boardID string) ([]domain.Task, error) {
	all, err := s.rdb.HGetAll(ctx, tasksKey).Result()
	if err != nil {
		return nil, err
	}
	tasks := []domain.Task{}
	for _, raw := range all {
		var t domain.Task
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, err
		}
		if t.BoardID == boardID {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (s *RedisStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	ok, err := s.getJSON(ctx, tasksKey, id, &t)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

func (s *RedisStore) InsertTask(ctx context.Context, t domain.Task) error {
	return s.putJSON(ctx, tasksKey, t.ID, t)
}

func (s *RedisStore) UpdateTask(ctx context.Context, t domain.Task) error {
	exists, err := s.rdb.HExists(ctx, tasksKey, t.ID).Result()
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("task %s: %w", t.ID, domain.ErrNotFound)
	}
	return s.putJSON(ctx, tasksKey, t.ID, t)
}

func (s *RedisStore) DeleteTask(ctx context.Context, id string) error {
	removed, err := s.rdb.HDel(ctx, tasksKey, id).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
