package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"taskboard-api/domain"
)

// TableStore persists the three collections in Azure Table Storage.
// Users are keyed pk=rk=id. Boards are partitioned by owner (pk=userId,
// rk=boardId). Tasks are partitioned by board (pk=boardId, rk=taskId), which
// lets the cascade delete run as per-partition transactions.
type TableStore struct {
	userTable  *aztables.Client
	boardTable *aztables.Client
	taskTable  *aztables.Client
}

// NewTableStore creates a TableStore from the given connection string.
func NewTableStore(connStr, usersTable, boardsTable, tasksTable string) (*TableStore, error) {
	clientOptions := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &clientOptions)
	if err != nil {
		return nil, err
	}
	return &TableStore{
		userTable:  svc.NewClient(usersTable),
		boardTable: svc.NewClient(boardsTable),
		taskTable:  svc.NewClient(tasksTable),
	}, nil
}

type userEntity struct {
	aztables.Entity
	Name         string `json:"Name"`
	Email        string `json:"Email"`
	PasswordHash string `json:"PasswordHash"`
}

type boardEntity struct {
	aztables.Entity
	Name      string `json:"Name"`
	CreatedAt string `json:"CreatedAt"`
}

type taskEntity struct {
	aztables.Entity
	Title       string  `json:"Title"`
	Description string  `json:"Description"`
	Status      string  `json:"Status"`
	DueDate     *string `json:"DueDate,omitempty"`
	CreatedAt   string  `json:"CreatedAt"`
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == 404
}

func (e userEntity) toDomain() domain.User {
	return domain.User{ID: e.RowKey, Name: e.Name, Email: e.Email, PasswordHash: e.PasswordHash}
}

func (e boardEntity) toDomain() domain.Board {
	created, _ := time.Parse(time.RFC3339Nano, e.CreatedAt)
	return domain.Board{ID: e.RowKey, UserID: e.PartitionKey, Name: e.Name, CreatedAt: created}
}

func (e taskEntity) toDomain() domain.Task {
	created, _ := time.Parse(time.RFC3339Nano, e.CreatedAt)
	return domain.Task{
		ID:          e.RowKey,
		BoardID:     e.PartitionKey,
		Title:       e.Title,
		Description: e.Description,
		Status:      e.Status,
		DueDate:     e.DueDate,
		CreatedAt:   created,
	}
}

func boardToEntity(b domain.Board) boardEntity {
	return boardEntity{
		Entity:    aztables.Entity{PartitionKey: b.UserID, RowKey: b.ID},
		Name:      b.Name,
		CreatedAt: b.CreatedAt.Format(time.RFC3339Nano),
	}
}

func taskToEntity(t domain.Task) taskEntity {
	return taskEntity{
		Entity:      aztables.Entity{PartitionKey: t.BoardID, RowKey: t.ID},
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339Nano),
	}
}

func (s *TableStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	resp, err := s.userTable.GetEntity(ctx, id, id, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var ent userEntity
	if err := json.Unmarshal(resp.Value, &ent); err != nil {
		return nil, err
	}
	u := ent.toDomain()
	return &u, nil
}

func (s *TableStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	filter := "Email eq '" + email + "'"
	pager := s.userTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent userEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			u := ent.toDomain()
			return &u, nil
		}
	}
	return nil, nil
}

func (s *TableStore) InsertUser(ctx context.Context, u domain.User) error {
	ent := userEntity{
		Entity:       aztables.Entity{PartitionKey: u.ID, RowKey: u.ID},
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
	payload, err := json.Marshal(ent)
	if err == nil {
		_, err = s.userTable.AddEntity(ctx, payload, nil)
	}
	return err
}

func (s *TableStore) ListBoards(ctx context.Context, userID string) ([]domain.Board, error) {
	filter := "PartitionKey eq '" + userID + "'"
	pager := s.boardTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	boards := []domain.Board{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent boardEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			boards = append(boards, ent.toDomain())
		}
	}
	return boards, nil
}

func (s *TableStore) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	filter := "RowKey eq '" + id + "'"
	pager := s.boardTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent boardEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			b := ent.toDomain()
			return &b, nil
		}
	}
	return nil, nil
}

func (s *TableStore) InsertBoard(ctx context.Context, b domain.Board) error {
	payload, err := json.Marshal(boardToEntity(b))
	if err == nil {
		_, err = s.boardTable.AddEntity(ctx, payload, nil)
	}
	return err
}

func (s *TableStore) UpdateBoard(ctx context.Context, b domain.Board) error {
	payload, err := json.Marshal(boardToEntity(b))
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.boardTable.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &et, UpdateMode: aztables.UpdateModeReplace})
	if isNotFound(err) {
		return fmt.Errorf("board %s: %w", b.ID, domain.ErrNotFound)
	}
	return err
}

// DeleteBoardTree removes every task of the board through per-partition
// transactions, then the board row. Tasks go first so a failure in between
// can leave an empty board but never an orphan task.
func (s *TableStore) DeleteBoardTree(ctx context.Context, id string) error {
	b, err := s.GetBoard(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("board %s: %w", id, domain.ErrNotFound)
	}
	tasks, err := s.ListTasks(ctx, id)
	if err != nil {
		return err
	}
	// transactions accept at most 100 actions
	for start := 0; start < len(tasks); start += 100 {
		end := start + 100
		if end > len(tasks) {
			end = len(tasks)
		}
		actions := make([]aztables.TransactionAction, 0, end-start)
		for _, t := range tasks[start:end] {
			payload, err := json.Marshal(aztables.Entity{PartitionKey: id, RowKey: t.ID})
			if err != nil {
				return err
			}
			actions = append(actions, aztables.TransactionAction{
				ActionType: aztables.TransactionTypeDelete,
				Entity:     payload,
			})
		}
		if _, err := s.taskTable.SubmitTransaction(ctx, actions, nil); err != nil {
			return err
		}
	}
	_, err = s.boardTable.DeleteEntity(ctx, b.UserID, b.ID, nil)
	if isNotFound(err) {
		return nil
	}
	return err
}

func (s *TableStore) ListTasks(ctx context.Context, boardID string) ([]domain.Task, error) {
	filter := "PartitionKey eq '" + boardID + "'"
	pager := s.taskTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	tasks := []domain.Task{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent taskEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			tasks = append(tasks, ent.toDomain())
		}
	}
	return tasks, nil
}

func (s *TableStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	filter := "RowKey eq '" + id + "'"
	pager := s.taskTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent taskEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			t := ent.toDomain()
			return &t, nil
		}
	}
	return nil, nil
}

func (s *TableStore) InsertTask(ctx context.Context, t domain.Task) error {
	payload, err := json.Marshal(taskToEntity(t))
	if err == nil {
		_, err = s.taskTable.AddEntity(ctx, payload, nil)
	}
	return err
}

func (s *TableStore) UpdateTask(ctx context.Context, t domain.Task) error {
	payload, err := json.Marshal(taskToEntity(t))
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.taskTable.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &et, UpdateMode: aztables.UpdateModeReplace})
	if isNotFound(err) {
		return fmt.Errorf("task %s: %w", t.ID, domain.ErrNotFound)
	}
	return err
}

func (s *TableStore) DeleteTask(ctx context.Context, id string) error {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	_, err = s.taskTable.DeleteEntity(ctx, t.BoardID, t.ID, nil)
	if isNotFound(err) {
		return nil
	}
	return err
}
