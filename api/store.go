package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ollamascout/scanner"
)

const queueKey = "scans:queue"

// popTimeout bounds each blocking queue read so workers notice shutdown.
const popTimeout = 5 * time.Second

var (
	// ErrTaskNotFound indicates the requested task doesn't exist in the store.
	ErrTaskNotFound = errors.New("task not found")
	// ErrQueueEmpty is returned when no task arrived within the pop timeout.
	ErrQueueEmpty = errors.New("queue empty")
)

// TaskStore defines persistence operations for scan tasks.
type TaskStore interface {
	CreateTask(ctx context.Context, task *ScanTask) error
	GetTask(ctx context.Context, id string) (*ScanTask, error)
	UpdateTask(ctx context.Context, task *ScanTask) error
	// UpdateProgress replaces only the progress snapshot of an existing task.
	UpdateProgress(ctx context.Context, id string, p scanner.Progress) error
	PushToQueue(ctx context.Context, taskID string) error
	PopFromQueue(ctx context.Context) (string, error)
}

// RedisStore implements TaskStore using Redis hashes that expire after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Redis-backed task store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) taskKey(id string) string {
	return fmt.Sprintf("scan:%s", id)
}

// CreateTask persists a new scan task.
func (s *RedisStore) CreateTask(ctx context.Context, task *ScanTask) error {
	return s.write(ctx, task)
}

// UpdateTask overwrites an existing task and refreshes its expiry.
func (s *RedisStore) UpdateTask(ctx context.Context, task *ScanTask) error {
	return s.write(ctx, task)
}

func (s *RedisStore) write(ctx context.Context, task *ScanTask) error {
	data, err := serializeTask(task)
	if err != nil {
		return err
	}
	key := s.taskKey(task.ID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// UpdateProgress rewrites the progress field alone and refreshes the expiry.
func (s *RedisStore) UpdateProgress(ctx context.Context, id string, p scanner.Progress) error {
	encoded, err := json.Marshal(p)
	if err != nil {
		return err
	}
	key := s.taskKey(id)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "progress", string(encoded))
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// GetTask retrieves a task by ID.
func (s *RedisStore) GetTask(ctx context.Context, id string) (*ScanTask, error) {
	res, err := s.client.HGetAll(ctx, s.taskKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, ErrTaskNotFound
	}
	return deserializeTask(res)
}

// PushToQueue enqueues a task ID for workers to process.
func (s *RedisStore) PushToQueue(ctx context.Context, taskID string) error {
	return s.client.LPush(ctx, queueKey, taskID).Err()
}

// PopFromQueue waits up to popTimeout for a task ID.
func (s *RedisStore) PopFromQueue(ctx context.Context) (string, error) {
	res, err := s.client.BRPop(ctx, popTimeout, queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrQueueEmpty
		}
		return "", err
	}
	if len(res) != 2 {
		return "", errors.New("unexpected response size from BRPOP")
	}
	return res[1], nil
}

func serializeTask(task *ScanTask) (map[string]interface{}, error) {
	targets, err := json.Marshal(task.Targets)
	if err != nil {
		return nil, err
	}

	encodeOptional := func(v any, present bool) (string, error) {
		if !present {
			return "", nil
		}
		encoded, err := json.Marshal(v)
		return string(encoded), err
	}
	progress, err := encodeOptional(task.Progress, task.Progress != nil)
	if err != nil {
		return nil, err
	}
	result, err := encodeOptional(task.Result, task.Result != nil)
	if err != nil {
		return nil, err
	}

	completedAt := ""
	if task.CompletedAt != nil {
		completedAt = task.CompletedAt.Format(time.RFC3339Nano)
	}

	return map[string]interface{}{
		"id":             task.ID,
		"status":         task.Status,
		"targets":        string(targets),
		"max_concurrent": task.MaxConcurrent,
		"dispatch":       task.Dispatch,
		"progress":       progress,
		"result":         result,
		"created_at":     task.CreatedAt.Format(time.RFC3339Nano),
		"completed_at":   completedAt,
		"error":          task.Error,
	}, nil
}

func deserializeTask(data map[string]string) (*ScanTask, error) {
	task := &ScanTask{
		ID:       data["id"],
		Status:   data["status"],
		Dispatch: data["dispatch"],
		Error:    data["error"],
	}

	if raw := data["targets"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &task.Targets); err != nil {
			return nil, err
		}
	}
	if raw := data["max_concurrent"]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		task.MaxConcurrent = n
	}
	if raw := data["progress"]; raw != "" {
		task.Progress = &scanner.Progress{}
		if err := json.Unmarshal([]byte(raw), task.Progress); err != nil {
			return nil, err
		}
	}
	if raw := data["result"]; raw != "" {
		task.Result = &scanner.Discovery{}
		if err := json.Unmarshal([]byte(raw), task.Result); err != nil {
			return nil, err
		}
	}
	if raw := data["created_at"]; raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		task.CreatedAt = t
	}
	if raw := data["completed_at"]; raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		task.CompletedAt = &t
	}

	return task, nil
}

// MemoryStore is an in-process TaskStore used by tests.
type MemoryStore struct {
	mu    sync.Mutex
	tasks map[string]ScanTask
	queue chan string
}

// NewMemoryStore creates a MemoryStore whose queue holds up to capacity IDs.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{tasks: make(map[string]ScanTask), queue: make(chan string, capacity)}
}

func (m *MemoryStore) CreateTask(_ context.Context, task *ScanTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = *task
	return nil
}

func (m *MemoryStore) GetTask(_ context.Context, id string) (*ScanTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &task, nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, task *ScanTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}
	m.tasks[task.ID] = *task
	return nil
}

func (m *MemoryStore) UpdateProgress(_ context.Context, id string, p scanner.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	task.Progress = &p
	m.tasks[id] = task
	return nil
}

func (m *MemoryStore) PushToQueue(_ context.Context, taskID string) error {
	select {
	case m.queue <- taskID:
		return nil
	default:
		return errors.New("queue is full")
	}
}

func (m *MemoryStore) PopFromQueue(ctx context.Context) (string, error) {
	select {
	case id := <-m.queue:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(popTimeout):
		return "", ErrQueueEmpty
	}
}
