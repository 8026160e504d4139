package posttest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"yatube-backend/internal/infrastructure/storage"
)

// Objects is an in-memory bucket.
type Objects struct {
	mu    sync.Mutex
	data  map[string][]byte
	types map[string]string
}

func NewObjects() *Objects {
	return &Objects{data: make(map[string][]byte), types: make(map[string]string)}
}

func (o *Objects) Upload(_ context.Context, key string, data []byte, contentType string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.data[key] = append([]byte(nil), data...)
	o.types[key] = contentType
	return nil
}

func (o *Objects) Download(_ context.Context, key string) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	data, ok := o.data[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return append([]byte(nil), data...), nil
}

func (o *Objects) RemoveObjects(_ context.Context, keys []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, k := range keys {
		delete(o.data, k)
		delete(o.types, k)
	}
	return nil
}

// Keys lists the stored keys in order.
func (o *Objects) Keys() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	keys := make([]string, 0, len(o.data))
	for k := range o.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (o *Objects) ContentType(key string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.types[key]
}

// ProcessTask is a recorded image processing request.
type ProcessTask struct {
	PostID int64
	Key    string
}

// Queue records enqueued image tasks instead of sending them to Redis.
type Queue struct {
	mu        sync.Mutex
	Processed []ProcessTask
	Deleted   [][]string
	Err       error
}

func (q *Queue) EnqueueProcessImage(_ context.Context, postID int64, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	q.Processed = append(q.Processed, ProcessTask{PostID: postID, Key: key})
	return nil
}

func (q *Queue) EnqueueDeleteImages(_ context.Context, keys ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	if len(keys) > 0 {
		q.Deleted = append(q.Deleted, keys)
	}
	return nil
}

// ErrQueueDown simulates an unreachable broker.
var ErrQueueDown = errors.New("queue unavailable")
