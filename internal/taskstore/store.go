package taskstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"stock-insight/internal/dto"
)

// Store tracks asynchronous task records and their cancel functions.
type Store interface {
	Create(kind string) *dto.TaskRecord
	Get(id string) (*dto.TaskRecord, error)
	Update(id string, fn func(*dto.TaskRecord)) error
	Delete(id string)
	List() []*dto.TaskRecord

	RegisterCancel(id string, cancel context.CancelFunc)
	Cancel(id string) error
}

type memoryStore struct {
	mu      sync.RWMutex
	tasks   map[string]*dto.TaskRecord
	cancels map[string]context.CancelFunc
}

func New() Store {
	return &memoryStore{
		tasks:   make(map[string]*dto.TaskRecord),
		cancels: make(map[string]context.CancelFunc),
	}
}

func (s *memoryStore) Create(kind string) *dto.TaskRecord {
	now := time.Now()
	record := &dto.TaskRecord{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    dto.TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.tasks[record.ID] = record
	s.mu.Unlock()

	return snapshot(record)
}

func (s *memoryStore) Get(id string) (*dto.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.tasks[id]
	if !ok {
		return nil, dto.ErrTaskNotFound
	}
	return snapshot(record), nil
}

// Update applies fn to the stored record under the lock and refreshes its
// UpdatedAt timestamp.
func (s *memoryStore) Update(id string, fn func(*dto.TaskRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tasks[id]
	if !ok {
		return dto.ErrTaskNotFound
	}
	fn(record)
	record.UpdatedAt = time.Now()
	return nil
}

func (s *memoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tasks, id)
	delete(s.cancels, id)
}

func (s *memoryStore) List() []*dto.TaskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*dto.TaskRecord, 0, len(s.tasks))
	for _, record := range s.tasks {
		out = append(out, snapshot(record))
	}
	return out
}

func (s *memoryStore) RegisterCancel(id string, cancel context.CancelFunc) {
	s.mu.Lock()
	s.cancels[id] = cancel
	s.mu.Unlock()
}

// Cancel stops a pending or processing task. Finished tasks are left
// untouched and report ErrTaskNotCancellable.
func (s *memoryStore) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tasks[id]
	if !ok {
		return dto.ErrTaskNotFound
	}
	if record.Status.Finished() {
		return dto.ErrTaskNotCancellable
	}

	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
	record.Status = dto.TaskCancelled
	record.Message = "task cancelled"
	record.UpdatedAt = time.Now()
	return nil
}

func snapshot(record *dto.TaskRecord) *dto.TaskRecord {
	copied := *record
	return &copied
}
