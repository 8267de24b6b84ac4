package service

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/internal/taskstore"
	"stock-insight/pkg/logger"
	"stock-insight/pkg/utils"
)

// TaskService runs long operations in the background and tracks their
// lifecycle in the task store.
type TaskService interface {
	Submit(kind string, run func(ctx context.Context) (interface{}, error)) *dto.TaskRecord
	Status(id string) (*dto.TaskRecord, error)
	Cancel(id string) error

	StartSweeper() error
	StopSweeper()
}

type taskService struct {
	cfg   *config.Config
	log   *logger.Logger
	store taskstore.Store
	cron  *cron.Cron
}

func NewTaskService(cfg *config.Config, log *logger.Logger, store taskstore.Store) TaskService {
	return &taskService{
		cfg:   cfg,
		log:   log,
		store: store,
		cron:  cron.New(),
	}
}

// Submit registers a task and runs fn in the background under its own
// cancellable context bounded by the analyzer timeout.
func (s *taskService) Submit(kind string, run func(ctx context.Context) (interface{}, error)) *dto.TaskRecord {
	record := s.store.Create(kind)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Analyzer.TimeoutDuration)
	s.store.RegisterCancel(record.ID, cancel)

	utils.GoSafe(func() {
		defer cancel()

		if err := s.store.Update(record.ID, func(r *dto.TaskRecord) {
			if r.Status == dto.TaskPending {
				r.Status = dto.TaskProcessing
			}
		}); err != nil {
			return
		}

		result, err := run(ctx)
		s.finish(record.ID, kind, result, err)
	})

	return record
}

// finish records the outcome unless the task was already cancelled.
func (s *taskService) finish(id, kind string, result interface{}, err error) {
	updateErr := s.store.Update(id, func(r *dto.TaskRecord) {
		if r.Status.Finished() {
			return
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				r.Status = dto.TaskCancelled
				r.Message = "task cancelled"
			} else {
				r.Status = dto.TaskFailed
				r.Error = err.Error()
			}
			return
		}
		r.Status = dto.TaskCompleted
		r.Progress = 1.0
		r.Result = result
	})
	if updateErr != nil {
		s.log.Warn("failed to record task outcome",
			logger.StringField("task_id", id),
			logger.ErrorField(updateErr))
		return
	}

	s.log.Info("task finished",
		logger.StringField("task_id", id),
		logger.StringField("kind", kind),
		logger.ErrorField(err))
}

func (s *taskService) Status(id string) (*dto.TaskRecord, error) {
	return s.store.Get(id)
}

func (s *taskService) Cancel(id string) error {
	return s.store.Cancel(id)
}

// StartSweeper schedules periodic removal of finished task records older
// than the configured retention.
func (s *taskService) StartSweeper() error {
	_, err := s.cron.AddFunc(s.cfg.Task.SweepSchedule, s.sweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *taskService) StopSweeper() {
	s.cron.Stop()
}

func (s *taskService) sweep() {
	cutoff := time.Now().Add(-s.cfg.Task.Retention)
	removed := 0
	for _, record := range s.store.List() {
		if record.Status.Finished() && record.UpdatedAt.Before(cutoff) {
			s.store.Delete(record.ID)
			removed++
		}
	}
	if removed > 0 {
		s.log.Info("swept finished tasks", logger.IntField("removed", removed))
	}
}
