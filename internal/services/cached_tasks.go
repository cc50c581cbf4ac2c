package services

import (
	"context"
	"fmt"
	"time"

	"bullet-journal/backend/internal/cache"
	"bullet-journal/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	taskCacheTTL    = 30 * time.Minute
	journalCacheTTL = 10 * time.Minute
)

// CachedTaskService decorates the task and reschedule services with a
// Redis read-through cache. Cache failures fall back to the store; they
// never surface to the caller.
type CachedTaskService struct {
	tasks      TaskService
	reschedule RescheduleService
	cache      *cache.RedisCache
}

func NewCachedTaskService(tasks TaskService, reschedule RescheduleService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{tasks: tasks, reschedule: reschedule, cache: cacheInstance}
}

func taskKey(id uuid.UUID) string {
	return fmt.Sprintf("task:%s", id.String())
}

func journalKey(userID uuid.UUID, filter TaskFilter) string {
	start, end, project := "", "", ""
	if filter.StartDate != nil {
		start = filter.StartDate.Format("2006-01-02")
	}
	if filter.EndDate != nil {
		end = filter.EndDate.Format("2006-01-02")
	}
	if filter.ProjectID != nil {
		project = filter.ProjectID.String()
	}
	return fmt.Sprintf("journal:%s:%s:%s:%s:%s", userID.String(), start, end, project, filter.State)
}

func journalPattern(userID uuid.UUID) string {
	return fmt.Sprintf("journal:%s:*", userID.String())
}

func (s *CachedTaskService) invalidate(task models.Task) {
	keys := []string{taskKey(task.ID)}
	s.cache.Delete(keys...)
	s.cache.DeletePattern(journalPattern(task.CreatedBy))
	if task.AssignedTo != nil {
		s.cache.DeletePattern(journalPattern(*task.AssignedTo))
	}
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, task models.Task) (models.Task, error) {
	created, err := s.tasks.CreateTask(db, task)
	if err != nil {
		return created, err
	}
	s.cache.Set(taskKey(created.ID), created, taskCacheTTL)
	s.cache.DeletePattern(journalPattern(created.CreatedBy))
	if created.AssignedTo != nil {
		s.cache.DeletePattern(journalPattern(*created.AssignedTo))
	}
	return created, nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, id uuid.UUID) (models.Task, error) {
	var cached models.Task
	if err := s.cache.Get(taskKey(id), &cached); err == nil {
		return cached, nil
	}

	task, err := s.tasks.GetTaskByID(db, id)
	if err != nil {
		return task, err
	}
	s.cache.Set(taskKey(id), task, taskCacheTTL)
	return task, nil
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]models.Task, error) {
	key := journalKey(userID, filter)

	var cached []models.Task
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	tasks, err := s.tasks.ListTasks(db, userID, filter)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, tasks, journalCacheTTL)
	return tasks, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, id uuid.UUID, update TaskUpdate) (models.Task, error) {
	task, err := s.tasks.UpdateTask(db, id, update)
	if err != nil {
		return task, err
	}
	s.invalidate(task)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, id uuid.UUID) error {
	task, getErr := s.tasks.GetTaskByID(db, id)

	if err := s.tasks.DeleteTask(db, id); err != nil {
		return err
	}

	if getErr == nil {
		s.invalidate(task)
	} else {
		s.cache.Delete(taskKey(id))
	}
	return nil
}

// Reschedule delegates to the coordinator and evicts both ends of the new
// lineage link on success.
func (s *CachedTaskService) Reschedule(ctx context.Context, db *gorm.DB, taskID uuid.UUID, newDate time.Time) (*RescheduleResult, error) {
	result, err := s.reschedule.Reschedule(ctx, db, taskID, newDate)
	if err != nil {
		return nil, err
	}
	s.invalidate(result.Original)
	s.cache.Delete(taskKey(result.New.ID))
	return result, nil
}

func (s *CachedTaskService) CacheStats() map[string]interface{} {
	return s.cache.Stats()
}
