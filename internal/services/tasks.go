package services

import (
	"errors"
	"time"

	"bullet-journal/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskFilter narrows the journal listing. All fields are optional; the
// listing is always scoped to tasks the user created or is assigned to.
type TaskFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	ProjectID *uuid.UUID
	State     string
}

// TaskUpdate is a partial update. Nil pointer fields keep the stored
// value; ProjectID and AssignedTo are written as sent, nil clearing them.
type TaskUpdate struct {
	Title         *string
	Description   *string
	ScheduledDate *time.Time
	State         *string
	ProjectID     *uuid.UUID
	AssignedTo    *uuid.UUID
	Acknowledged  *bool
}

type TaskService interface {
	CreateTask(db *gorm.DB, task models.Task) (models.Task, error)
	GetTaskByID(db *gorm.DB, id uuid.UUID) (models.Task, error)
	ListTasks(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]models.Task, error)
	UpdateTask(db *gorm.DB, id uuid.UUID, update TaskUpdate) (models.Task, error)
	DeleteTask(db *gorm.DB, id uuid.UUID) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, task models.Task) (models.Task, error) {
	if task.ID == uuid.Nil {
		task.ID = uuid.Must(uuid.NewV4())
	}
	if task.State == "" {
		task.State = models.TaskStateNotDone
	}
	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, id uuid.UUID) (models.Task, error) {
	var task models.Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]models.Task, error) {
	query := db.Where("created_by = ? OR assigned_to = ?", userID, userID)

	if filter.StartDate != nil {
		query = query.Where("scheduled_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("scheduled_date <= ?", *filter.EndDate)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}

	var tasks []models.Task
	if err := query.Order("scheduled_date ASC, created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, id uuid.UUID, update TaskUpdate) (models.Task, error) {
	var task models.Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}

	// A migrated task is closed; only the coordinator touches its
	// linkage fields.
	if task.IsClosed() {
		return models.Task{}, ErrTaskAlreadyRescheduled
	}

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.ScheduledDate != nil {
		task.ScheduledDate = *update.ScheduledDate
	}
	if update.State != nil {
		task.State = *update.State
		if *update.State == models.TaskStateDone && task.CompletedAt == nil {
			now := time.Now()
			task.CompletedAt = &now
		}
	}
	task.ProjectID = update.ProjectID
	task.AssignedTo = update.AssignedTo
	if update.Acknowledged != nil {
		task.Acknowledged = *update.Acknowledged
	}

	if err := db.Save(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&models.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
