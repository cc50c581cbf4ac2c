package services

import (
	"context"
	"errors"
	"time"

	"bullet-journal/backend/internal/migration"
	"bullet-journal/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RescheduleResult is the outcome of a successful migration: the closed
// original, the successor, and the lineage's new migration count.
type RescheduleResult struct {
	Original       models.Task
	New            models.Task
	MigrationCount int
}

type RescheduleService interface {
	Reschedule(ctx context.Context, db *gorm.DB, taskID uuid.UUID, newDate time.Time) (*RescheduleResult, error)
}

type RescheduleServiceImpl struct {
	policy migration.Policy
}

func NewRescheduleService(policy migration.Policy) *RescheduleServiceImpl {
	return &RescheduleServiceImpl{policy: policy}
}

// Reschedule closes the task, creates its successor and links the two in
// one transaction. The whole mutation commits together or not at all;
// gorm rolls back on any error or panic, so there is no bare rollback
// path to forget.
func (s *RescheduleServiceImpl) Reschedule(ctx context.Context, db *gorm.DB, taskID uuid.UUID, newDate time.Time) (*RescheduleResult, error) {
	var result RescheduleResult

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := lockForUpdate(tx).First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		// A closed task already has its one successor; a concurrent
		// caller that lost the row-lock race lands here.
		if task.IsClosed() || task.RescheduledTo != nil {
			return ErrTaskAlreadyRescheduled
		}

		decision := s.policy.Decide(task.MigrationCount)
		if !decision.Allowed {
			return &MigrationLimitError{MigrationCount: decision.NewCount}
		}

		if err := tx.Model(&models.Task{}).
			Where("id = ?", task.ID).
			Update("state", models.TaskStateRescheduled).Error; err != nil {
			return err
		}

		successor := models.Task{
			ID:              uuid.Must(uuid.NewV4()),
			Title:           task.Title,
			Description:     task.Description,
			ScheduledDate:   newDate,
			State:           models.TaskStateNotDone,
			CreatedBy:       task.CreatedBy,
			AssignedTo:      task.AssignedTo,
			ProjectID:       task.ProjectID,
			MigrationCount:  decision.NewCount,
			RescheduledFrom: &task.ID,
		}
		if err := tx.Create(&successor).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("id = ?", task.ID).
			Update("rescheduled_to", successor.ID).Error; err != nil {
			return err
		}

		task.State = models.TaskStateRescheduled
		task.RescheduledTo = &successor.ID

		result = RescheduleResult{
			Original:       task,
			New:            successor,
			MigrationCount: decision.NewCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// lockForUpdate takes a row lock so concurrent reschedules of the same
// task serialize. sqlite has no FOR UPDATE; its single writer gives the
// same guarantee in tests.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
