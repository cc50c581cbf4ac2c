package worker

import (
	"context"
	"log"
	"time"

	"bullet-journal/backend/internal/models"

	"gorm.io/gorm"
)

// NewLineageCleanupHandler prunes finished lineages: a task that is done,
// has no successor and completed before the retention cutoff is deleted
// together with the rescheduled predecessors that led to it. Open
// lineages are never touched.
func NewLineageCleanupHandler(db *gorm.DB, retention time.Duration) JobHandler {
	return func(ctx context.Context, job *Job) error {
		cutoff := time.Now().Add(-retention)

		var finished []models.Task
		err := db.WithContext(ctx).
			Where("state = ? AND rescheduled_to IS NULL AND completed_at < ?",
				models.TaskStateDone, cutoff).
			Find(&finished).Error
		if err != nil {
			return err
		}

		removed := 0
		for _, tail := range finished {
			err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				task := tail
				for {
					if err := tx.Delete(&models.Task{}, "id = ?", task.ID).Error; err != nil {
						return err
					}
					removed++
					if task.RescheduledFrom == nil {
						return nil
					}
					var prev models.Task
					if err := tx.First(&prev, "id = ?", *task.RescheduledFrom).Error; err != nil {
						if err == gorm.ErrRecordNotFound {
							return nil
						}
						return err
					}
					task = prev
				}
			})
			if err != nil {
				return err
			}
		}

		if removed > 0 {
			log.Printf("Lineage cleanup removed %d tasks", removed)
		}
		return nil
	}
}
