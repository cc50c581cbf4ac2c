package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	TaskStateNotDone     = "not_done"
	TaskStateDone        = "done"
	TaskStateRescheduled = "rescheduled"
)

// Task is one entry in a bullet-journal lineage. Rescheduling never
// deletes a task: it closes this one (state=rescheduled) and links a
// successor through RescheduledTo/RescheduledFrom.
type Task struct {
	ID              uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Title           string     `json:"title" gorm:"not null"`
	Description     string     `json:"description"`
	ScheduledDate   time.Time  `json:"scheduled_date" gorm:"type:date;not null"`
	State           string     `json:"state" gorm:"not null;default:'not_done'"`
	CreatedBy       uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
	AssignedTo      *uuid.UUID `json:"assigned_to" gorm:"type:uuid"`
	ProjectID       *uuid.UUID `json:"project_id" gorm:"type:uuid"`
	MigrationCount  int        `json:"migration_count" gorm:"not null;default:0"`
	RescheduledFrom *uuid.UUID `json:"rescheduled_from" gorm:"type:uuid"`
	RescheduledTo   *uuid.UUID `json:"rescheduled_to" gorm:"type:uuid"`
	CompletedAt     *time.Time `json:"completed_at"`
	Acknowledged    bool       `json:"acknowledged" gorm:"not null;default:false"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsClosed reports whether the task has already been migrated. A closed
// task is read-only apart from its linkage fields.
func (t *Task) IsClosed() bool {
	return t.State == TaskStateRescheduled
}
