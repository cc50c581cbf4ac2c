package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type Project struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Color       string    `json:"color" gorm:"not null;default:'#6B7280'"`
	Icon        string    `json:"icon"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	Archived    bool      `json:"archived" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:ProjectID"`
}

// ProjectSummary is the list representation: a project plus the number of
// tasks in it that are not yet done.
type ProjectSummary struct {
	Project
	ActiveTaskCount int64 `json:"active_task_count"`
}
