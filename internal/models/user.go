package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// User carries a TeamID but nothing in the task or project paths enforces
// it; ownership is per-user through CreatedBy/AssignedTo.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Email        string     `json:"email" gorm:"unique;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Name         string     `json:"name" gorm:"not null"`
	AvatarURL    string     `json:"avatar_url"`
	TeamID       *uuid.UUID `json:"team_id" gorm:"type:uuid"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Tasks    []Task    `json:"tasks,omitempty" gorm:"foreignKey:CreatedBy"`
	Projects []Project `json:"projects,omitempty" gorm:"foreignKey:CreatedBy"`
}
