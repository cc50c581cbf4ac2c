package services

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrUserNotFound    = errors.New("user not found")

	// ErrTaskAlreadyRescheduled means the task was closed by an earlier
	// migration; its successor is the reschedulable one now.
	ErrTaskAlreadyRescheduled = errors.New("task has already been rescheduled")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// MigrationLimitError is a policy refusal, not a fault. MigrationCount is
// the count that would have resulted had the reschedule gone through.
type MigrationLimitError struct {
	MigrationCount int
}

func (e *MigrationLimitError) Error() string {
	return fmt.Sprintf("migration limit reached (count %d)", e.MigrationCount)
}
