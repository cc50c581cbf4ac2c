package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"bullet-journal/backend/internal/models"
	"bullet-journal/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
	reschedule  services.RescheduleService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService, reschedule services.RescheduleService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService, reschedule: reschedule}
}

// parseDate accepts the journal's plain date form first, then full
// timestamps.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	id := uuid.FromStringOrNil(idStr.(string))
	if id == uuid.Nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		Title         string     `json:"title"`
		Description   string     `json:"description"`
		ScheduledDate string     `json:"scheduledDate"`
		ProjectID     *uuid.UUID `json:"projectId"`
		AssignedTo    *uuid.UUID `json:"assignedTo"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Title == "" || input.ScheduledDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and scheduled date are required"})
		return
	}

	scheduled, err := parseDate(input.ScheduledDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scheduled date"})
		return
	}

	task := models.Task{
		Title:         input.Title,
		Description:   input.Description,
		ScheduledDate: scheduled,
		State:         models.TaskStateNotDone,
		CreatedBy:     userID,
		AssignedTo:    input.AssignedTo,
		ProjectID:     input.ProjectID,
	}
	created, err := h.taskService.CreateTask(h.db, task)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": created})
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var filter services.TaskFilter
	if v := c.Query("startDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
			return
		}
		filter.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
			return
		}
		filter.EndDate = &t
	}
	if v := c.Query("projectId"); v != "" {
		id := uuid.FromStringOrNil(v)
		if id == uuid.Nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid projectId"})
			return
		}
		filter.ProjectID = &id
	}
	filter.State = c.Query("state")

	tasks, err := h.taskService.ListTasks(h.db, userID, filter)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	task, err := h.taskService.GetTaskByID(h.db, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))

	var input struct {
		Title         *string    `json:"title"`
		Description   *string    `json:"description"`
		ScheduledDate *string    `json:"scheduledDate"`
		State         *string    `json:"state"`
		ProjectID     *uuid.UUID `json:"projectId"`
		AssignedTo    *uuid.UUID `json:"assignedTo"`
		Acknowledged  *bool      `json:"acknowledged"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := services.TaskUpdate{
		Title:        input.Title,
		Description:  input.Description,
		State:        input.State,
		ProjectID:    input.ProjectID,
		AssignedTo:   input.AssignedTo,
		Acknowledged: input.Acknowledged,
	}
	if input.ScheduledDate != nil {
		t, err := parseDate(*input.ScheduledDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scheduled date"})
			return
		}
		update.ScheduledDate = &t
	}

	task, err := h.taskService.UpdateTask(h.db, id, update)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// RescheduleTask migrates a task forward: the original is closed, a
// successor is created on the new date and the two are linked, atomically.
func (h *TaskHandler) RescheduleTask(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))

	var input struct {
		NewDate string `json:"newDate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.NewDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New date is required"})
		return
	}

	newDate, err := parseDate(input.NewDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid new date"})
		return
	}

	result, err := h.reschedule.Reschedule(c.Request.Context(), h.db, id, newDate)
	if err != nil {
		var limitErr *services.MigrationLimitError
		switch {
		case errors.As(err, &limitErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":          "Migration limit reached",
				"message":        "This task has been rescheduled 3 times. Please confirm if it is still needed.",
				"migrationCount": limitErr.MigrationCount,
			})
		case errors.Is(err, services.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		case errors.Is(err, services.ErrTaskAlreadyRescheduled):
			c.JSON(http.StatusConflict, gin.H{"error": "Task has already been rescheduled"})
		default:
			log.Printf("Reschedule task error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"originalTask":   result.Original,
		"newTask":        result.New,
		"migrationCount": result.MigrationCount,
	})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	if err := h.taskService.DeleteTask(h.db, id); err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, services.ErrTaskAlreadyRescheduled):
		c.JSON(http.StatusConflict, gin.H{"error": "Task has already been rescheduled"})
	default:
		log.Printf("Task request error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
