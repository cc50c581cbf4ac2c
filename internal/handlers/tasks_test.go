package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bullet-journal/backend/internal/handlers"
	"bullet-journal/backend/internal/models"
	"bullet-journal/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type MockTaskService struct {
	tasks       []models.Task
	returnError error
}

func (m *MockTaskService) CreateTask(db *gorm.DB, task models.Task) (models.Task, error) {
	if m.returnError != nil {
		return models.Task{}, m.returnError
	}
	task.ID = uuid.Must(uuid.NewV4())
	m.tasks = append(m.tasks, task)
	return task, nil
}

func (m *MockTaskService) GetTaskByID(db *gorm.DB, id uuid.UUID) (models.Task, error) {
	if m.returnError != nil {
		return models.Task{}, m.returnError
	}
	for _, task := range m.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return models.Task{}, services.ErrTaskNotFound
}

func (m *MockTaskService) ListTasks(db *gorm.DB, userID uuid.UUID, filter services.TaskFilter) ([]models.Task, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	return m.tasks, nil
}

func (m *MockTaskService) UpdateTask(db *gorm.DB, id uuid.UUID, update services.TaskUpdate) (models.Task, error) {
	if m.returnError != nil {
		return models.Task{}, m.returnError
	}
	for _, task := range m.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return models.Task{}, services.ErrTaskNotFound
}

func (m *MockTaskService) DeleteTask(db *gorm.DB, id uuid.UUID) error {
	if m.returnError != nil {
		return m.returnError
	}
	for _, task := range m.tasks {
		if task.ID == id {
			return nil
		}
	}
	return services.ErrTaskNotFound
}

type MockRescheduleService struct {
	result      *services.RescheduleResult
	returnError error
	gotTaskID   uuid.UUID
	gotNewDate  time.Time
}

func (m *MockRescheduleService) Reschedule(ctx context.Context, db *gorm.DB, taskID uuid.UUID, newDate time.Time) (*services.RescheduleResult, error) {
	m.gotTaskID = taskID
	m.gotNewDate = newDate
	if m.returnError != nil {
		return nil, m.returnError
	}
	return m.result, nil
}

func setupTaskRouter(taskService services.TaskService, reschedule services.RescheduleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewTaskHandler(nil, taskService, reschedule)
	router := gin.New()

	// Stand-in for the auth middleware.
	router.Use(func(c *gin.Context) {
		c.Set("user_id", uuid.Must(uuid.NewV4()).String())
		c.Next()
	})

	router.GET("/tasks", handler.GetTasks)
	router.POST("/tasks", handler.CreateTask)
	router.GET("/tasks/:id", handler.GetTaskByID)
	router.PATCH("/tasks/:id", handler.UpdateTask)
	router.POST("/tasks/:id/reschedule", handler.RescheduleTask)
	router.DELETE("/tasks/:id", handler.DeleteTask)
	return router
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateTask(t *testing.T) {
	router := setupTaskRouter(&MockTaskService{}, &MockRescheduleService{})

	w := performJSON(router, "POST", "/tasks", map[string]string{
		"title":         "Test Task",
		"scheduledDate": "2024-01-01",
	})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}
}

func TestCreateTaskMissingFields(t *testing.T) {
	router := setupTaskRouter(&MockTaskService{}, &MockRescheduleService{})

	w := performJSON(router, "POST", "/tasks", map[string]string{"title": "No date"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "Title and scheduled date are required" {
		t.Errorf("Unexpected error message: %q", resp["error"])
	}
}

func TestGetTaskByIDNotFound(t *testing.T) {
	router := setupTaskRouter(&MockTaskService{}, &MockRescheduleService{})

	w := performJSON(router, "GET", "/tasks/"+uuid.Must(uuid.NewV4()).String(), nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestRescheduleTaskSuccess(t *testing.T) {
	originalID := uuid.Must(uuid.NewV4())
	newID := uuid.Must(uuid.NewV4())
	mock := &MockRescheduleService{
		result: &services.RescheduleResult{
			Original: models.Task{
				ID:            originalID,
				State:         models.TaskStateRescheduled,
				RescheduledTo: &newID,
			},
			New: models.Task{
				ID:              newID,
				State:           models.TaskStateNotDone,
				MigrationCount:  1,
				RescheduledFrom: &originalID,
			},
			MigrationCount: 1,
		},
	}
	router := setupTaskRouter(&MockTaskService{}, mock)

	w := performJSON(router, "POST", "/tasks/"+originalID.String()+"/reschedule",
		map[string]string{"newDate": "2024-01-05"})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d (%s)", http.StatusOK, w.Code, w.Body.String())
	}

	if mock.gotTaskID != originalID {
		t.Errorf("Expected service called with %s, got %s", originalID, mock.gotTaskID)
	}
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if !mock.gotNewDate.Equal(want) {
		t.Errorf("Expected new date %v, got %v", want, mock.gotNewDate)
	}

	var resp struct {
		OriginalTask   models.Task `json:"originalTask"`
		NewTask        models.Task `json:"newTask"`
		MigrationCount int         `json:"migrationCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.MigrationCount != 1 {
		t.Errorf("Expected migrationCount 1, got %d", resp.MigrationCount)
	}
	if resp.OriginalTask.State != models.TaskStateRescheduled {
		t.Errorf("Expected original state rescheduled, got %s", resp.OriginalTask.State)
	}
	if resp.NewTask.RescheduledFrom == nil || *resp.NewTask.RescheduledFrom != originalID {
		t.Error("Expected newTask.rescheduled_from to point at the original")
	}
}

func TestRescheduleTaskMissingNewDate(t *testing.T) {
	router := setupTaskRouter(&MockTaskService{}, &MockRescheduleService{})

	w := performJSON(router, "POST", "/tasks/"+uuid.Must(uuid.NewV4()).String()+"/reschedule",
		map[string]string{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "New date is required" {
		t.Errorf("Unexpected error message: %q", resp["error"])
	}
}

func TestRescheduleTaskLimitReached(t *testing.T) {
	mock := &MockRescheduleService{
		returnError: &services.MigrationLimitError{MigrationCount: 3},
	}
	router := setupTaskRouter(&MockTaskService{}, mock)

	w := performJSON(router, "POST", "/tasks/"+uuid.Must(uuid.NewV4()).String()+"/reschedule",
		map[string]string{"newDate": "2024-01-05"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp struct {
		Error          string `json:"error"`
		Message        string `json:"message"`
		MigrationCount int    `json:"migrationCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.Error != "Migration limit reached" {
		t.Errorf("Unexpected error: %q", resp.Error)
	}
	// The payload carries the would-be count, not the stored one.
	if resp.MigrationCount != 3 {
		t.Errorf("Expected migrationCount 3, got %d", resp.MigrationCount)
	}
	if resp.Message == "" {
		t.Error("Expected a confirmation message in the payload")
	}
}

func TestRescheduleTaskNotFound(t *testing.T) {
	mock := &MockRescheduleService{returnError: services.ErrTaskNotFound}
	router := setupTaskRouter(&MockTaskService{}, mock)

	w := performJSON(router, "POST", "/tasks/"+uuid.Must(uuid.NewV4()).String()+"/reschedule",
		map[string]string{"newDate": "2024-01-05"})

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestRescheduleTaskAlreadyRescheduled(t *testing.T) {
	mock := &MockRescheduleService{returnError: services.ErrTaskAlreadyRescheduled}
	router := setupTaskRouter(&MockTaskService{}, mock)

	w := performJSON(router, "POST", "/tasks/"+uuid.Must(uuid.NewV4()).String()+"/reschedule",
		map[string]string{"newDate": "2024-01-05"})

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestRescheduleTaskInternalError(t *testing.T) {
	mock := &MockRescheduleService{returnError: gorm.ErrInvalidTransaction}
	router := setupTaskRouter(&MockTaskService{}, mock)

	w := performJSON(router, "POST", "/tasks/"+uuid.Must(uuid.NewV4()).String()+"/reschedule",
		map[string]string{"newDate": "2024-01-05"})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestDeleteTask(t *testing.T) {
	mock := &MockTaskService{}
	task, _ := mock.CreateTask(nil, models.Task{Title: "Delete me"})
	router := setupTaskRouter(mock, &MockRescheduleService{})

	w := performJSON(router, "DELETE", "/tasks/"+task.ID.String(), nil)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}
