package services

import (
	"errors"

	"bullet-journal/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ProjectUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	Archived    *bool
}

type ProjectService interface {
	CreateProject(db *gorm.DB, project models.Project) (models.Project, error)
	ListProjects(db *gorm.DB, userID uuid.UUID, archived *bool) ([]models.ProjectSummary, error)
	UpdateProject(db *gorm.DB, id, userID uuid.UUID, update ProjectUpdate) (models.Project, error)
	DeleteProject(db *gorm.DB, id, userID uuid.UUID) error
}

type ProjectServiceImpl struct{}

func NewProjectService() *ProjectServiceImpl {
	return &ProjectServiceImpl{}
}

func (s *ProjectServiceImpl) CreateProject(db *gorm.DB, project models.Project) (models.Project, error) {
	if project.ID == uuid.Nil {
		project.ID = uuid.Must(uuid.NewV4())
	}
	if project.Color == "" {
		project.Color = "#6B7280"
	}
	if err := db.Create(&project).Error; err != nil {
		return models.Project{}, err
	}
	return project, nil
}

// ListProjects returns the caller's projects, unarchived by default, each
// with a count of its not-yet-done tasks.
func (s *ProjectServiceImpl) ListProjects(db *gorm.DB, userID uuid.UUID, archived *bool) ([]models.ProjectSummary, error) {
	query := db.Where("created_by = ?", userID)
	if archived != nil {
		query = query.Where("archived = ?", *archived)
	} else {
		query = query.Where("archived = ?", false)
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	summaries := make([]models.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		var count int64
		err := db.Model(&models.Task{}).
			Where("project_id = ? AND state <> ?", p.ID, models.TaskStateDone).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.ProjectSummary{Project: p, ActiveTaskCount: count})
	}
	return summaries, nil
}

func (s *ProjectServiceImpl) UpdateProject(db *gorm.DB, id, userID uuid.UUID, update ProjectUpdate) (models.Project, error) {
	var project models.Project
	err := db.First(&project, "id = ? AND created_by = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, ErrProjectNotFound
		}
		return models.Project{}, err
	}

	if update.Name != nil {
		project.Name = *update.Name
	}
	if update.Description != nil {
		project.Description = *update.Description
	}
	if update.Color != nil {
		project.Color = *update.Color
	}
	if update.Icon != nil {
		project.Icon = *update.Icon
	}
	if update.Archived != nil {
		project.Archived = *update.Archived
	}

	if err := db.Save(&project).Error; err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (s *ProjectServiceImpl) DeleteProject(db *gorm.DB, id, userID uuid.UUID) error {
	result := db.Delete(&models.Project{}, "id = ? AND created_by = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}
