package handlers

import (
	"net/http"

	"bullet-journal/backend/internal/cache"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

func NewHealthHandler(db *gorm.DB, cacheInstance *cache.RedisCache) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheInstance}
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := gin.H{"status": "healthy", "database": "connected"}
	code := http.StatusOK

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		status["status"] = "unhealthy"
		status["database"] = "disconnected"
		code = http.StatusInternalServerError
	}

	if h.cache != nil {
		if h.cache.Health() != nil {
			// The cache is optional; a Redis outage degrades but does not
			// take the service down.
			status["cache"] = "disconnected"
		} else {
			status["cache"] = "connected"
		}
	}

	c.JSON(code, status)
}
