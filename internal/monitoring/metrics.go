package monitoring

import (
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics aggregates request counters for the journal API. It is built
// in main and passed to the router; there is no package-level state.
type Metrics struct {
	mu            sync.Mutex
	requestCount  int64
	errorCount    int64
	totalDuration time.Duration
	statusCodes   map[int]int64
	endpoints     map[string]int64
	startTime     time.Time
	lastRequest   time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		statusCodes: make(map[int]int64),
		endpoints:   make(map[string]int64),
		startTime:   time.Now(),
	}
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		endpoint := c.Request.Method + " " + c.FullPath()

		m.mu.Lock()
		m.requestCount++
		m.totalDuration += duration
		m.lastRequest = time.Now()
		if status >= 400 {
			m.errorCount++
		}
		m.statusCodes[status]++
		m.endpoints[endpoint]++
		m.mu.Unlock()
	}
}

func (m *Metrics) snapshot() gin.H {
	m.mu.Lock()
	defer m.mu.Unlock()

	var avg time.Duration
	if m.requestCount > 0 {
		avg = m.totalDuration / time.Duration(m.requestCount)
	}

	statusCodes := make(map[int]int64, len(m.statusCodes))
	for k, v := range m.statusCodes {
		statusCodes[k] = v
	}
	endpoints := make(map[string]int64, len(m.endpoints))
	for k, v := range m.endpoints {
		endpoints[k] = v
	}

	return gin.H{
		"request_count":           m.requestCount,
		"error_count":             m.errorCount,
		"avg_request_duration_ms": avg.Milliseconds(),
		"status_codes":            statusCodes,
		"endpoint_calls":          endpoints,
		"start_time":              m.startTime,
		"last_request":            m.lastRequest,
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		c.JSON(http.StatusOK, gin.H{
			"application": m.snapshot(),
			"system": gin.H{
				"uptime":          time.Since(m.startTime).String(),
				"goroutine_count": runtime.NumGoroutine(),
				"alloc_mb":        mem.Alloc / 1024 / 1024,
				"num_gc":          mem.NumGC,
				"go_version":      runtime.Version(),
			},
			"timestamp": time.Now(),
		})
	}
}
