package status

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/datafeed/component"
	"github.com/kbukum/datafeed/sse"
	"github.com/kbukum/datafeed/version"
)

// HealthReporter reports the health of every running component.
// *component.Registry implements it.
type HealthReporter interface {
	HealthAll(ctx context.Context) []component.Health
}

// StatsFunc returns a JSON-encodable snapshot of pipeline statistics.
type StatsFunc func() any

func (s *Server) healthz(c *gin.Context) {
	var healths []component.Health
	if s.health != nil {
		healths = s.health.HealthAll(c.Request.Context())
	}
	overall := component.Overall(healths)

	code := http.StatusOK
	if overall == component.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     overall,
		"service":    s.name,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"components": healths,
	})
}

func (s *Server) livez(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   s.name,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) stats(c *gin.Context) {
	if s.statsFn == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no statistics available"})
		return
	}
	c.JSON(http.StatusOK, s.statsFn())
}

func (s *Server) buildInfo(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

// streamEvents serves the event hub. ?filter= selects event types by glob.
func (s *Server) streamEvents(c *gin.Context) {
	sse.Serve(s.events, c.Writer, c.Request, uuid.NewString(), c.Query("filter"))
}
