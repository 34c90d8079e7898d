package config

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// brokerConn covers *amqp.Connection.
type brokerConn interface {
	IsClosed() bool
}

// sourceConn covers mqtt.Client.
type sourceConn interface {
	IsConnected() bool
}

type HealthChecker struct {
	db       pinger
	notifier brokerConn
	source   sourceConn
}

func NewHealthChecker(db pinger, notifier brokerConn, source sourceConn) *HealthChecker {
	return &HealthChecker{db: db, notifier: notifier, source: source}
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

// Handle reports each collaborator. A closed notification broker only
// degrades the service.
func (h *HealthChecker) Handle(c *gin.Context) {
	status := http.StatusOK
	overall := "healthy"
	deps := gin.H{}

	if err := h.db.PingContext(c.Request.Context()); err != nil {
		deps["journal"] = gin.H{"status": "down", "error": err.Error()}
		status = http.StatusServiceUnavailable
	} else {
		deps["journal"] = gin.H{"status": "up"}
	}

	if !h.source.IsConnected() {
		deps["position_source"] = gin.H{"status": "down", "error": "not connected"}
		status = http.StatusServiceUnavailable
	} else {
		deps["position_source"] = gin.H{"status": "up"}
	}

	if h.notifier.IsClosed() {
		deps["notifications"] = gin.H{"status": "down", "error": "connection closed"}
		if status == http.StatusOK {
			overall = "degraded"
		}
	} else {
		deps["notifications"] = gin.H{"status": "up"}
	}

	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
	})
}
