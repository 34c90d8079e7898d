package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/linewatch/module/core/domain"
	"github.com/nandanugg/linewatch/module/core/service"
)

type watcherService interface {
	Snapshot() service.Status
	CurrentPosition() (domain.Position, bool)
	Reference() (domain.Position, bool)
	Radius() float64
	Acknowledge(ctx context.Context, action domain.AckAction)
	Reset(ctx context.Context)
	SetSuppressed(ctx context.Context, suppressed bool)
	Journal(ctx context.Context, query *domain.JournalQuery) ([]domain.JournalEntry, error)
}

type visibilitySetter interface {
	Set(v domain.Visibility)
}

type positionResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

type visibilityRequest struct {
	Visibility string `json:"visibility" binding:"required"`
}

type suppressionRequest struct {
	Suppressed *bool `json:"suppressed" binding:"required"`
}

type acknowledgeRequest struct {
	Action string `json:"action" binding:"required"`
}

type MonitorHandler struct {
	watcher    watcherService
	visibility visibilitySetter
	mapSpan    float64
}

func NewMonitorHandler(watcher watcherService, visibility visibilitySetter, mapSpan float64) *MonitorHandler {
	return &MonitorHandler{
		watcher:    watcher,
		visibility: visibility,
		mapSpan:    mapSpan,
	}
}

func (h *MonitorHandler) Register(r *gin.RouterGroup) {
	r.GET("/status", h.GetStatus)
	r.GET("/position", h.GetPosition)
	r.GET("/geofence", h.GetGeofence)
	r.GET("/journal", h.GetJournal)
	r.PUT("/visibility", h.PutVisibility)
	r.PUT("/suppression", h.PutSuppression)
	r.POST("/acknowledge", h.PostAcknowledge)
	r.POST("/reset", h.PostReset)
}

func (h *MonitorHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.watcher.Snapshot())
}

func (h *MonitorHandler) GetPosition(c *gin.Context) {
	pos, ok := h.watcher.CurrentPosition()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no position received yet"})
		return
	}
	c.JSON(http.StatusOK, toPositionResponse(pos))
}

func (h *MonitorHandler) GetGeofence(c *gin.Context) {
	ref, ok := h.watcher.Reference()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "geofence not anchored"})
		return
	}

	c.JSON(http.StatusOK, geofenceCollection(ref, h.watcher.Radius(), h.mapSpan))
}

func (h *MonitorHandler) GetJournal(c *gin.Context) {
	query := &domain.JournalQuery{}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		query.Limit = limit
	}

	entries, err := h.watcher.Journal(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch journal"})
		return
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *MonitorHandler) PutVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	v, ok := domain.ParseVisibility(req.Visibility)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "visibility must be foreground or background"})
		return
	}
	h.visibility.Set(v)
	c.JSON(http.StatusOK, gin.H{"visibility": v})
}

func (h *MonitorHandler) PutSuppression(c *gin.Context) {
	var req suppressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.watcher.SetSuppressed(c.Request.Context(), *req.Suppressed)
	c.JSON(http.StatusOK, gin.H{"suppressed": *req.Suppressed})
}

func (h *MonitorHandler) PostAcknowledge(c *gin.Context) {
	var req acknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	action, ok := domain.ParseAckAction(req.Action)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be go_back or reset_location"})
		return
	}
	h.watcher.Acknowledge(c.Request.Context(), action)
	c.JSON(http.StatusOK, h.watcher.Snapshot())
}

func (h *MonitorHandler) PostReset(c *gin.Context) {
	h.watcher.Reset(c.Request.Context())
	c.JSON(http.StatusOK, h.watcher.Snapshot())
}

func toPositionResponse(pos domain.Position) positionResponse {
	return positionResponse{
		Latitude:  pos.Lat,
		Longitude: pos.Lon,
		Accuracy:  pos.Accuracy,
		Timestamp: pos.Timestamp.Unix(),
	}
}
