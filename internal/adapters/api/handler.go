package api

import (
	"errors"
	"net/http"
	"strconv"

	"dnsmonitor/internal/application/monitor"
	appsnapshot "dnsmonitor/internal/application/snapshot"
	"dnsmonitor/internal/domain/dnsrecord"
	"dnsmonitor/internal/domain/snapshot"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"     // swagger embed files
	ginSwagger "github.com/swaggo/gin-swagger" // gin-swagger middleware

	_ "dnsmonitor/docs" // swagger docs
)

// Handler handles HTTP requests for the monitor API
type Handler struct {
	monitor *monitor.Service
	store   *appsnapshot.Store
	hub     *Hub
}

// NewHandler creates a new API handler. The returned handler's hub should be
// registered as a notifier of the monitor to feed websocket clients.
func NewHandler(monitorService *monitor.Service, store *appsnapshot.Store) *Handler {
	return &Handler{
		monitor: monitorService,
		store:   store,
		hub:     NewHub(monitorService.Domain()),
	}
}

// Hub returns the websocket hub of the handler
func (h *Handler) Hub() *Hub {
	return h.hub
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/checks", h.RunCheck)

		snapshots := api.Group("/snapshots")
		{
			snapshots.GET("", h.ListSnapshots)
			snapshots.GET("/latest", h.GetLatestSnapshot)
			snapshots.GET("/:snapshotId", h.GetSnapshot)
			snapshots.GET("/:snapshotId/records", h.GetSnapshotRecords)
			snapshots.GET("/:snapshotId/compare", h.CompareSnapshot)
			snapshots.GET("/:snapshotId/zone", h.GetSnapshotZone)
		}

		api.GET("/ws", h.HandleWebSocket)
		api.GET("/health", h.Health)
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Health godoc
//
//	@Summary		Health check
//	@Description	Reports the monitored domain and the number of stored snapshots
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		503	{object}	map[string]string
//	@Router			/health [get]
func (h *Handler) Health(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"domain":    h.monitor.Domain(),
		"snapshots": count,
		"retention": h.store.Retention(),
	})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, snapshot.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, monitor.ErrResolutionEmpty), errors.Is(err, snapshot.ErrEmptyRecordSet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dnsrecord.ErrDuplicateRecord):
		return http.StatusConflict
	case errors.Is(err, monitor.ErrResolutionFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// snapshotID parses the snapshotId path parameter, answering 400 when it is invalid
func snapshotID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("snapshotId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot id must be a positive integer"})
		return 0, false
	}
	return id, true
}
