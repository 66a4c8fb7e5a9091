package api

import (
	"errors"
	"net/http"

	"dnsmonitor/internal/application/monitor"

	"github.com/gin-gonic/gin"
)

// RunCheck godoc
//
//	@Summary		Run a check
//	@Description	Resolve the monitored domain now, compare it with the latest snapshot and store a new snapshot according to the snapshot behavior
//	@Tags			checks
//	@Produce		json
//	@Success		200	{object}	monitor.CheckResult
//	@Failure		409	{object}	map[string]string	"Resolver returned duplicate records"
//	@Failure		422	{object}	map[string]string	"Resolver returned no records"
//	@Failure		500	{object}	map[string]any		"Snapshot not saved, body carries the result"
//	@Failure		502	{object}	map[string]string	"Resolution failed"
//	@Router			/checks [post]
func (h *Handler) RunCheck(c *gin.Context) {
	result, err := h.monitor.Check(c.Request.Context())
	if err != nil {
		if result != nil && errors.Is(err, monitor.ErrSnapshotNotSaved) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": result})
			return
		}
		respondError(c, err)
		return
	}

	h.hub.Broadcast(EventCheckCompleted, result)
	c.JSON(http.StatusOK, result)
}
