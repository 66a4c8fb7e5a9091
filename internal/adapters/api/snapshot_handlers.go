package api

import (
	"net/http"
	"strconv"

	"dnsmonitor/internal/application/monitor"
	appsnapshot "dnsmonitor/internal/application/snapshot"
	"dnsmonitor/internal/domain/snapshot"
	"dnsmonitor/pkg/zonefile"

	"github.com/gin-gonic/gin"
)

// SnapshotPage is one page of the snapshot history
type SnapshotPage struct {
	Snapshots []*snapshot.Snapshot `json:"snapshots"`
	Page      int                  `json:"page"`
	PerPage   int                  `json:"per_page"`
	Total     int                  `json:"total"`
}

// SnapshotRecords is a snapshot with its decoded records
type SnapshotRecords struct {
	Snapshot *snapshot.Snapshot    `json:"snapshot"`
	Records  []map[string]any      `json:"records"`
	Skipped  []snapshot.SkippedRow `json:"skipped,omitempty"`
}

// SnapshotComparison is a snapshot next to its predecessor
type SnapshotComparison struct {
	Current         *snapshot.Snapshot     `json:"current"`
	Previous        *snapshot.Snapshot     `json:"previous"`
	CurrentRecords  []map[string]any       `json:"current_records"`
	PreviousRecords []map[string]any       `json:"previous_records"`
	Summary         snapshot.ChangeSummary `json:"summary"`
	Changes         *monitor.ChangeDetail  `json:"changes"`
	Skipped         int                    `json:"skipped_rows,omitempty"`
}

// ListSnapshots godoc
//
//	@Summary		List snapshots
//	@Description	List stored snapshots, newest first
//	@Tags			snapshots
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	default(1)
//	@Param			per_page	query		int	false	"Page size"		default(20)
//	@Success		200			{object}	SnapshotPage
//	@Failure		400			{object}	map[string]string
//	@Failure		500			{object}	map[string]string
//	@Router			/snapshots [get]
func (h *Handler) ListSnapshots(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
		return
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(appsnapshot.DefaultPageSize)))
	if err != nil || perPage <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "per_page must be a positive integer"})
		return
	}
	if perPage > appsnapshot.MaxPageSize {
		perPage = appsnapshot.MaxPageSize
	}

	ctx := c.Request.Context()
	snapshots, err := h.store.List(ctx, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := h.store.Count(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	if snapshots == nil {
		snapshots = []*snapshot.Snapshot{}
	}

	c.JSON(http.StatusOK, SnapshotPage{Snapshots: snapshots, Page: page, PerPage: perPage, Total: total})
}

// GetLatestSnapshot godoc
//
//	@Summary		Get the latest snapshot
//	@Tags			snapshots
//	@Produce		json
//	@Success		200	{object}	snapshot.Snapshot
//	@Failure		404	{object}	map[string]string
//	@Router			/snapshots/latest [get]
func (h *Handler) GetLatestSnapshot(c *gin.Context) {
	snap, err := h.store.Latest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetSnapshot godoc
//
//	@Summary		Get a snapshot
//	@Tags			snapshots
//	@Produce		json
//	@Param			snapshotId	path		int	true	"Snapshot ID"
//	@Success		200			{object}	snapshot.Snapshot
//	@Failure		400			{object}	map[string]string
//	@Failure		404			{object}	map[string]string
//	@Router			/snapshots/{snapshotId} [get]
func (h *Handler) GetSnapshot(c *gin.Context) {
	id, ok := snapshotID(c)
	if !ok {
		return
	}
	snap, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetSnapshotRecords godoc
//
//	@Summary		Get the records of a snapshot
//	@Description	Rows that cannot be decoded are listed under skipped
//	@Tags			snapshots
//	@Produce		json
//	@Param			snapshotId	path		int	true	"Snapshot ID"
//	@Success		200			{object}	SnapshotRecords
//	@Failure		400			{object}	map[string]string
//	@Failure		404			{object}	map[string]string
//	@Router			/snapshots/{snapshotId}/records [get]
func (h *Handler) GetSnapshotRecords(c *gin.Context) {
	id, ok := snapshotID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	snap, err := h.store.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	set, err := h.store.RecordsOf(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SnapshotRecords{
		Snapshot: snap,
		Records:  monitor.RecordViews(set.Records),
		Skipped:  set.Skipped,
	})
}

// CompareSnapshot godoc
//
//	@Summary		Compare a snapshot with its predecessor
//	@Description	Returns both record sets side by side with the changes between them. previous is null for the oldest snapshot.
//	@Tags			snapshots
//	@Produce		json
//	@Param			snapshotId	path		int	true	"Snapshot ID"
//	@Success		200			{object}	SnapshotComparison
//	@Failure		400			{object}	map[string]string
//	@Failure		404			{object}	map[string]string
//	@Router			/snapshots/{snapshotId}/compare [get]
func (h *Handler) CompareSnapshot(c *gin.Context) {
	id, ok := snapshotID(c)
	if !ok {
		return
	}
	cmp, err := h.monitor.Compare(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SnapshotComparison{
		Current:         cmp.Current,
		Previous:        cmp.Previous,
		CurrentRecords:  monitor.RecordViews(cmp.CurrentRecords.Records),
		PreviousRecords: monitor.RecordViews(cmp.PreviousRecords.Records),
		Summary:         cmp.Changes.Summary(),
		Changes:         monitor.NewChangeDetail(cmp.Changes),
		Skipped:         len(cmp.CurrentRecords.Skipped) + len(cmp.PreviousRecords.Skipped),
	})
}

// GetSnapshotZone godoc
//
//	@Summary		Export a snapshot as a zone file
//	@Tags			snapshots
//	@Produce		plain
//	@Param			snapshotId	path		int	true	"Snapshot ID"
//	@Success		200			{string}	string
//	@Failure		400			{object}	map[string]string
//	@Failure		404			{object}	map[string]string
//	@Router			/snapshots/{snapshotId}/zone [get]
func (h *Handler) GetSnapshotZone(c *gin.Context) {
	id, ok := snapshotID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	snap, err := h.store.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	set, err := h.store.RecordsOf(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	zone := zonefile.Generate(zonefile.Header{
		Origin:     h.monitor.Domain(),
		SnapshotID: snap.ID,
		CreatedAt:  snap.CreatedAt,
	}, set.Records)
	c.Header("Content-Disposition", "attachment; filename=\""+h.monitor.Domain()+"-"+strconv.FormatInt(id, 10)+".zone\"")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(zone))
}
