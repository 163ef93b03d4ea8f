package salessync

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/hq_backend/config"
	"bitbucket.org/mmdatafocus/hq_backend/models"
)

// TriggerSyncHandler starts a sales sync. With SALES_SYNC_ASYNC enabled the
// run is queued to pub/sub and the handler returns the run id immediately,
// otherwise the run executes inline and the summary is returned.
func TriggerSyncHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TriggerSyncRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}
		}

		ctx := c.Request.Context()
		run, err := CreateSyncRun(ctx, req.ObjectName, models.SyncTriggeredManual, nil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if EnvBoolDefault("SALES_SYNC_ASYNC", false) {
			if err := PublishSyncRun(ctx, run.ID, run.ObjectName); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"id": run.ID, "status": run.Status})
			return
		}

		summary, err := RunSyncNow(ctx, run)
		if err == ErrSyncInProgress {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"id": run.ID, "summary": summary})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": run.ID, "summary": summary})
	}
}

func SyncHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB().WithContext(c.Request.Context())

		limit := 20
		if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
			limit = v
		}

		var runs []models.SalesSyncRun
		if err := db.Model(&models.SalesSyncRun{}).Order("id desc").Limit(limit).Find(&runs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := SyncHistoryResponse{Items: make([]SyncRunResponse, 0, len(runs))}
		for _, run := range runs {
			resp.Items = append(resp.Items, mapRunToResponse(run))
		}
		c.JSON(http.StatusOK, resp)
	}
}

func SyncRunDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB().WithContext(c.Request.Context())

		runId, err := strconv.Atoi(c.Param("id"))
		if err != nil || runId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		var run models.SalesSyncRun
		if err := db.Where("id = ?", runId).Take(&run).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}

		var errorRows []models.SalesSyncError
		if err := db.Where("sync_run_id = ?", run.ID).Order("id asc").Find(&errorRows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := SyncRunDetailResponse{
			SyncRunResponse: mapRunToResponse(run),
			Stats:           DecodeSummary(run.StatsJSON),
			Errors:          make([]SyncErrorResponse, 0, len(errorRows)),
		}
		for _, e := range errorRows {
			resp.Errors = append(resp.Errors, SyncErrorResponse{
				ID:        e.ID,
				RowNumber: e.RowNumber,
				ErrorCode: e.ErrorCode,
				Message:   e.Message,
			})
		}
		c.JSON(http.StatusOK, resp)
	}
}

// RetrySyncRunHandler queues a fresh run for the same extract object,
// linked to the failed run through parent_run_id.
func RetrySyncRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		db := config.GetDB().WithContext(ctx)

		runId, err := strconv.Atoi(c.Param("id"))
		if err != nil || runId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		var run models.SalesSyncRun
		if err := db.Where("id = ?", runId).Take(&run).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		if run.Status != models.SyncRunStatusFailed && run.Status != models.SyncRunStatusPartial {
			c.JSON(http.StatusConflict, gin.H{"error": "only failed or partial runs can be retried"})
			return
		}

		parentId := run.ID
		newRun, err := CreateSyncRun(ctx, run.ObjectName, models.SyncTriggeredRetry, &parentId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if EnvBoolDefault("SALES_SYNC_ASYNC", false) {
			if err := PublishSyncRun(ctx, newRun.ID, newRun.ObjectName); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"id": newRun.ID, "status": newRun.Status})
			return
		}

		summary, err := RunSyncNow(ctx, newRun)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"id": newRun.ID, "summary": summary})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": newRun.ID, "summary": summary})
	}
}

func mapRunToResponse(run models.SalesSyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:          run.ID,
		ObjectName:  run.ObjectName,
		Status:      run.Status,
		StartedAt:   formatTime(run.StartedAt),
		FinishedAt:  formatTime(run.FinishedAt),
		DurationMs:  run.DurationMs,
		RowsWritten: run.RowsWritten,
		RowsSkipped: run.RowsSkipped,
		ErrorCount:  run.ErrorCount,
		TriggeredBy: run.TriggeredBy,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
