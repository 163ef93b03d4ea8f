package models

import "time"

const (
	SyncRunStatusQueued  = "queued"
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
	SyncRunStatusPartial = "partial"
)

const (
	SyncTriggeredManual   = "manual"
	SyncTriggeredRetry    = "retry"
	SyncTriggeredSchedule = "schedule"
	SyncTriggeredSystem   = "system"
)

// SalesSyncRun records one execution of the sales extract pipeline, from
// the moment it is queued until it finishes. StatsJSON holds the summary
// (rows written, rows skipped, sale dates, stores) as produced by the worker.
type SalesSyncRun struct {
	ID          uint       `gorm:"primary_key" json:"id"`
	ObjectName  string     `gorm:"size:255;not null" json:"object_name"`
	Status      string     `gorm:"size:20;not null;index" json:"status"`
	TriggeredBy string     `gorm:"size:20" json:"triggered_by"`
	StatsJSON   []byte     `gorm:"type:json" json:"stats"`
	RowsWritten int        `json:"rows_written"`
	RowsSkipped int        `json:"rows_skipped"`
	ErrorCount  int        `json:"error_count"`
	ParentRunId *uint      `gorm:"index" json:"parent_run_id"`
	StartedAt   *time.Time `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at"`
	DurationMs  int64      `json:"duration_ms"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type SalesSyncError struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	SyncRunId   uint      `gorm:"index;not null" json:"sync_run_id"`
	RowNumber   int       `json:"row_number"`
	ErrorCode   string    `gorm:"size:64" json:"error_code"`
	Message     string    `gorm:"type:text" json:"message"`
	PayloadJSON []byte    `gorm:"type:json" json:"payload"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
