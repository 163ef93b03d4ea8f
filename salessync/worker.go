package salessync

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/hq_backend/config"
	"bitbucket.org/mmdatafocus/hq_backend/models"
	"bitbucket.org/mmdatafocus/hq_backend/utils"
	"github.com/bsm/redislock"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const syncLockKey = "lock:sales-sync"

var ErrSyncInProgress = errors.New("another sales sync is already running")

// CreateSyncRun inserts a queued run row. The run is executed separately,
// either inline (RunSyncNow) or from the pub/sub push endpoint.
func CreateSyncRun(ctx context.Context, objectName string, triggeredBy string, parentRunId *uint) (*models.SalesSyncRun, error) {
	db := config.GetDB().WithContext(ctx)

	if strings.TrimSpace(objectName) == "" {
		objectName = defaultExtractObject()
	}
	if objectName == "" {
		return nil, errors.New("extract object name is required (set SALES_EXTRACT_OBJECT)")
	}

	run := models.SalesSyncRun{
		ObjectName:  objectName,
		Status:      models.SyncRunStatusQueued,
		TriggeredBy: triggeredBy,
		ParentRunId: parentRunId,
	}
	if err := db.Create(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// RunSyncNow executes a queued run inline and returns its summary.
func RunSyncNow(ctx context.Context, run *models.SalesSyncRun) (SyncSummary, error) {
	return executeRun(ctx, run)
}

// processSyncRun is the pub/sub entry point. It is idempotent: redelivered
// messages for a finished run are dropped.
func processSyncRun(ctx context.Context, payload SyncPubSubPayload) error {
	if payload.RunId == 0 {
		return errors.New("invalid payload")
	}

	db := config.GetDB().WithContext(ctx)

	var run models.SalesSyncRun
	if err := db.Where("id = ?", payload.RunId).Take(&run).Error; err != nil {
		return err
	}

	if run.Status == models.SyncRunStatusSuccess || run.Status == models.SyncRunStatusFailed || run.Status == models.SyncRunStatusPartial {
		return nil
	}

	_, err := executeRun(ctx, &run)
	return err
}

func executeRun(ctx context.Context, run *models.SalesSyncRun) (SyncSummary, error) {
	db := config.GetDB().WithContext(ctx)
	logger := config.GetLogger()

	// Serialize concurrent runs when redis is up. Without redis the sync
	// still works, upserts make overlapping runs safe, just wasteful.
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, syncLockKey, 10*time.Minute, nil)
		if err == redislock.ErrNotObtained {
			summary := SyncSummary{Error: ErrSyncInProgress.Error()}
			finalizeRun(ctx, db, run, summary, models.SyncRunStatusFailed, time.Now())
			return summary, ErrSyncInProgress
		}
		if err == nil {
			defer lock.Release(context.WithoutCancel(ctx))
		}
	}

	now := time.Now()
	startedAt := run.StartedAt
	if startedAt == nil {
		startedAt = &now
	}
	if err := db.Model(run).Updates(map[string]interface{}{
		"status":     models.SyncRunStatusRunning,
		"started_at": startedAt,
	}).Error; err != nil {
		return SyncSummary{}, err
	}

	data, err := utils.DownloadFromGCS(ctx, run.ObjectName)
	if err != nil {
		config.LogError(logger, "salessync", "executeRun", "download extract", map[string]interface{}{"object": run.ObjectName}, err)
		summary := SyncSummary{Error: err.Error()}
		finalizeRun(ctx, db, run, summary, models.SyncRunStatusFailed, *startedAt)
		return summary, err
	}

	lines, skipped, err := ParseWorkbook(data)
	if err != nil {
		config.LogError(logger, "salessync", "executeRun", "parse extract", map[string]interface{}{"object": run.ObjectName}, err)
		summary := SyncSummary{Error: err.Error()}
		finalizeRun(ctx, db, run, summary, models.SyncRunStatusFailed, *startedAt)
		return summary, err
	}

	storeRows, salesmanRows := AggregateDaily(lines)
	saleDates, stores := SummaryDatesAndStores(storeRows)

	errorCount := 0
	if err := upsertStoreRows(db, storeRows); err != nil {
		errorCount++
		createSyncError(ctx, db, run.ID, 0, "store_rollup_write", err.Error())
	}
	if err := upsertSalesmanRows(db, salesmanRows); err != nil {
		errorCount++
		createSyncError(ctx, db, run.ID, 0, "salesman_rollup_write", err.Error())
	}
	if err := touchSalesMeta(db, saleDates, MaxBillTimes(lines), time.Now()); err != nil {
		errorCount++
		createSyncError(ctx, db, run.ID, 0, "meta_write", err.Error())
	}

	summary := SyncSummary{
		OK:          errorCount == 0,
		RowsWritten: len(storeRows) + len(salesmanRows),
		RowsSkipped: skipped,
		SaleDates:   saleDates,
		Stores:      stores,
	}

	status := models.SyncRunStatusSuccess
	if errorCount > 0 && summary.RowsWritten == 0 {
		status = models.SyncRunStatusFailed
	} else if errorCount > 0 {
		status = models.SyncRunStatusPartial
	}
	summary.OK = status == models.SyncRunStatusSuccess

	finalizeRun(ctx, db, run, summary, status, *startedAt)

	// Performance reads cache aggressively, drop anything the new rollups
	// just made stale.
	invalidateReportCaches(stores)

	logger.WithFields(map[string]interface{}{
		"run_id":       run.ID,
		"object":       run.ObjectName,
		"status":       status,
		"rows_written": summary.RowsWritten,
		"rows_skipped": summary.RowsSkipped,
		"sale_dates":   saleDates,
	}).Info("sales sync finished")

	if status == models.SyncRunStatusFailed {
		return summary, errors.New("sales sync failed")
	}
	return summary, nil
}

func finalizeRun(ctx context.Context, db *gorm.DB, run *models.SalesSyncRun, summary SyncSummary, status string, startedAt time.Time) {
	finishedAt := time.Now()

	var errorCount int64
	_ = db.Model(&models.SalesSyncError{}).Where("sync_run_id = ?", run.ID).Count(&errorCount)

	updates := map[string]interface{}{
		"status":       status,
		"finished_at":  finishedAt,
		"duration_ms":  finishedAt.Sub(startedAt).Milliseconds(),
		"rows_written": summary.RowsWritten,
		"rows_skipped": summary.RowsSkipped,
		"error_count":  int(errorCount),
		"stats_json":   EncodeSummary(summary),
	}
	if err := db.Model(run).Updates(updates).Error; err != nil {
		config.LogError(config.GetLogger(), "salessync", "finalizeRun", "update run", map[string]interface{}{"run_id": run.ID}, err)
	}
}

func upsertStoreRows(db *gorm.DB, rows []models.DailyStoreSales) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sale_date"}, {Name: "store_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"net_sales", "qty", "bill_count", "updated_at"}),
	}).Create(&rows).Error
}

func upsertSalesmanRows(db *gorm.DB, rows []models.DailySalesmanSales) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sale_date"}, {Name: "store_code"}, {Name: "salesman_no"}},
		DoUpdates: clause.AssignmentColumns([]string{"salesman_name", "net_sales", "qty", "bill_count", "updated_at"}),
	}).Create(&rows).Error
}

// touchSalesMeta records how far into each sale date the extract reaches,
// the latest bill time seen for the date. Extracts without a bill time
// column fall back to the sync moment.
func touchSalesMeta(db *gorm.DB, saleDates []string, billTimes map[string]time.Time, fallback time.Time) error {
	if len(saleDates) == 0 {
		return nil
	}
	metas := make([]models.DailySalesMeta, 0, len(saleDates))
	for _, d := range saleDates {
		saleDate, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		salesTill := fallback
		if bt, ok := billTimes[d]; ok {
			salesTill = bt
		}
		metas = append(metas, models.DailySalesMeta{
			SaleDate:  saleDate,
			SalesTill: salesTill,
		})
	}
	if len(metas) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sale_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"sales_till", "updated_at"}),
	}).Create(&metas).Error
}

func createSyncError(ctx context.Context, db *gorm.DB, runID uint, rowNumber int, code string, message string) {
	syncErr := models.SalesSyncError{
		SyncRunId: runID,
		RowNumber: rowNumber,
		ErrorCode: code,
		Message:   message,
	}
	if err := db.Create(&syncErr).Error; err != nil {
		config.LogError(config.GetLogger(), "salessync", "createSyncError", "insert error row", map[string]interface{}{"run_id": runID}, err)
	}
}

func invalidateReportCaches(stores []string) {
	// Store-scoped keys mirror the report cache key layout. Anything not
	// listed here ages out on its own TTL.
	keys := []string{"Report:TodayPerformance", "Report:Leaderboard", "Report:SalesmanPerformance"}
	for _, s := range stores {
		keys = append(keys,
			"Report:TodayPerformance:store:"+s,
			"Report:SalesmanPerformance:store:"+s,
		)
	}
	if err := config.RemoveRedisKey(keys...); err != nil {
		config.LogError(config.GetLogger(), "salessync", "invalidateReportCaches", "remove keys", nil, err)
	}
}

func defaultExtractObject() string {
	return strings.TrimSpace(os.Getenv("SALES_EXTRACT_OBJECT"))
}
