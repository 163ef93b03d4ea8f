// sales-sync runs the extract pipeline once and prints the summary.
// Intended for Cloud Scheduler jobs and manual backfills.
//
// Usage (from backend directory):
//   DB_USER=... GCS_BUCKET=... go run ./cmd/sales-sync -object daily/sales.xlsx
//
// Without -object the SALES_EXTRACT_OBJECT env var is used.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/hq_backend/config"
	"bitbucket.org/mmdatafocus/hq_backend/models"
	"bitbucket.org/mmdatafocus/hq_backend/salessync"
)

func main() {
	object := flag.String("object", "", "Extract object name in the GCS bucket. Defaults to SALES_EXTRACT_OBJECT.")
	skipRedis := flag.Bool("skip-redis", false, "Run without redis (no lock, no cache invalidation).")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if !*skipRedis {
		config.ConnectRedisWithRetry()
	}

	models.MigrateTable()

	run, err := salessync.CreateSyncRun(ctx, *object, models.SyncTriggeredManual, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create sync run: %v\n", err)
		os.Exit(1)
	}

	summary, err := salessync.RunSyncNow(ctx, run)
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
	if err != nil {
		fmt.Fprintf(os.Stderr, "sync run %d failed: %v\n", run.ID, err)
		os.Exit(1)
	}
	fmt.Printf("sync run %d finished\n", run.ID)
}
