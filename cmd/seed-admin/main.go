// seed-admin creates or updates the HQ console admin user.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
//
// Override credentials with SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/hq_backend/config"
	"bitbucket.org/mmdatafocus/hq_backend/models"
	"bitbucket.org/mmdatafocus/hq_backend/utils"
)

const (
	defaultAdminUsername = "hqAdmin"
	defaultAdminPassword = "HQ@dmin123"
	adminName            = "HQ Admin"
)

func main() {
	skipRedis := flag.Bool("skip-redis", false, "Run without redis. A cached user row may serve the old password until it expires.")
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

	adminUsername := strings.TrimSpace(os.Getenv("SEED_ADMIN_USERNAME"))
	if adminUsername == "" {
		adminUsername = defaultAdminUsername
	}
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = defaultAdminPassword
	}

	existing, err := models.GetUserByUsername(ctx, adminUsername)
	if err != nil {
		created, err := models.CreateUser(ctx, models.NewUser{
			Username: adminUsername,
			Name:     adminName,
			Password: adminPassword,
			IsActive: utils.NewTrue(),
			Role:     models.RoleAdmin,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created admin user %q\n", created.Username)
		return
	}

	// Reset the existing admin's credentials.
	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	updates := map[string]interface{}{
		"password":  string(hashed),
		"name":      adminName,
		"is_active": true,
		"role":      models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	// Login serves from the cached user row; drop it so the reset takes
	// effect immediately.
	if err := existing.RemoveInstanceRedis(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not drop cached user row: %v\n", err)
	}
	fmt.Printf("updated admin user %q\n", adminUsername)
}
