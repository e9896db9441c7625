package main

import (
	"log"

	"ai-jobassist-be/internal/config"
	"ai-jobassist-be/internal/model"
	"ai-jobassist-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.User{},
		&model.RoleGrant{},
		&model.UserSubscription{},
		&model.SubscriptionLog{},
		&model.UsageRecord{},
		&model.WebhookEvent{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// Indexes AutoMigrate cannot express. Failures here break the
	// one-active-grant and one-live-subscription guarantees, so they are fatal.
	log.Println("Step 3: Creating partial indexes...")
	postMigrationSQL := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_role_grants_one_active
		 ON role_grants (user_id) WHERE is_active;`,
		`CREATE INDEX IF NOT EXISTS idx_user_subscriptions_live
		 ON user_subscriptions (user_id, current_period_end DESC)
		 WHERE status IN ('active', 'trialing', 'past_due');`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: post-migration SQL failed: %v", err)
		}
	}

	log.Println("Success: Database migration completed.")
}
