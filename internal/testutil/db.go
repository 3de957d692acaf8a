// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"

	"dashboard/internal/config"
	"dashboard/internal/database"
	"dashboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t, seeded
// with the default bootstrap users.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000"
	db, err := database.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// One connection keeps the shared in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	users := make([]model.User, 0, len(config.DefaultSeed()))
	for _, u := range config.DefaultSeed() {
		users = append(users, model.User{Username: u.Username, DisplayName: u.DisplayName, Password: u.Password})
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatalf("seed users: %v", err)
	}

	return db
}
