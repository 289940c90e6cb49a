// Package storagetest provides in-memory databases and seed helpers for tests.
package storagetest

import (
	"modflow/backend/internal/models"
	"modflow/backend/internal/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a migrated in-memory SQLite database that lives for the test.
// The pool is pinned to one connection so every query sees the same database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, storage.Migrate(db))
	return db
}

// Base is the reference time seeded rows are stamped relative to.
var Base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func CreateUser(t testing.TB, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Username: username, Role: role, IsActive: true, Avatar: username + ".png"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateReport seeds a PENDING report created minutesAgo before Base.
func CreateReport(t testing.TB, db *gorm.DB, reporterID string, targetType models.TargetType, targetID, reason string, minutesAgo int) *models.Report {
	t.Helper()
	at := Base.Add(-time.Duration(minutesAgo) * time.Minute)
	report := &models.Report{
		ReporterID: reporterID,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	require.NoError(t, db.Create(report).Error)
	return report
}

func Count(t testing.TB, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
