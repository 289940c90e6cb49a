package models_test

import (
	"modflow/backend/internal/models"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestUserBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestUserBeforeCreate_GeneratesUUID(t *testing.T) {
	// Arrange
	user := &models.User{Username: "kaori", Role: models.RoleMember, IsActive: true}
	assert.Empty(t, user.ID, "User ID should be empty before BeforeCreate")

	// Act
	err := user.BeforeCreate(nil) // nil *gorm.DB is acceptable for this hook

	// Assert
	assert.NoError(t, err)
	parsed, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr, "User ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
}

// TestUserBeforeCreate_PreservesExistingID verifies that the hook doesn't overwrite an existing ID.
func TestUserBeforeCreate_PreservesExistingID(t *testing.T) {
	existingID := uuid.New().String()
	user := &models.User{ID: existingID, Username: "shinji"}

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existingID, user.ID, "BeforeCreate should preserve existing ID")
}

// TestReportBeforeCreate_OpensAsPending verifies new reports start in the PENDING state.
func TestReportBeforeCreate_OpensAsPending(t *testing.T) {
	report := &models.Report{ReporterID: "u1", TargetType: models.TargetPost, TargetID: "p1", Reason: "spam"}

	err := report.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, models.ReportPending, report.Status)
}

// TestBeforeCreate_UniqueIDs verifies unique UUIDs are generated across record types.
func TestBeforeCreate_UniqueIDs(t *testing.T) {
	warning := &models.UserWarning{}
	notification := &models.Notification{}
	entry := &models.ModerationLogEntry{}

	assert.NoError(t, warning.BeforeCreate(nil))
	assert.NoError(t, notification.BeforeCreate(nil))
	assert.NoError(t, entry.BeforeCreate(nil))

	ids := map[string]bool{warning.ID: true, notification.ID: true, entry.ID: true}
	assert.Len(t, ids, 3, "All generated IDs should be unique")
}

func TestRoleAndStatusHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"moderator is a role", models.RoleModerator.Valid(), true},
		{"MOD is not a role", models.Role("MOD").Valid(), false},
		{"pending is not terminal", models.ReportPending.Terminal(), false},
		{"resolved is terminal", models.ReportResolved.Terminal(), true},
		{"dismissed is terminal", models.ReportDismissed.Terminal(), true},
		{"bulk is a log target", models.TargetBulk.Valid(), true},
		{"bulk cannot be reported", models.TargetBulk.Reportable(), false},
		{"comment can be reported", models.TargetComment.Reportable(), true},
		{"high is a severity", models.SeverityHigh.Valid(), true},
		{"lowercase severity is rejected", models.Severity("high").Valid(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

// TestModelStructTags verifies that the audit and relation tags stay in place.
func TestModelStructTags(t *testing.T) {
	entryType := reflect.TypeOf(models.ModerationLogEntry{})

	target, found := entryType.FieldByName("Target")
	assert.True(t, found, "Target field should exist")
	assert.Contains(t, target.Tag.Get("gorm"), "column:target_id")
	assert.Equal(t, "target_id", target.Tag.Get("json"))

	moderator, found := entryType.FieldByName("Moderator")
	assert.True(t, found)
	assert.Contains(t, moderator.Tag.Get("gorm"), "-:migration", "joined identities must not be migrated")

	assert.Equal(t, "moderation_logs", models.ModerationLogEntry{}.TableName())
	assert.Equal(t, "users", models.UserRef{}.TableName())
}
