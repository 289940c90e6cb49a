package moderation_test

import (
	"context"
	"encoding/json"
	"modflow/backend/internal/config"
	"modflow/backend/internal/models"
	"modflow/backend/internal/moderation"
	"modflow/backend/internal/storage/storagetest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueWarning_CreatesWarningNotificationAndLog(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	w, err := f.svc.IssueWarning(context.Background(), f.moderator.Actor(), moderation.WarningInput{
		UserID:   f.member.ID,
		Reason:   "abusive language",
		Severity: models.SeverityHigh,
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, w.IsActive)
	assert.Equal(t, models.SeverityHigh, w.Severity)
	assert.Equal(t, f.moderator.ID, w.ModeratorID)
	assert.Nil(t, w.ExpiresAt)
	require.NotNil(t, w.User)
	assert.Equal(t, "u1", w.User.Username)
	require.NotNil(t, w.Moderator)
	assert.Equal(t, models.RoleModerator, w.Moderator.Role)

	assert.EqualValues(t, 1, storagetest.Count(t, f.db, &models.UserWarning{}))

	var notes []models.Notification
	require.NoError(t, f.db.Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, f.member.ID, notes[0].UserID)
	assert.Equal(t, "You have received a high warning: abusive language", notes[0].Message)
	assert.Equal(t, config.WarningNotificationTitle, notes[0].Title)
	assert.Equal(t, config.NotificationTypeModeration, notes[0].Type)
	var data map[string]string
	require.NoError(t, json.Unmarshal(notes[0].Data, &data))
	assert.Equal(t, w.ID, data["warningId"])

	entries := f.logEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionWarn, entries[0].Action)
	assert.Equal(t, models.TargetUser, entries[0].TargetType)
	assert.Equal(t, f.member.ID, entries[0].Target.ID)
	assert.Equal(t, "abusive language", entries[0].Reason)

	f.events.AssertNumberOfCalls(t, "Publish", 1)
}

func TestIssueWarning_DefaultsToLowAndKeepsExpiry(t *testing.T) {
	f := newFixture(t)
	expires := storagetest.Base.Add(72 * time.Hour)

	w, err := f.svc.IssueWarning(context.Background(), f.moderator.Actor(), moderation.WarningInput{
		UserID:    f.member.ID,
		Reason:    "off topic",
		ExpiresAt: &expires,
	})

	require.NoError(t, err)
	assert.Equal(t, models.SeverityLow, w.Severity)
	require.NotNil(t, w.ExpiresAt)
	assert.True(t, expires.Equal(*w.ExpiresAt))

	var note models.Notification
	require.NoError(t, f.db.First(&note).Error)
	assert.Equal(t, "You have received a low warning: off topic", note.Message)
}

func TestIssueWarning_Rejections(t *testing.T) {
	f := newFixture(t)
	past := storagetest.Base.Add(-time.Hour)

	tests := []struct {
		name    string
		in      moderation.WarningInput
		wantErr error
	}{
		{"unknown user", moderation.WarningInput{UserID: "ghost", Reason: "spam"}, moderation.ErrNotFound},
		{"missing user", moderation.WarningInput{Reason: "spam"}, moderation.ErrInvalidArgument},
		{"blank reason", moderation.WarningInput{UserID: f.member.ID, Reason: "   "}, moderation.ErrInvalidArgument},
		{"bad severity", moderation.WarningInput{UserID: f.member.ID, Reason: "spam", Severity: "CRITICAL"}, moderation.ErrInvalidArgument},
		{"expiry in the past", moderation.WarningInput{UserID: f.member.ID, Reason: "spam", ExpiresAt: &past}, moderation.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := f.svc.IssueWarning(context.Background(), f.moderator.Actor(), tt.in)

			assert.Nil(t, w)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.EqualValues(t, 0, storagetest.Count(t, f.db, &models.UserWarning{}))
	assert.EqualValues(t, 0, storagetest.Count(t, f.db, &models.Notification{}))
	assert.Empty(t, f.logEntries(t))
}

func TestIssueWarning_LogFailureRollsBackEverything(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.failLogWrites(t)

	// Act
	w, err := f.svc.IssueWarning(context.Background(), f.moderator.Actor(), moderation.WarningInput{
		UserID: f.member.ID,
		Reason: "abusive language",
	})

	// Assert
	assert.Nil(t, w)
	assert.ErrorIs(t, err, moderation.ErrPersistence)
	assert.NotContains(t, err.Error(), "disk full")
	assert.EqualValues(t, 0, storagetest.Count(t, f.db, &models.UserWarning{}))
	assert.EqualValues(t, 0, storagetest.Count(t, f.db, &models.Notification{}))
	assert.Empty(t, f.logEntries(t))
	f.events.AssertNumberOfCalls(t, "Publish", 0)
}

func TestListWarnings_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := storagetest.CreateUser(t, f.db, "u2", models.RoleMember)
	for _, id := range []string{f.member.ID, f.member.ID, other.ID} {
		_, err := f.svc.IssueWarning(ctx, f.moderator.Actor(), moderation.WarningInput{UserID: id, Reason: "spam"})
		require.NoError(t, err)
	}
	require.NoError(t, f.db.Model(&models.UserWarning{}).Where("user_id = ?", other.ID).Update("is_active", false).Error)

	mine, err := f.svc.ListWarnings(ctx, f.moderator.Actor(), moderation.WarningQuery{UserID: f.member.ID, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.Pagination.Total)
	for _, w := range mine.Warnings {
		assert.Equal(t, f.member.ID, w.UserID)
		require.NotNil(t, w.User)
		assert.Equal(t, "u1", w.User.Username)
	}

	inactive := false
	off, err := f.svc.ListWarnings(ctx, f.moderator.Actor(), moderation.WarningQuery{IsActive: &inactive})
	require.NoError(t, err)
	require.Len(t, off.Warnings, 1)
	assert.Equal(t, other.ID, off.Warnings[0].UserID)
	assert.Equal(t, 20, off.Pagination.Limit)
}
