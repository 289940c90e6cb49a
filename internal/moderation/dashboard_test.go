package moderation_test

import (
	"context"
	"modflow/backend/internal/models"
	"modflow/backend/internal/moderation"
	"modflow/backend/internal/storage/storagetest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDashboard_Snapshot(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Model(f.member).Update("is_active", false).Error)
	require.NoError(t, f.db.Create(&models.Post{AuthorID: f.member.ID, Status: models.PostPublished}).Error)
	require.NoError(t, f.db.Create(&models.Comment{PostID: "p", AuthorID: f.member.ID}).Error)
	require.NoError(t, f.db.Create(&models.Comment{PostID: "p", AuthorID: f.member.ID, IsDeleted: true}).Error)

	resolved := storagetest.CreateReport(t, f.db, f.member.ID, models.TargetPost, "p1", "spam", 9)
	storagetest.CreateReport(t, f.db, f.member.ID, models.TargetPost, "p2", "spam", 8)
	storagetest.CreateReport(t, f.db, f.member.ID, models.TargetPost, "p3", "spam", 7)
	_, err := f.svc.UpdateReport(ctx, f.moderator.Actor(), resolved.ID, moderation.ReportUpdate{Status: models.ReportResolved})
	require.NoError(t, err)
	_, err = f.svc.IssueWarning(ctx, f.moderator.Actor(), moderation.WarningInput{UserID: f.member.ID, Reason: "spam"})
	require.NoError(t, err)

	// Act
	snap, err := f.svc.Dashboard(ctx, f.moderator.Actor())

	// Assert
	require.NoError(t, err)
	assert.EqualValues(t, 2, snap.UserTotal)
	assert.EqualValues(t, 1, snap.UserActive)
	assert.EqualValues(t, 1, snap.PostTotal)
	assert.EqualValues(t, 1, snap.CommentTotal)
	assert.EqualValues(t, 2, snap.PendingReportCount)
	assert.EqualValues(t, 1, snap.ActiveWarningCount)
	assert.Equal(t, storagetest.Base, snap.Timestamp)

	require.Len(t, snap.RecentActivity, 2)
	for _, e := range snap.RecentActivity {
		require.NotNil(t, e.Moderator)
		assert.Equal(t, "m1", e.Moderator.Username)
		assert.Equal(t, models.RoleModerator, e.Moderator.Role)
	}

	pending, err := f.svc.ListReports(ctx, f.moderator.Actor(), moderation.ReportQuery{Status: models.ReportPending})
	require.NoError(t, err)
	assert.Equal(t, pending.Pagination.Total, snap.PendingReportCount)
}

func TestDashboard_RecentActivityIsCapped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := f.svc.IssueWarning(ctx, f.moderator.Actor(), moderation.WarningInput{UserID: f.member.ID, Reason: "spam"})
		require.NoError(t, err)
	}

	snap, err := f.svc.Dashboard(ctx, f.moderator.Actor())

	require.NoError(t, err)
	assert.Len(t, snap.RecentActivity, 10)
}

func TestDashboard_EmptyStore(t *testing.T) {
	f := newFixture(t)

	snap, err := f.svc.Dashboard(context.Background(), f.moderator.Actor())

	require.NoError(t, err)
	assert.NotNil(t, snap.RecentActivity)
	assert.Empty(t, snap.RecentActivity)
	assert.Zero(t, snap.PendingReportCount)
}

func TestQueryLog_FiltersAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := storagetest.CreateUser(t, f.db, "a1", models.RoleAdmin)
	r := storagetest.CreateReport(t, f.db, f.member.ID, models.TargetPost, "p1", "spam", 3)
	other := storagetest.CreateReport(t, f.db, f.member.ID, models.TargetPost, "p2", "spam", 2)

	_, err := f.svc.UpdateReport(ctx, f.moderator.Actor(), r.ID, moderation.ReportUpdate{Status: models.ReportDismissed})
	require.NoError(t, err)
	_, err = f.svc.BulkUpdateReports(ctx, admin.Actor(), []string{other.ID}, models.ActionResolve, "")
	require.NoError(t, err)
	_, err = f.svc.IssueWarning(ctx, admin.Actor(), moderation.WarningInput{UserID: f.member.ID, Reason: "spam"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		query moderation.LogQuery
		want  int64
	}{
		{"everything", moderation.LogQuery{}, 3},
		{"by moderator", moderation.LogQuery{ModeratorID: admin.ID}, 2},
		{"by target type", moderation.LogQuery{TargetType: models.TargetBulk}, 1},
		{"by action", moderation.LogQuery{Action: models.ActionWarn}, 1},
		{"combined", moderation.LogQuery{ModeratorID: f.moderator.ID, Action: models.ActionWarn}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.QueryLog(ctx, f.moderator.Actor(), tt.query)

			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Pagination.Total)
			assert.Len(t, page.Logs, int(tt.want))
			assert.Equal(t, 50, page.Pagination.Limit)
		})
	}

	_, err = f.svc.QueryLog(ctx, f.moderator.Actor(), moderation.LogQuery{TargetType: "CHANNEL"})
	assert.ErrorIs(t, err, moderation.ErrInvalidArgument)
}

func TestMemberIsForbiddenEverywhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := storagetest.CreateReport(t, f.db, f.member.ID, models.TargetPost, "p1", "spam", 3)
	member := f.member.Actor()

	ops := map[string]func() error{
		"dashboard": func() error { _, err := f.svc.Dashboard(ctx, member); return err },
		"list reports": func() error {
			_, err := f.svc.ListReports(ctx, member, moderation.ReportQuery{Page: -1})
			return err
		},
		"update report": func() error {
			_, err := f.svc.UpdateReport(ctx, member, r.ID, moderation.ReportUpdate{Status: models.ReportResolved})
			return err
		},
		"bulk update": func() error {
			_, err := f.svc.BulkUpdateReports(ctx, member, nil, "", "")
			return err
		},
		"list warnings": func() error {
			_, err := f.svc.ListWarnings(ctx, member, moderation.WarningQuery{})
			return err
		},
		"issue warning": func() error {
			_, err := f.svc.IssueWarning(ctx, member, moderation.WarningInput{UserID: f.moderator.ID, Reason: "revenge"})
			return err
		},
		"query log": func() error {
			_, err := f.svc.QueryLog(ctx, member, moderation.LogQuery{})
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()

			assert.ErrorIs(t, err, moderation.ErrForbidden, "gate runs before any validation")
			assert.Equal(t, "Insufficient permissions. Moderator access required.", err.Error())
		})
	}

	assert.Equal(t, models.ReportPending, f.reportStatus(t, r.ID))
	assert.EqualValues(t, 0, storagetest.Count(t, f.db, &models.UserWarning{}))
	assert.EqualValues(t, 0, storagetest.Count(t, f.db, &models.Notification{}))
	assert.Empty(t, f.logEntries(t))
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPublishFailureDoesNotUndoDecision(t *testing.T) {
	f := newFixture(t)
	failing := new(MockPublisher)
	failing.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)
	f.svc = moderation.NewService(f.svc.Storage, moderation.WithPublisher(failing))
	r := storagetest.CreateReport(t, f.db, f.member.ID, models.TargetPost, "p1", "spam", 3)

	_, err := f.svc.UpdateReport(context.Background(), f.moderator.Actor(), r.ID, moderation.ReportUpdate{Status: models.ReportResolved})

	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, f.reportStatus(t, r.ID))
	failing.AssertExpectations(t)
}
