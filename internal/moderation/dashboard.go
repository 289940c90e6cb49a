package moderation

import (
	"context"
	"modflow/backend/internal/config"
	"modflow/backend/internal/metrics"
	"modflow/backend/internal/models"
	"modflow/backend/internal/permission"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Snapshot is a best-effort view of moderation health. The counts are read
// independently and may disagree slightly under concurrent writes.
type Snapshot struct {
	UserTotal          int64                       `json:"user_total"`
	UserActive         int64                       `json:"user_active"`
	PostTotal          int64                       `json:"post_total"`
	CommentTotal       int64                       `json:"comment_total"`
	PendingReportCount int64                       `json:"pending_report_count"`
	ActiveWarningCount int64                       `json:"active_warning_count"`
	RecentActivity     []models.ModerationLogEntry `json:"recent_activity"`
	Timestamp          time.Time                   `json:"timestamp"`
}

// Dashboard runs the snapshot reads concurrently. Any failed read fails the snapshot.
func (s *Service) Dashboard(ctx context.Context, actor models.Actor) (*Snapshot, error) {
	if err := s.authorize(actor, permission.TierModerate); err != nil {
		return nil, err
	}
	timer := prometheus.NewTimer(metrics.SnapshotDuration)
	defer timer.ObserveDuration()

	snap := &Snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, read func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := read(gctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	count(&snap.UserTotal, func(ctx context.Context) (int64, error) { return s.Storage.CountUsers(ctx, false) })
	count(&snap.UserActive, func(ctx context.Context) (int64, error) { return s.Storage.CountUsers(ctx, true) })
	count(&snap.PostTotal, s.Storage.CountPublishedPosts)
	count(&snap.CommentTotal, s.Storage.CountVisibleComments)
	count(&snap.PendingReportCount, func(ctx context.Context) (int64, error) {
		return s.Storage.CountReports(ctx, models.ReportPending)
	})
	count(&snap.ActiveWarningCount, s.Storage.CountActiveWarnings)
	g.Go(func() error {
		recent, err := s.Storage.RecentLog(gctx, config.RecentActivityLimit)
		if err != nil {
			return err
		}
		snap.RecentActivity = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, s.fail(err, "fetch dashboard data")
	}
	if snap.RecentActivity == nil {
		snap.RecentActivity = []models.ModerationLogEntry{}
	}
	snap.Timestamp = s.now()
	return snap, nil
}
