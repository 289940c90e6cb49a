package moderation

import (
	"context"
	"errors"
	"fmt"
	"modflow/backend/internal/config"
	"modflow/backend/internal/metrics"
	"modflow/backend/internal/models"
	"modflow/backend/internal/permission"
	"modflow/backend/internal/storage"
	"strings"
)

type ReportQuery struct {
	Status     models.ReportStatus
	TargetType models.TargetType
	Page       int
	Limit      int
}

type ReportPage struct {
	Reports    []models.Report `json:"reports"`
	Pagination Pagination      `json:"pagination"`
}

// ReportUpdate moves one report out of review. Action and Reason are optional.
type ReportUpdate struct {
	Status models.ReportStatus
	Action string
	Reason string
}

// BulkResult is the outcome of a bulk report action.
type BulkResult struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// ListReports returns a newest-first page of reports.
func (s *Service) ListReports(ctx context.Context, actor models.Actor, q ReportQuery) (*ReportPage, error) {
	if err := s.authorize(actor, permission.TierModerate); err != nil {
		return nil, err
	}
	if q.Page == 0 && q.Limit == 0 {
		q.Page, q.Limit = 1, config.DefaultReportPageLimit
	}
	page, err := checkPage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, invalid("unknown report status %q", q.Status)
	}
	if q.TargetType != "" && !q.TargetType.Reportable() {
		return nil, invalid("unknown report target type %q", q.TargetType)
	}

	reports, total, err := s.Storage.ListReports(ctx, storage.ReportFilter{Status: q.Status, TargetType: q.TargetType}, page)
	if err != nil {
		return nil, s.fail(err, "fetch reports")
	}
	return &ReportPage{Reports: reports, Pagination: newPagination(page.Number, page.Limit, total)}, nil
}

// UpdateReport resolves or dismisses a pending report and records the decision in
// the audit log within the same transaction.
func (s *Service) UpdateReport(ctx context.Context, actor models.Actor, reportID string, in ReportUpdate) (*models.Report, error) {
	if err := s.authorize(actor, permission.TierModerate); err != nil {
		return nil, err
	}
	if reportID == "" {
		return nil, invalid("report id is required")
	}
	if !in.Status.Terminal() {
		return nil, invalid("status must be %s or %s, got %q", models.ReportResolved, models.ReportDismissed, in.Status)
	}

	var (
		updated *models.Report
		entry   *models.ModerationLogEntry
	)
	err := s.Storage.Atomically(ctx, func(tx storage.Tx) error {
		report, err := tx.GetReport(reportID)
		if errors.Is(err, storage.ErrNotFound) {
			return notFound("Report %s not found", reportID)
		}
		if err != nil {
			return err
		}
		if report.Status != models.ReportPending {
			return invalid("Report %s is already %s", reportID, report.Status)
		}

		now := s.now()
		moved, err := tx.TransitionReport(report.ID, in.Status, now)
		if err != nil {
			return err
		}
		if !moved {
			// Another reviewer decided it between our read and the update.
			return invalid("Report %s is no longer %s", reportID, models.ReportPending)
		}
		report.Status = in.Status
		report.UpdatedAt = now

		entry = &models.ModerationLogEntry{
			ModeratorID: actor.ID,
			TargetType:  report.TargetType,
			Target:      models.SingleTarget(report.TargetID),
			Action:      orDefault(in.Action, models.ActionReview),
			Reason:      orDefault(in.Reason, fmt.Sprintf("Report %s: %s", in.Status, report.Reason)),
			CreatedAt:   now,
		}
		if err := tx.AppendLog(entry); err != nil {
			return err
		}
		updated = report
		return nil
	})
	if err != nil {
		return nil, s.fail(err, "update report")
	}

	metrics.ReportsUpdated.Inc()
	s.announce(ctx, entry)
	return updated, nil
}

// BulkUpdateReports applies one action to every existing report among reportIDs and
// writes a single BULK audit entry listing the reports it touched. Ids that do not
// resolve are skipped. Reports already out of review are overwritten: concurrent
// overlapping batches are last-writer-wins, and each batch keeps its own entry.
func (s *Service) BulkUpdateReports(ctx context.Context, actor models.Actor, reportIDs []string, action, reason string) (*BulkResult, error) {
	if err := s.authorize(actor, permission.TierModerate); err != nil {
		return nil, err
	}
	ids := uniqueIDs(reportIDs)
	if len(ids) == 0 {
		return nil, invalid("Invalid report IDs: at least one report id is required")
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, invalid("action is required")
	}

	status := models.ReportDismissed
	if action == models.ActionResolve {
		status = models.ReportResolved
	}

	var (
		count int64
		entry *models.ModerationLogEntry
	)
	err := s.Storage.Atomically(ctx, func(tx storage.Tx) error {
		found, err := tx.FindReports(ids)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return notFound("No reports found")
		}
		matched := inRequestOrder(ids, found)

		now := s.now()
		count, err = tx.SetReportStatus(matched, status, now)
		if err != nil {
			return err
		}

		entry = &models.ModerationLogEntry{
			ModeratorID: actor.ID,
			TargetType:  models.TargetBulk,
			Target:      models.BulkTarget(matched),
			Action:      action,
			Reason:      orDefault(reason, fmt.Sprintf("Bulk %s on %d reports", strings.ToLower(action), len(matched))),
			CreatedAt:   now,
		}
		return tx.AppendLog(entry)
	})
	if err != nil {
		return nil, s.fail(err, "perform bulk action")
	}

	metrics.ReportsUpdated.Add(float64(count))
	s.announce(ctx, entry)
	return &BulkResult{
		Message: fmt.Sprintf("Successfully %s %d reports", pastTense(action), count),
		Count:   count,
	}, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func inRequestOrder(ids []string, found []models.Report) []string {
	exists := make(map[string]bool, len(found))
	for _, r := range found {
		exists[r.ID] = true
	}
	matched := make([]string, 0, len(found))
	for _, id := range ids {
		if exists[id] {
			matched = append(matched, id)
		}
	}
	return matched
}

// pastTense turns a RESOLVE/DISMISS style tag into "resolved"/"dismissed".
func pastTense(action string) string {
	verb := strings.ToLower(action)
	if strings.HasSuffix(verb, "e") {
		return verb + "d"
	}
	return verb + "ed"
}
