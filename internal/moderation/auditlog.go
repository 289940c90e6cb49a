package moderation

import (
	"context"
	"modflow/backend/internal/config"
	"modflow/backend/internal/models"
	"modflow/backend/internal/permission"
	"modflow/backend/internal/storage"
)

type LogQuery struct {
	ModeratorID string
	TargetType  models.TargetType
	Action      string
	Page        int
	Limit       int
}

type LogPage struct {
	Logs       []models.ModerationLogEntry `json:"logs"`
	Pagination Pagination                  `json:"pagination"`
}

// QueryLog reads the audit log newest-first. Entries are only ever appended by
// report and warning decisions; there is no write path here.
func (s *Service) QueryLog(ctx context.Context, actor models.Actor, q LogQuery) (*LogPage, error) {
	if err := s.authorize(actor, permission.TierModerate); err != nil {
		return nil, err
	}
	if q.Page == 0 && q.Limit == 0 {
		q.Page, q.Limit = 1, config.DefaultLogPageLimit
	}
	page, err := checkPage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	if q.TargetType != "" && !q.TargetType.Valid() {
		return nil, invalid("unknown log target type %q", q.TargetType)
	}

	entries, total, err := s.Storage.ListLog(ctx, storage.LogFilter{
		ModeratorID: q.ModeratorID,
		TargetType:  q.TargetType,
		Action:      q.Action,
	}, page)
	if err != nil {
		return nil, s.fail(err, "fetch moderation logs")
	}
	return &LogPage{Logs: entries, Pagination: newPagination(page.Number, page.Limit, total)}, nil
}
