// Package moderation is the moderation workflow engine: report triage, warnings,
// the audit log and the reviewer dashboard. Every operation runs the permission
// gate first, and every decision commits together with exactly one audit entry.
package moderation

import (
	"context"
	"errors"
	"modflow/backend/internal/logging"
	"modflow/backend/internal/metrics"
	"modflow/backend/internal/models"
	"modflow/backend/internal/permission"
	"modflow/backend/internal/storage"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Publisher announces committed decisions to live listeners. Publishing happens
// after commit and is best-effort: a failure never undoes the decision.
type Publisher interface {
	Publish(ctx context.Context, entry *models.ModerationLogEntry) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, *models.ModerationLogEntry) error { return nil }

// Service handles the business logic for moderation.
type Service struct {
	Storage storage.Storage

	events   Publisher
	now      func() time.Time
	validate *validator.Validate
	log      zerolog.Logger
}

type Option func(*Service)

// WithPublisher sets where committed decisions are announced.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new moderation service.
func NewService(s storage.Storage, opts ...Option) *Service {
	svc := &Service{
		Storage:  s,
		events:   nopPublisher{},
		now:      time.Now,
		validate: validator.New(),
		log:      logging.Component("moderation"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Pagination describes where a page sits in a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func newPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + int64(limit) - 1) / int64(limit),
	}
}

func (s *Service) authorize(actor models.Actor, tier permission.Tier) error {
	if err := permission.Authorize(actor.Role, tier); err != nil {
		metrics.GateDenials.WithLabelValues(string(tier)).Inc()
		return &Error{Kind: ErrForbidden, Message: err.Error(), Err: err}
	}
	return nil
}

func checkPage(page, limit int) (storage.Page, error) {
	if page < 1 {
		return storage.Page{}, invalid("page must be a positive number, got %d", page)
	}
	if limit < 1 {
		return storage.Page{}, invalid("limit must be a positive number, got %d", limit)
	}
	return storage.Page{Number: page, Limit: limit}, nil
}

// fail passes reviewer-facing errors through and hides everything else behind ErrPersistence.
func (s *Service) fail(err error, op string) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	s.log.Error().Err(err).Str("op", op).Msg("persistence failure")
	return &Error{Kind: ErrPersistence, Message: "Failed to " + op, Err: err}
}

func (s *Service) announce(ctx context.Context, entry *models.ModerationLogEntry) {
	metrics.Decisions.WithLabelValues(entry.Action).Inc()
	if err := s.events.Publish(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("entry", entry.ID).Msg("live feed publish failed")
	}
}
