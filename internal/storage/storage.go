package storage

import (
	"context"
	"modflow/backend/internal/models"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("record not found")

// Page selects a 1-based page of a listing.
type Page struct {
	Number int
	Limit  int
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Limit
}

type ReportFilter struct {
	Status     models.ReportStatus
	TargetType models.TargetType
}

type WarningFilter struct {
	UserID   string
	IsActive *bool
}

type LogFilter struct {
	ModeratorID string
	TargetType  models.TargetType
	Action      string
}

// Reader is the read side of the store. Reads are independent and carry no
// transactional coupling with each other.
type Reader interface {
	FindUser(ctx context.Context, id string) (*models.User, error)

	ListReports(ctx context.Context, f ReportFilter, p Page) ([]models.Report, int64, error)
	ListWarnings(ctx context.Context, f WarningFilter, p Page) ([]models.UserWarning, int64, error)
	ListLog(ctx context.Context, f LogFilter, p Page) ([]models.ModerationLogEntry, int64, error)
	RecentLog(ctx context.Context, n int) ([]models.ModerationLogEntry, error)

	CountUsers(ctx context.Context, activeOnly bool) (int64, error)
	CountPublishedPosts(ctx context.Context) (int64, error)
	CountVisibleComments(ctx context.Context) (int64, error)
	CountReports(ctx context.Context, status models.ReportStatus) (int64, error)
	CountActiveWarnings(ctx context.Context) (int64, error)
}

// Tx is the write side of the store. It only exists inside Atomically, so every
// write, audit entries included, belongs to a transaction that commits or aborts as one.
type Tx interface {
	GetReport(id string) (*models.Report, error)
	FindReports(ids []string) ([]models.Report, error)
	SetReportStatus(ids []string, status models.ReportStatus, at time.Time) (int64, error)
	// TransitionReport moves one report out of PENDING. It reports false, and
	// writes nothing, when the report is no longer PENDING.
	TransitionReport(id string, status models.ReportStatus, at time.Time) (bool, error)

	GetUser(id string) (*models.User, error)
	CreateWarning(w *models.UserWarning) error
	GetWarning(id string) (*models.UserWarning, error)
	CreateNotification(n *models.Notification) error

	AppendLog(e *models.ModerationLogEntry) error
}

type Storage interface {
	Reader
	// Atomically runs fn in one transaction. Any error returned by fn rolls back
	// every write fn made and is returned unchanged.
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}

type Service struct {
	DB *gorm.DB
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

func (s *Service) Atomically(ctx context.Context, fn func(tx Tx) error) error {
	return s.DB.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&txStore{db: db})
	})
}

func withReporter(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "avatar")
}

func withModerator(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "role")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func (s *Service) FindUser(ctx context.Context, id string) (*models.User, error) {
	return getUser(s.DB.WithContext(ctx), id)
}

func (s *Service) ListReports(ctx context.Context, f ReportFilter, p Page) ([]models.Report, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.TargetType != "" {
			db = db.Where("target_type = ?", f.TargetType)
		}
		return db
	}

	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Report{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count reports")
	}

	var reports []models.Report
	err := s.DB.WithContext(ctx).
		Scopes(filter, newestFirst).
		Preload("Reporter", withReporter).
		Offset(p.offset()).
		Limit(p.Limit).
		Find(&reports).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list reports")
	}
	return reports, total, nil
}

func (s *Service) ListWarnings(ctx context.Context, f WarningFilter, p Page) ([]models.UserWarning, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.UserID != "" {
			db = db.Where("user_id = ?", f.UserID)
		}
		if f.IsActive != nil {
			db = db.Where("is_active = ?", *f.IsActive)
		}
		return db
	}

	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.UserWarning{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count warnings")
	}

	var warnings []models.UserWarning
	err := s.DB.WithContext(ctx).
		Scopes(filter, newestFirst).
		Preload("User", withReporter).
		Preload("Moderator", withModerator).
		Offset(p.offset()).
		Limit(p.Limit).
		Find(&warnings).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list warnings")
	}
	return warnings, total, nil
}

func (s *Service) ListLog(ctx context.Context, f LogFilter, p Page) ([]models.ModerationLogEntry, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.ModeratorID != "" {
			db = db.Where("moderator_id = ?", f.ModeratorID)
		}
		if f.TargetType != "" {
			db = db.Where("target_type = ?", f.TargetType)
		}
		if f.Action != "" {
			db = db.Where("action = ?", f.Action)
		}
		return db
	}

	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.ModerationLogEntry{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count log entries")
	}

	var entries []models.ModerationLogEntry
	err := s.DB.WithContext(ctx).
		Scopes(filter, newestFirst).
		Preload("Moderator", withModerator).
		Offset(p.offset()).
		Limit(p.Limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list log entries")
	}
	return entries, total, nil
}

func (s *Service) RecentLog(ctx context.Context, n int) ([]models.ModerationLogEntry, error) {
	var entries []models.ModerationLogEntry
	err := s.DB.WithContext(ctx).
		Scopes(newestFirst).
		Preload("Moderator", withModerator).
		Limit(n).
		Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, "recent log entries")
	}
	return entries, nil
}

func (s *Service) count(ctx context.Context, model interface{}, what string, where ...interface{}) (int64, error) {
	q := s.DB.WithContext(ctx).Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, errors.Wrapf(err, "count %s", what)
	}
	return n, nil
}

func (s *Service) CountUsers(ctx context.Context, activeOnly bool) (int64, error) {
	if activeOnly {
		return s.count(ctx, &models.User{}, "active users", "is_active = ?", true)
	}
	return s.count(ctx, &models.User{}, "users")
}

func (s *Service) CountPublishedPosts(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.Post{}, "posts", "status = ?", models.PostPublished)
}

func (s *Service) CountVisibleComments(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.Comment{}, "comments", "is_deleted = ?", false)
}

func (s *Service) CountReports(ctx context.Context, status models.ReportStatus) (int64, error) {
	return s.count(ctx, &models.Report{}, "reports", "status = ?", status)
}

func (s *Service) CountActiveWarnings(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.UserWarning{}, "warnings", "is_active = ?", true)
}

// txStore implements Tx on an open gorm transaction.
type txStore struct {
	db *gorm.DB
}

func (t *txStore) GetReport(id string) (*models.Report, error) {
	var report models.Report
	err := t.db.Where("id = ?", id).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get report %s", id)
	}
	return &report, nil
}

func (t *txStore) FindReports(ids []string) ([]models.Report, error) {
	var reports []models.Report
	if err := t.db.Where("id IN ?", ids).Find(&reports).Error; err != nil {
		return nil, errors.Wrap(err, "find reports")
	}
	return reports, nil
}

func (t *txStore) SetReportStatus(ids []string, status models.ReportStatus, at time.Time) (int64, error) {
	result := t.db.Model(&models.Report{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "update report status")
	}
	return result.RowsAffected, nil
}

func (t *txStore) TransitionReport(id string, status models.ReportStatus, at time.Time) (bool, error) {
	result := t.db.Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportPending).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, errors.Wrapf(result.Error, "transition report %s", id)
	}
	return result.RowsAffected == 1, nil
}

func (t *txStore) GetUser(id string) (*models.User, error) {
	return getUser(t.db, id)
}

func (t *txStore) CreateWarning(w *models.UserWarning) error {
	return errors.Wrap(t.db.Omit(clause.Associations).Create(w).Error, "create warning")
}

func (t *txStore) GetWarning(id string) (*models.UserWarning, error) {
	var w models.UserWarning
	err := t.db.Preload("User", withReporter).
		Preload("Moderator", withModerator).
		Where("id = ?", id).
		First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get warning %s", id)
	}
	return &w, nil
}

func (t *txStore) CreateNotification(n *models.Notification) error {
	return errors.Wrap(t.db.Create(n).Error, "create notification")
}

func (t *txStore) AppendLog(e *models.ModerationLogEntry) error {
	return errors.Wrap(t.db.Omit(clause.Associations).Create(e).Error, "append moderation log")
}

func getUser(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get user %s", id)
	}
	return &user, nil
}
