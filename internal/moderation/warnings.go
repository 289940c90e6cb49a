package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"modflow/backend/internal/config"
	"modflow/backend/internal/models"
	"modflow/backend/internal/permission"
	"modflow/backend/internal/storage"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

// WarningInput is what a moderator supplies when warning an account.
type WarningInput struct {
	UserID    string          `json:"user_id" validate:"required"`
	Reason    string          `json:"reason" validate:"required"`
	Severity  models.Severity `json:"severity" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	ExpiresAt *time.Time      `json:"expires_at"`
}

type WarningQuery struct {
	UserID   string
	IsActive *bool
	Page     int
	Limit    int
}

type WarningPage struct {
	Warnings   []models.UserWarning `json:"warnings"`
	Pagination Pagination           `json:"pagination"`
}

// IssueWarning records a warning against an account. The warning, the notification
// telling the account about it and the WARN audit entry commit together.
func (s *Service) IssueWarning(ctx context.Context, actor models.Actor, in WarningInput) (*models.UserWarning, error) {
	if err := s.authorize(actor, permission.TierModerate); err != nil {
		return nil, err
	}
	in.UserID = strings.TrimSpace(in.UserID)
	in.Reason = strings.TrimSpace(in.Reason)
	if err := s.validate.Struct(in); err != nil {
		return nil, invalidInput(err)
	}
	if in.Severity == "" {
		in.Severity = models.SeverityLow
	}
	now := s.now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, invalid("expires_at must be in the future")
	}

	var (
		warning *models.UserWarning
		entry   *models.ModerationLogEntry
	)
	err := s.Storage.Atomically(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetUser(in.UserID); errors.Is(err, storage.ErrNotFound) {
			return notFound("User %s not found", in.UserID)
		} else if err != nil {
			return err
		}

		w := &models.UserWarning{
			UserID:      in.UserID,
			ModeratorID: actor.ID,
			Reason:      in.Reason,
			Severity:    in.Severity,
			IsActive:    true,
			ExpiresAt:   in.ExpiresAt,
			CreatedAt:   now,
		}
		if err := tx.CreateWarning(w); err != nil {
			return err
		}

		data, err := json.Marshal(map[string]string{"warningId": w.ID})
		if err != nil {
			return err
		}
		if err := tx.CreateNotification(&models.Notification{
			UserID:    in.UserID,
			Title:     config.WarningNotificationTitle,
			Message:   fmt.Sprintf("You have received a %s warning: %s", strings.ToLower(string(in.Severity)), in.Reason),
			Type:      config.NotificationTypeModeration,
			Data:      datatypes.JSON(data),
			CreatedAt: now,
		}); err != nil {
			return err
		}

		entry = &models.ModerationLogEntry{
			ModeratorID: actor.ID,
			TargetType:  models.TargetUser,
			Target:      models.SingleTarget(in.UserID),
			Action:      models.ActionWarn,
			Reason:      in.Reason,
			CreatedAt:   now,
		}
		if err := tx.AppendLog(entry); err != nil {
			return err
		}

		warning, err = tx.GetWarning(w.ID)
		return err
	})
	if err != nil {
		return nil, s.fail(err, "issue warning")
	}

	s.announce(ctx, entry)
	return warning, nil
}

// ListWarnings returns a newest-first page of warnings with the warned account and
// the issuing moderator joined in.
func (s *Service) ListWarnings(ctx context.Context, actor models.Actor, q WarningQuery) (*WarningPage, error) {
	if err := s.authorize(actor, permission.TierModerate); err != nil {
		return nil, err
	}
	if q.Page == 0 && q.Limit == 0 {
		q.Page, q.Limit = 1, config.DefaultWarningPageLimit
	}
	page, err := checkPage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}

	warnings, total, err := s.Storage.ListWarnings(ctx, storage.WarningFilter{UserID: q.UserID, IsActive: q.IsActive}, page)
	if err != nil {
		return nil, s.fail(err, "fetch warnings")
	}
	return &WarningPage{Warnings: warnings, Pagination: newPagination(page.Number, page.Limit, total)}, nil
}

func invalidInput(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &Error{Kind: ErrInvalidArgument, Message: err.Error(), Err: err}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return &Error{Kind: ErrInvalidArgument, Message: "Invalid warning: " + strings.Join(fields, ", "), Err: err}
}
