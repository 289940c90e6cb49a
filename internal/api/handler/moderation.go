package handler

import (
	"errors"
	"modflow/backend/internal/models"
	"modflow/backend/internal/moderation"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type reportListQuery struct {
	Status     string `form:"status" binding:"omitempty,oneof=PENDING RESOLVED DISMISSED"`
	TargetType string `form:"targetType" binding:"omitempty,oneof=USER POST COMMENT"`
	Page       int    `form:"page,default=1" binding:"min=1"`
	Limit      int    `form:"limit,default=20" binding:"min=1"`
}

type warningListQuery struct {
	UserID   string `form:"userId"`
	IsActive *bool  `form:"isActive"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=20" binding:"min=1"`
}

type logListQuery struct {
	ModeratorID string `form:"moderatorId"`
	TargetType  string `form:"targetType" binding:"omitempty,oneof=USER POST COMMENT BULK"`
	Action      string `form:"action"`
	Page        int    `form:"page,default=1" binding:"min=1"`
	Limit       int    `form:"limit,default=50" binding:"min=1"`
}

type updateReportRequest struct {
	Status string `json:"status" binding:"required"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

type bulkUpdateRequest struct {
	ReportIDs []string `json:"reportIds"`
	Action    string   `json:"action"`
	Reason    string   `json:"reason"`
}

type issueWarningRequest struct {
	UserID    string     `json:"userId"`
	Reason    string     `json:"reason"`
	Severity  string     `json:"severity"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (h *Handler) Dashboard(c *gin.Context) {
	snap, err := h.Moderation.Dashboard(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) ListReports(c *gin.Context) {
	var q reportListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	page, err := h.Moderation.ListReports(c.Request.Context(), actorFrom(c), moderation.ReportQuery{
		Status:     models.ReportStatus(q.Status),
		TargetType: models.TargetType(q.TargetType),
		Page:       q.Page,
		Limit:      h.clamp(q.Limit),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) UpdateReport(c *gin.Context) {
	var req updateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	report, err := h.Moderation.UpdateReport(c.Request.Context(), actorFrom(c), c.Param("id"), moderation.ReportUpdate{
		Status: models.ReportStatus(req.Status),
		Action: req.Action,
		Reason: req.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) BulkUpdateReports(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	res, err := h.Moderation.BulkUpdateReports(c.Request.Context(), actorFrom(c), req.ReportIDs, req.Action, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListWarnings(c *gin.Context) {
	var q warningListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	page, err := h.Moderation.ListWarnings(c.Request.Context(), actorFrom(c), moderation.WarningQuery{
		UserID:   q.UserID,
		IsActive: q.IsActive,
		Page:     q.Page,
		Limit:    h.clamp(q.Limit),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) IssueWarning(c *gin.Context) {
	var req issueWarningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	warning, err := h.Moderation.IssueWarning(c.Request.Context(), actorFrom(c), moderation.WarningInput{
		UserID:    req.UserID,
		Reason:    req.Reason,
		Severity:  models.Severity(req.Severity),
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, warning)
}

func (h *Handler) QueryLog(c *gin.Context) {
	var q logListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	page, err := h.Moderation.QueryLog(c.Request.Context(), actorFrom(c), moderation.LogQuery{
		ModeratorID: q.ModeratorID,
		TargetType:  models.TargetType(q.TargetType),
		Action:      q.Action,
		Page:        q.Page,
		Limit:       h.clamp(q.Limit),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) clamp(limit int) int {
	if limit > h.maxLimit {
		return h.maxLimit
	}
	return limit
}

// respondError maps engine failures onto status codes. Internal causes are never
// written to the response.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, moderation.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, moderation.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, moderation.ErrInvalidArgument):
		status = http.StatusBadRequest
	}

	msg := "Internal server error"
	var modErr *moderation.Error
	if errors.As(err, &modErr) {
		msg = modErr.Message
	} else {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected error")
	}
	c.JSON(status, gin.H{"error": msg})
}
