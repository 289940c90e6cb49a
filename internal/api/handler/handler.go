package handler

import (
	"modflow/backend/internal/config"
	"modflow/backend/internal/livefeed"
	"modflow/backend/internal/logging"
	"modflow/backend/internal/moderation"
	"modflow/backend/internal/permission"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handler serves the moderation API.
type Handler struct {
	Moderation *moderation.Service
	Hub        *livefeed.Hub

	secret   []byte
	maxLimit int
	version  string
	log      zerolog.Logger
}

func NewHandler(svc *moderation.Service, hub *livefeed.Hub, jwtSecret string, maxLimit int, version string) *Handler {
	if maxLimit < 1 {
		maxLimit = config.DefaultMaxPageLimit
	}
	return &Handler{
		Moderation: svc,
		Hub:        hub,
		secret:     []byte(jwtSecret),
		maxLimit:   maxLimit,
		version:    version,
		log:        logging.Component("api"),
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/api/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	mod := r.Group("/api/moderation", h.RequireActor, RequireTier(permission.TierModerate))
	{
		mod.GET("/dashboard", h.Dashboard)
		mod.GET("/reports", h.ListReports)
		mod.PATCH("/reports/:id", h.UpdateReport)
		mod.POST("/reports/bulk", h.BulkUpdateReports)
		mod.GET("/warnings", h.ListWarnings)
		mod.POST("/warnings", h.IssueWarning)
		mod.GET("/log", h.QueryLog)
		mod.GET("/live", h.ServeLiveFeed)
	}
}
