package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/http/response"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/analytics"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/apierr"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// AnalyticsReader is the read side of the evaluation store.
type AnalyticsReader interface {
	ComprehensiveSummary(ctx context.Context) (analytics.Summary, error)
	QuestPerformance(ctx context.Context) ([]analytics.QuestPerformance, error)
	PatternAnalysis(ctx context.Context, usedOnly bool, limit int) ([]analytics.PatternAnalysis, error)
	FileProgress(ctx context.Context, f analytics.FileFilter) ([]analytics.FileProgress, error)
	Recommendations(ctx context.Context, priority string, limit int) ([]analytics.RecommendationItem, error)
}

type AnalyticsHandler struct {
	log    *logger.Logger
	reader AnalyticsReader
}

func NewAnalyticsHandler(log *logger.Logger, reader AnalyticsReader) *AnalyticsHandler {
	return &AnalyticsHandler{log: log.With("handler", "AnalyticsHandler"), reader: reader}
}

// GET /v1/summary
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	s, err := h.reader.ComprehensiveSummary(c.Request.Context())
	if err != nil {
		h.fail(c, "summary", err)
		return
	}
	response.RespondOK(c, s)
}

// GET /v1/quests
func (h *AnalyticsHandler) ListQuests(c *gin.Context) {
	rows, err := h.reader.QuestPerformance(c.Request.Context())
	if err != nil {
		h.fail(c, "quests", err)
		return
	}
	response.RespondList(c, rows)
}

// GET /v1/patterns?used=true&limit=20
func (h *AnalyticsHandler) ListPatterns(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	usedOnly := false
	if raw := strings.TrimSpace(c.Query("used")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.RespondError(c, apierr.BadRequest("invalid_used", "used must be a boolean"))
			return
		}
		usedOnly = v
	}
	rows, err := h.reader.PatternAnalysis(c.Request.Context(), usedOnly, limit)
	if err != nil {
		h.fail(c, "patterns", err)
		return
	}
	response.RespondList(c, rows)
}

// GET /v1/files?quest=1-data-modeling&order=latest_score&limit=20
func (h *AnalyticsHandler) ListFiles(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	order := strings.TrimSpace(c.DefaultQuery("order", "recent"))
	if order != "recent" && order != "latest_score" {
		response.RespondError(c, apierr.BadRequest("invalid_order", "order must be recent or latest_score"))
		return
	}
	rows, err := h.reader.FileProgress(c.Request.Context(), analytics.FileFilter{
		Quest:   strings.TrimSpace(c.Query("quest")),
		OrderBy: order,
		Limit:   limit,
	})
	if err != nil {
		h.fail(c, "files", err)
		return
	}
	response.RespondList(c, rows)
}

// GET /v1/recommendations?priority=High&limit=20
func (h *AnalyticsHandler) ListRecommendations(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	priority := ""
	if raw := strings.TrimSpace(c.Query("priority")); raw != "" {
		for _, p := range evaluation.Priorities {
			if strings.EqualFold(raw, string(p)) {
				priority = string(p)
			}
		}
		if priority == "" {
			response.RespondError(c, apierr.BadRequest("invalid_priority", "priority must be High, Medium or Low"))
			return
		}
	}
	rows, err := h.reader.Recommendations(c.Request.Context(), priority, limit)
	if err != nil {
		h.fail(c, "recommendations", err)
		return
	}
	response.RespondList(c, rows)
}

func (h *AnalyticsHandler) fail(c *gin.Context, what string, err error) {
	h.log.Error("Analytics query failed", "query", what, "error", err)
	response.RespondError(c, apierr.Internal("query_failed", fmt.Errorf("load %s: %w", what, err)))
}

func parseLimit(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apierr.BadRequest("invalid_limit", "limit must be a positive integer")
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}
