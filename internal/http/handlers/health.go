package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brunolnetto/sql-adventure-sub001/internal/http/response"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/apierr"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether the evaluation store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler { return &HealthHandler{db: db} }

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.db == nil {
		response.RespondOK(c, healthBody{Status: "ok", Database: "not_configured"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		response.RespondError(c, apierr.Unavailable("database_unavailable", "evaluation store unreachable", err))
		return
	}
	response.RespondOK(c, healthBody{Status: "ok", Database: "up"})
}
