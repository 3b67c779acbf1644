package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/apierr"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// RespondError writes err as an error envelope. Only the client-safe part of
// an *apierr.Error is serialized; other errors become an opaque 500.
func RespondError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae.Cause != nil {
		_ = c.Error(ae.Cause)
	}
	msg := ae.Public
	if msg == "" {
		msg = http.StatusText(ae.Status)
	}
	c.AbortWithStatusJSON(ae.Status, ErrorEnvelope{Error: ErrorBody{Code: ae.Code, Message: msg}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondList wraps a slice so empty results still serialize as [].
func RespondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}
