package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SamWheatley/rainier/internal/core"
	"github.com/SamWheatley/rainier/internal/domain"
	"github.com/SamWheatley/rainier/internal/i18n"
	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/plugins/ai"
	"github.com/SamWheatley/rainier/internal/plugins/db/researchdb"
)

// writeError maps domain failures to HTTP statuses and localized messages.
// notFoundKey picks the message for ErrNotFound, which means different
// things on different routes.
func writeError(c *gin.Context, err error, notFoundKey string) {
	debuglog.Debug(debuglog.Basic, "%s %s failed: %v\n", c.Request.Method, c.Request.URL.Path, err)

	switch {
	case errors.Is(err, researchdb.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": i18n.T(notFoundKey)})
	case errors.Is(err, ai.ErrUnknownModel):
		c.JSON(http.StatusBadRequest, gin.H{"error": i18n.T("unknown_model")})
	case errors.Is(err, core.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": i18n.T("chat_empty_message")})
	case errors.Is(err, domain.ErrNothingToAnalyze):
		c.JSON(http.StatusBadRequest, gin.H{"error": i18n.T("insights_nothing_to_analyze")})
	default:
		writeProviderError(c, err)
	}
}

func writeProviderError(c *gin.Context, err error) {
	switch domain.KindOf(err) {
	case domain.FailureRequestTooLarge:
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": i18n.T("chat_document_too_large")})
	case domain.FailureRateLimited:
		c.JSON(http.StatusTooManyRequests, gin.H{"error": i18n.T("chat_send_failed")})
	case domain.FailureAuth, domain.FailureProvider, domain.FailureInvalidInput:
		c.JSON(http.StatusBadGateway, gin.H{"error": i18n.T("chat_send_failed")})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func writeBadRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": i18n.T("invalid_request_body")})
}
