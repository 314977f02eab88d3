package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SamWheatley/rainier/internal/core"
	"github.com/SamWheatley/rainier/internal/domain"
	"github.com/SamWheatley/rainier/internal/plugins/db/researchdb"
)

type InsightsHandler struct {
	analyst *core.Analyst
	store   *researchdb.Store
}

func NewInsightsHandler(r *gin.Engine, analyst *core.Analyst, store *researchdb.Store) *InsightsHandler {
	handler := &InsightsHandler{analyst: analyst, store: store}
	group := r.Group("/api/insights")
	group.POST("/generate", handler.Generate)
	group.GET("/sessions", handler.ListSessions)
	group.GET("/sessions/:id", handler.GetSession)
	group.DELETE("/sessions/:id", handler.DeleteSession)
	group.PATCH("/:id", handler.Rename)
	group.DELETE("/:id", handler.Delete)
	return handler
}

type generateBody struct {
	Dataset string `json:"dataset"`
	Model   string `json:"model"`
}

func (h *InsightsHandler) Generate(c *gin.Context) {
	var body generateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeBadRequest(c)
		return
	}
	result, err := h.analyst.Generate(c.Request.Context(), owner(c), &core.GenerateRequest{
		Dataset: domain.ParseScope(body.Dataset),
		Model:   body.Model,
	})
	if err != nil {
		writeError(c, err, "session_not_found")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *InsightsHandler) ListSessions(c *gin.Context) {
	sessions, err := h.store.ListSessions(c.Request.Context(), owner(c))
	if err != nil {
		writeError(c, err, "session_not_found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *InsightsHandler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.store.GetSession(ctx, owner(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "session_not_found")
		return
	}
	insights, err := h.store.ListInsights(ctx, owner(c), session.ID)
	if err != nil {
		writeError(c, err, "session_not_found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "insights": insights})
}

// DeleteSession cascades to the session's insights.
func (h *InsightsHandler) DeleteSession(c *gin.Context) {
	if err := h.store.DeleteSession(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		writeError(c, err, "session_not_found")
		return
	}
	c.Status(http.StatusNoContent)
}

type renameBody struct {
	Title string `json:"title" binding:"required"`
}

func (h *InsightsHandler) Rename(c *gin.Context) {
	var body renameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeBadRequest(c)
		return
	}
	if err := h.store.RenameInsight(c.Request.Context(), owner(c), c.Param("id"), body.Title); err != nil {
		writeError(c, err, "insight_not_found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InsightsHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteInsight(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		writeError(c, err, "insight_not_found")
		return
	}
	c.Status(http.StatusNoContent)
}
