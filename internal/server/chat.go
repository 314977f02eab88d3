package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SamWheatley/rainier/internal/core"
	"github.com/SamWheatley/rainier/internal/plugins/db/researchdb"
)

type ChatHandler struct {
	chatter *core.Chatter
	store   *researchdb.Store
}

func NewChatHandler(r *gin.Engine, chatter *core.Chatter, store *researchdb.Store) *ChatHandler {
	handler := &ChatHandler{chatter: chatter, store: store}
	r.POST("/api/chat", handler.Send)
	group := r.Group("/api/chat/threads")
	group.GET("", handler.ListThreads)
	group.GET("/:id/messages", handler.ListMessages)
	return handler
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req core.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c)
		return
	}
	result, err := h.chatter.Send(c.Request.Context(), owner(c), &req)
	if err != nil {
		writeError(c, err, "thread_not_found")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ChatHandler) ListThreads(c *gin.Context) {
	threads, err := h.store.ListThreads(c.Request.Context(), owner(c))
	if err != nil {
		writeError(c, err, "thread_not_found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": threads})
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	// Resolve through the owner so one guest cannot read another's thread.
	thread, err := h.store.GetThread(ctx, owner(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "thread_not_found")
		return
	}
	messages, err := h.store.ListMessages(ctx, thread.ID)
	if err != nil {
		writeError(c, err, "thread_not_found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"thread": thread, "messages": messages})
}
