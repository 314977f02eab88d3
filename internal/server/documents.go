package restapi

import (
	"context"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/SamWheatley/rainier/internal/domain"
	"github.com/SamWheatley/rainier/internal/i18n"
	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/plugins/db/researchdb"
	"github.com/SamWheatley/rainier/internal/plugins/storage/lake"
)

// ObjectLister is the slice of the lake loader the sync route needs.
type ObjectLister interface {
	List(ctx context.Context, prefix string) ([]lake.ObjectInfo, error)
}

type DocumentsHandler struct {
	store  *researchdb.Store
	lake   ObjectLister
	prefix string
}

func NewDocumentsHandler(r *gin.Engine, store *researchdb.Store, lister ObjectLister, prefix string) *DocumentsHandler {
	handler := &DocumentsHandler{store: store, lake: lister, prefix: prefix}
	r.GET("/api/documents", handler.List)
	r.POST("/api/documents/sync", handler.Sync)
	return handler
}

type documentView struct {
	StorageKey string `json:"storageKey"`
	Title      string `json:"title"`
	Size       int64  `json:"size"`
	Shared     bool   `json:"shared"`
}

func (h *DocumentsHandler) List(c *gin.Context) {
	docs, err := h.store.ListDocuments(c.Request.Context(), owner(c))
	if err != nil {
		writeError(c, err, "session_not_found")
		return
	}
	views := lo.Map(docs, func(d domain.Document, _ int) documentView {
		return documentView{StorageKey: d.StorageKey, Title: d.Title, Size: d.Size, Shared: d.Shared}
	})
	c.JSON(http.StatusOK, gin.H{"documents": views})
}

// Sync registers the bucket listing as remote document metadata. The data
// lake is the team corpus, so synced objects are shared.
func (h *DocumentsHandler) Sync(c *gin.Context) {
	ctx := c.Request.Context()
	infos, err := h.lake.List(ctx, h.prefix)
	if err != nil {
		debuglog.Log("document sync failed: %v\n", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": i18n.T("document_sync_failed")})
		return
	}

	synced := 0
	for _, info := range infos {
		if info.Size == 0 {
			// Prefix placeholders from console uploads.
			continue
		}
		doc := domain.Document{
			StorageKey: info.Key,
			Title:      path.Base(info.Key),
			Size:       info.Size,
			Shared:     true,
		}
		if err := h.store.UpsertDocument(ctx, owner(c), doc); err != nil {
			writeError(c, err, "session_not_found")
			return
		}
		synced++
	}
	c.JSON(http.StatusOK, gin.H{"synced": synced})
}
