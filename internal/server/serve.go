// Package restapi exposes the orchestration layer over HTTP for the web
// client. Authentication is guest-mode: the caller identifies itself with an
// X-User-Id header and unidentified callers share the demo owner.
package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SamWheatley/rainier/internal/core"
	"github.com/SamWheatley/rainier/internal/plugins/ai"
	"github.com/SamWheatley/rainier/internal/plugins/db/researchdb"
)

// DefaultOwner is the shared guest identity.
const DefaultOwner = "demo"

const ownerKey = "ownerID"

// Deps is everything the handlers need, wired once in main.
type Deps struct {
	Registry     *ai.Registry
	Analyst      *core.Analyst
	Chatter      *core.Chatter
	Store        *researchdb.Store
	Lake         ObjectLister
	UploadPrefix string
	DefaultModel string
}

// New builds the router with all routes registered.
func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), ownerMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/models", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"models":  deps.Registry.Names(),
			"default": deps.DefaultModel,
		})
	})

	NewInsightsHandler(r, deps.Analyst, deps.Store)
	NewChatHandler(r, deps.Chatter, deps.Store)
	NewDocumentsHandler(r, deps.Store, deps.Lake, deps.UploadPrefix)
	return r
}

// Serve runs the router until the listener fails.
func Serve(addr string, deps Deps) error {
	return New(deps).Run(addr)
}

func ownerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetHeader("X-User-Id")
		if owner == "" {
			owner = DefaultOwner
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

func owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}
