package maintenance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumind/internal/shared/server/respond"
)

// Handler wires the dev-only maintenance routes.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches maintenance routes to the router group. Callers
// must only mount this group in non-production environments.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/files", h.listFiles)
	rg.POST("/wipe", h.wipe)
}

func (h *Handler) listFiles(c *gin.Context) {
	entries, err := h.Svc.Files(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list files", nil)
		return
	}
	respond.OK(c, gin.H{"files": entries})
}

func (h *Handler) wipe(c *gin.Context) {
	result, err := h.Svc.Wipe(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "wipe failed", nil)
		return
	}
	respond.OK(c, result)
}
