package detect

import (
	"github.com/gin-gonic/gin"

	"github.com/art-beyond-sight/sight-core/internal/pkg/response"
)

type DetectArtworkDTO struct {
	ImageURL string `json:"image_url" binding:"required"`
}

type Handler struct {
	provider *Provider
}

func NewHandler(provider *Provider) *Handler {
	return &Handler{provider: provider}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/detect-artwork", h.detect)
}

// POST /detect-artwork
func (h *Handler) detect(c *gin.Context) {
	var dto DetectArtworkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, h.provider.Detect(c.Request.Context(), dto.ImageURL))
}
