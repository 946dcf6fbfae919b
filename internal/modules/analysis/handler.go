package analysis

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/art-beyond-sight/sight-core/internal/pkg/response"
)

const defaultListLimit = 50

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/image-analysis")

	g.POST("", h.create)
	g.POST("/upsert", h.upsert)

	g.GET("", h.list)
	g.GET("/search/:image_name", h.search)
	g.GET("/:id", h.get)

	g.PUT("/:id", h.update)
}

// POST /image-analysis
func (h *Handler) create(c *gin.Context) {
	var dto AnalysisDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	id, rec := h.svc.Create(c.Request.Context(), &dto)
	response.OK(c, toResponseWithID(id, rec))
}

// POST /image-analysis/upsert
func (h *Handler) upsert(c *gin.Context) {
	var dto AnalysisDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	rec, err := h.svc.Upsert(c.Request.Context(), &dto)
	if err != nil {
		response.InternalErrorMsg(c, fmt.Sprintf("Failed to save or update analysis: %v", err))
		return
	}
	response.OK(c, toResponse(rec))
}

// GET /image-analysis?analysis_type=museum&limit=50
func (h *Handler) list(c *gin.Context) {
	limit := int64(defaultListLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "limit must be an integer")
			return
		}
		limit = parsed
	}

	recs, err := h.svc.List(c.Request.Context(), c.Query("analysis_type"), limit)
	if err != nil {
		response.InternalErrorMsg(c, fmt.Sprintf("Failed to retrieve analyses: %v", err))
		return
	}
	response.OK(c, toResponses(recs))
}

// GET /image-analysis/:id
func (h *Handler) get(c *gin.Context) {
	rec, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalErrorMsg(c, fmt.Sprintf("Failed to retrieve analysis: %v", err))
		return
	}
	if rec == nil {
		response.NotFoundMsg(c, "Analysis not found")
		return
	}
	response.OK(c, toResponse(rec))
}

// GET /image-analysis/search/:image_name
func (h *Handler) search(c *gin.Context) {
	recs := h.svc.SearchByName(c.Request.Context(), c.Param("image_name"))
	response.OK(c, toResponses(recs))
}

// PUT /image-analysis/:id
func (h *Handler) update(c *gin.Context) {
	var dto UpdateAnalysisDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	rec, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		response.InternalErrorMsg(c, fmt.Sprintf("Failed to update analysis: %v", err))
		return
	}
	if rec == nil {
		response.NotFoundMsg(c, "Analysis not found")
		return
	}
	response.OK(c, toResponse(rec))
}
