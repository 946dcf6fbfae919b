package tempimage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/art-beyond-sight/sight-core/internal/pkg/response"
)

type UploadImageDTO struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

type Handler struct {
	dir     string
	baseURL string
	log     *zap.Logger
}

// NewHandler stores decoded uploads in dir and issues URLs under baseURL.
func NewHandler(dir, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{dir: dir, baseURL: baseURL, log: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload-temp-image", h.upload)
}

// RegisterStaticRoutes mounts the serving route at the engine root, outside
// the /api prefix.
func (h *Handler) RegisterStaticRoutes(r gin.IRoutes) {
	r.GET("/temp_images/:filename", h.serve)
}

// POST /upload-temp-image
func (h *Handler) upload(c *gin.Context) {
	var dto UploadImageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	imageURL, imageID, err := h.save(dto.ImageBase64)
	if err != nil {
		h.log.Warn("temp image upload failed", zap.Error(err))
		response.BadRequest(c, fmt.Sprintf("Failed to upload image: %v", err))
		return
	}

	h.log.Info("uploaded temp image", zap.String("image_url", imageURL))
	response.OK(c, gin.H{
		"image_url": imageURL,
		"image_id":  imageID,
	})
}

// GET /temp_images/:filename
func (h *Handler) serve(c *gin.Context) {
	name := safeName(c.Param("filename"))
	if name == "" {
		response.NotFound(c)
		return
	}

	path := filepath.Join(h.dir, name)
	if _, err := os.Stat(path); err != nil {
		response.NotFound(c)
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000")
	c.File(path)
}

// save decodes the payload and writes it under a fresh identifier. Every
// upload is named as a JPEG regardless of its actual encoding.
func (h *Handler) save(encoded string) (string, string, error) {
	data, err := decodeImagePayload(encoded)
	if err != nil {
		return "", "", err
	}

	imageID := uuid.NewString()
	filename := imageID + ".jpg"
	if err := os.WriteFile(filepath.Join(h.dir, filename), data, 0o644); err != nil {
		return "", "", err
	}
	return h.baseURL + "/temp_images/" + filename, imageID, nil
}

// decodeImagePayload strips an optional data-URL header and decodes the
// base64 body. Whitespace inside the payload is tolerated.
func decodeImagePayload(raw string) ([]byte, error) {
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		idx := strings.Index(raw, ",")
		if idx < 0 {
			return nil, errors.New("data URL is missing a comma separator")
		}
		payload = raw[idx+1:]
	}
	payload = strings.Map(dropSpace, payload)
	return base64.StdEncoding.DecodeString(payload)
}

func dropSpace(r rune) rune {
	switch r {
	case ' ', '\n', '\r', '\t':
		return -1
	}
	return r
}

func safeName(raw string) string {
	name := filepath.Base(strings.TrimSpace(raw))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	if !isSafeSegment(name) {
		return ""
	}
	return name
}

func isSafeSegment(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			continue
		}
		return false
	}
	return true
}
