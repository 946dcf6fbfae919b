package analysis

import (
	"time"

	"github.com/art-beyond-sight/sight-core/internal/models"
)

type AnalysisDTO struct {
	ImageName    string                 `json:"image_name"    binding:"required"`
	AnalysisType string                 `json:"analysis_type" binding:"required"`
	Descriptions []string               `json:"descriptions"`
	Metadata     map[string]interface{} `json:"metadata"`
	ImageURL     string                 `json:"image_url"`
	ImageBase64  string                 `json:"image_base64"`
}

type UpdateAnalysisDTO struct {
	Descriptions []string               `json:"descriptions"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// analysisResponse is the wire shape of a record. Image payload fields
// never leave the service.
type analysisResponse struct {
	ID           string                 `json:"id"`
	ImageName    string                 `json:"image_name"`
	AnalysisType string                 `json:"analysis_type"`
	Descriptions []string               `json:"descriptions"`
	Metadata     map[string]interface{} `json:"metadata"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func (d *AnalysisDTO) toRecord(created, updated time.Time) *models.AnalysisRecord {
	descriptions := d.Descriptions
	if descriptions == nil {
		descriptions = []string{}
	}
	metadata := d.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return &models.AnalysisRecord{
		ImageName:    d.ImageName,
		AnalysisType: d.AnalysisType,
		Descriptions: descriptions,
		Metadata:     metadata,
		ImageURL:     d.ImageURL,
		ImageBase64:  d.ImageBase64,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
}

func toResponse(rec *models.AnalysisRecord) analysisResponse {
	return toResponseWithID(rec.ID.Hex(), rec)
}

func toResponseWithID(id string, rec *models.AnalysisRecord) analysisResponse {
	r := analysisResponse{
		ID:           id,
		ImageName:    rec.ImageName,
		AnalysisType: rec.AnalysisType,
		Descriptions: rec.Descriptions,
		Metadata:     rec.Metadata,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	if r.Descriptions == nil {
		r.Descriptions = []string{}
	}
	if r.Metadata == nil {
		r.Metadata = map[string]interface{}{}
	}
	return r
}

func toResponses(recs []models.AnalysisRecord) []analysisResponse {
	out := make([]analysisResponse, len(recs))
	for i := range recs {
		out[i] = toResponse(&recs[i])
	}
	return out
}
