package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/art-beyond-sight/sight-core/internal/models"
)

type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, log: logger}
}

// Create always hands a record back to the caller. When the store is down
// it fabricates a mock identifier and returns the record unpersisted.
func (s *Service) Create(ctx context.Context, dto *AnalysisDTO) (string, *models.AnalysisRecord) {
	now := time.Now().UTC()
	rec := dto.toRecord(now, now)

	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		s.log.Warn("analysis store unavailable, returning unpersisted record",
			zap.String("image_name", rec.ImageName),
			zap.Error(err))
		id = mockID()
	}
	return id, rec
}

func mockID() string {
	return fmt.Sprintf("mock_%.6f", float64(time.Now().UnixMicro())/1e6)
}

// Upsert keys on (image_name, analysis_type): at most one record holds a
// given pair after it returns. Store failures surface to the caller.
func (s *Service) Upsert(ctx context.Context, dto *AnalysisDTO) (*models.AnalysisRecord, error) {
	existing, err := s.store.FindByKey(ctx, dto.ImageName, dto.AnalysisType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if existing != nil {
		fresh := dto.toRecord(existing.CreatedAt, now)
		set := bson.M{
			"descriptions": fresh.Descriptions,
			"metadata":     fresh.Metadata,
			"image_url":    fresh.ImageURL,
			"image_base64": fresh.ImageBase64,
			"updated_at":   now,
		}
		if err := s.store.UpdateByKey(ctx, dto.ImageName, dto.AnalysisType, set); err != nil {
			return nil, err
		}
		return s.refetchByKey(ctx, dto.ImageName, dto.AnalysisType)
	}

	rec := dto.toRecord(now, now)
	if _, err := s.store.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return s.refetchByKey(ctx, dto.ImageName, dto.AnalysisType)
}

func (s *Service) refetchByKey(ctx context.Context, imageName, analysisType string) (*models.AnalysisRecord, error) {
	rec, err := s.store.FindByKey(ctx, imageName, analysisType)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.New("record not found after write")
	}
	return rec, nil
}

// List returns up to limit records, newest first. A non-positive limit
// short-circuits to an empty result without touching the store.
func (s *Service) List(ctx context.Context, analysisType string, limit int64) ([]models.AnalysisRecord, error) {
	if limit <= 0 {
		return []models.AnalysisRecord{}, nil
	}
	return s.store.List(ctx, analysisType, limit)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	return s.store.FindByID(ctx, id)
}

// SearchByName degrades to an empty result on any store failure.
func (s *Service) SearchByName(ctx context.Context, pattern string) []models.AnalysisRecord {
	recs, err := s.store.SearchByName(ctx, pattern)
	if err != nil {
		s.log.Warn("analysis search unavailable, returning empty result",
			zap.String("pattern", pattern),
			zap.Error(err))
		return []models.AnalysisRecord{}
	}
	return recs
}

// Update applies only the fields present in the DTO and refreshes
// updated_at. Returns (nil, nil) when no record matched the id.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateAnalysisDTO) (*models.AnalysisRecord, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if dto.Descriptions != nil {
		set["descriptions"] = dto.Descriptions
	}
	if dto.Metadata != nil {
		set["metadata"] = dto.Metadata
	}

	matched, err := s.store.UpdateFields(ctx, id, set)
	if err != nil {
		return nil, err
	}
	if matched == 0 {
		return nil, nil
	}
	return s.store.FindByID(ctx, id)
}
