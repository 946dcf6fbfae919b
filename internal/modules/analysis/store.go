package analysis

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/art-beyond-sight/sight-core/internal/models"
)

// Store is the persistence surface for analysis records. Finds return
// (nil, nil) when no document matches.
type Store interface {
	Insert(ctx context.Context, rec *models.AnalysisRecord) (string, error)
	FindByID(ctx context.Context, id string) (*models.AnalysisRecord, error)
	FindByKey(ctx context.Context, imageName, analysisType string) (*models.AnalysisRecord, error)
	List(ctx context.Context, analysisType string, limit int64) ([]models.AnalysisRecord, error)
	SearchByName(ctx context.Context, pattern string) ([]models.AnalysisRecord, error)
	UpdateFields(ctx context.Context, id string, set bson.M) (int64, error)
	UpdateByKey(ctx context.Context, imageName, analysisType string, set bson.M) error
}

type mongoStore struct {
	coll *mongo.Collection
}

func NewStore(coll *mongo.Collection) Store {
	return &mongoStore{coll: coll}
}

func (m *mongoStore) Insert(ctx context.Context, rec *models.AnalysisRecord) (string, error) {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if _, err := m.coll.InsertOne(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID.Hex(), nil
}

func (m *mongoStore) FindByID(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	return m.findOne(ctx, bson.M{"_id": oid})
}

func (m *mongoStore) FindByKey(ctx context.Context, imageName, analysisType string) (*models.AnalysisRecord, error) {
	return m.findOne(ctx, bson.M{"image_name": imageName, "analysis_type": analysisType})
}

func (m *mongoStore) findOne(ctx context.Context, filter bson.M) (*models.AnalysisRecord, error) {
	var rec models.AnalysisRecord
	err := m.coll.FindOne(ctx, filter).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *mongoStore) List(ctx context.Context, analysisType string, limit int64) ([]models.AnalysisRecord, error) {
	filter := bson.M{}
	if analysisType != "" {
		filter["analysis_type"] = analysisType
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	return m.findAll(ctx, filter, opts)
}

func (m *mongoStore) SearchByName(ctx context.Context, pattern string) ([]models.AnalysisRecord, error) {
	filter := bson.M{"image_name": primitive.Regex{Pattern: pattern, Options: "i"}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return m.findAll(ctx, filter, opts)
}

func (m *mongoStore) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.AnalysisRecord, error) {
	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	recs := []models.AnalysisRecord{}
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (m *mongoStore) UpdateFields(ctx context.Context, id string, set bson.M) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, err
	}
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (m *mongoStore) UpdateByKey(ctx context.Context, imageName, analysisType string, set bson.M) error {
	filter := bson.M{"image_name": imageName, "analysis_type": analysisType}
	_, err := m.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	return err
}
