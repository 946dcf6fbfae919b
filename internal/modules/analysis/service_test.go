package analysis

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/art-beyond-sight/sight-core/internal/models"
)

// stubStore keeps records in memory and lets tests inject failures per
// operation.
type stubStore struct {
	recs      []*models.AnalysisRecord
	insertErr error
	findErr   error
	listErr   error
	searchErr error
	updateErr error
}

func (s *stubStore) Insert(_ context.Context, rec *models.AnalysisRecord) (string, error) {
	if s.insertErr != nil {
		return "", s.insertErr
	}
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	s.recs = append(s.recs, rec)
	return rec.ID.Hex(), nil
}

func (s *stubStore) FindByID(_ context.Context, id string) (*models.AnalysisRecord, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	for _, r := range s.recs {
		if r.ID == oid {
			return r, nil
		}
	}
	return nil, nil
}

func (s *stubStore) FindByKey(_ context.Context, imageName, analysisType string) (*models.AnalysisRecord, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, r := range s.recs {
		if r.ImageName == imageName && r.AnalysisType == analysisType {
			return r, nil
		}
	}
	return nil, nil
}

func (s *stubStore) List(_ context.Context, analysisType string, limit int64) ([]models.AnalysisRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := []models.AnalysisRecord{}
	for _, r := range s.recs {
		if analysisType != "" && r.AnalysisType != analysisType {
			continue
		}
		out = append(out, *r)
	}
	sortNewestFirst(out)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubStore) SearchByName(_ context.Context, pattern string) ([]models.AnalysisRecord, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	out := []models.AnalysisRecord{}
	needle := strings.ToLower(pattern)
	for _, r := range s.recs {
		if strings.Contains(strings.ToLower(r.ImageName), needle) {
			out = append(out, *r)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *stubStore) UpdateFields(_ context.Context, id string, set bson.M) (int64, error) {
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, err
	}
	for _, r := range s.recs {
		if r.ID == oid {
			applySet(r, set)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *stubStore) UpdateByKey(_ context.Context, imageName, analysisType string, set bson.M) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	for _, r := range s.recs {
		if r.ImageName == imageName && r.AnalysisType == analysisType {
			applySet(r, set)
			return nil
		}
	}
	return nil
}

func applySet(r *models.AnalysisRecord, set bson.M) {
	if v, ok := set["descriptions"].([]string); ok {
		r.Descriptions = v
	}
	if v, ok := set["metadata"].(map[string]interface{}); ok {
		r.Metadata = v
	}
	if v, ok := set["image_url"].(string); ok {
		r.ImageURL = v
	}
	if v, ok := set["image_base64"].(string); ok {
		r.ImageBase64 = v
	}
	if v, ok := set["updated_at"].(time.Time); ok {
		r.UpdatedAt = v
	}
}

func sortNewestFirst(recs []models.AnalysisRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
}

func newTestService(store Store) *Service {
	return NewService(store, zap.NewNop())
}

func TestCreatePersistsRecord(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store)

	id, rec := svc.Create(context.Background(), &AnalysisDTO{
		ImageName:    "Starry Night",
		AnalysisType: "museum",
	})

	require.Len(t, store.recs, 1)
	assert.Len(t, id, 24)
	assert.False(t, strings.HasPrefix(id, "mock_"))
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	assert.Equal(t, []string{}, rec.Descriptions)
	assert.Equal(t, map[string]interface{}{}, rec.Metadata)
}

func TestCreateFallsBackToMockIDWhenStoreDown(t *testing.T) {
	store := &stubStore{insertErr: errors.New("connection refused")}
	svc := newTestService(store)

	id, rec := svc.Create(context.Background(), &AnalysisDTO{
		ImageName:    "Starry Night",
		AnalysisType: "museum",
		Descriptions: []string{"swirling sky"},
	})

	assert.Empty(t, store.recs)
	require.True(t, strings.HasPrefix(id, "mock_"))
	_, err := strconv.ParseFloat(strings.TrimPrefix(id, "mock_"), 64)
	assert.NoError(t, err)
	assert.Equal(t, []string{"swirling sky"}, rec.Descriptions)
}

func TestUpsertInsertsThenUpdatesInPlace(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store)

	first, err := svc.Upsert(context.Background(), &AnalysisDTO{
		ImageName:    "Mona Lisa",
		AnalysisType: "museum",
		Descriptions: []string{"first pass"},
	})
	require.NoError(t, err)
	require.Len(t, store.recs, 1)
	firstCreated := first.CreatedAt

	time.Sleep(time.Millisecond)

	second, err := svc.Upsert(context.Background(), &AnalysisDTO{
		ImageName:    "Mona Lisa",
		AnalysisType: "museum",
		Descriptions: []string{"second pass"},
	})
	require.NoError(t, err)

	require.Len(t, store.recs, 1)
	assert.Equal(t, []string{"second pass"}, second.Descriptions)
	assert.Equal(t, firstCreated, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(firstCreated))
}

func TestUpsertKeyedByNameAndType(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store)

	_, err := svc.Upsert(context.Background(), &AnalysisDTO{ImageName: "Mona Lisa", AnalysisType: "museum"})
	require.NoError(t, err)
	_, err = svc.Upsert(context.Background(), &AnalysisDTO{ImageName: "Mona Lisa", AnalysisType: "text"})
	require.NoError(t, err)

	assert.Len(t, store.recs, 2)
}

func TestUpsertSurfacesStoreErrors(t *testing.T) {
	store := &stubStore{findErr: errors.New("server selection timeout")}
	svc := newTestService(store)

	_, err := svc.Upsert(context.Background(), &AnalysisDTO{ImageName: "x", AnalysisType: "y"})
	assert.Error(t, err)
}

func TestListZeroLimitSkipsStore(t *testing.T) {
	store := &stubStore{listErr: errors.New("should not be called")}
	svc := newTestService(store)

	recs, err := svc.List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestListFiltersAndSortsNewestFirst(t *testing.T) {
	base := time.Now().UTC()
	store := &stubStore{recs: []*models.AnalysisRecord{
		{ID: primitive.NewObjectID(), ImageName: "a", AnalysisType: "museum", CreatedAt: base.Add(-2 * time.Hour)},
		{ID: primitive.NewObjectID(), ImageName: "b", AnalysisType: "text", CreatedAt: base.Add(-time.Hour)},
		{ID: primitive.NewObjectID(), ImageName: "c", AnalysisType: "museum", CreatedAt: base},
	}}
	svc := newTestService(store)

	recs, err := svc.List(context.Background(), "", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].ImageName)
	assert.Equal(t, "b", recs[1].ImageName)

	museum, err := svc.List(context.Background(), "museum", 50)
	require.NoError(t, err)
	require.Len(t, museum, 2)
	assert.Equal(t, "c", museum[0].ImageName)
}

func TestSearchSwallowsStoreErrors(t *testing.T) {
	store := &stubStore{searchErr: errors.New("connection reset")}
	svc := newTestService(store)

	recs := svc.SearchByName(context.Background(), "mona")
	require.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	rec := &models.AnalysisRecord{
		ID:           primitive.NewObjectID(),
		ImageName:    "Mona Lisa",
		AnalysisType: "museum",
		Descriptions: []string{"original"},
		Metadata:     map[string]interface{}{"room": "711"},
		CreatedAt:    time.Now().UTC().Add(-time.Hour),
		UpdatedAt:    time.Now().UTC().Add(-time.Hour),
	}
	store := &stubStore{recs: []*models.AnalysisRecord{rec}}
	svc := newTestService(store)

	before := rec.UpdatedAt
	updated, err := svc.Update(context.Background(), rec.ID.Hex(), &UpdateAnalysisDTO{
		Metadata: map[string]interface{}{"room": "703"},
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, []string{"original"}, updated.Descriptions)
	assert.Equal(t, map[string]interface{}{"room": "703"}, updated.Metadata)
	assert.True(t, updated.UpdatedAt.After(before))
}

func TestUpdateMissingRecordReturnsNil(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store)

	rec, err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), &UpdateAnalysisDTO{})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestUpdateMalformedIDErrors(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store)

	_, err := svc.Update(context.Background(), "not-a-hex-id", &UpdateAnalysisDTO{})
	assert.Error(t, err)
}
