package detect

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/art-beyond-sight/sight-core/internal/config"
)

func newDetectRouter(endpoint, key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	provider := NewProvider(config.DetectionRuntimeConfig{
		APIKey:   key,
		Endpoint: endpoint,
		Model:    "Qwen/Qwen3-VL-30B-A3B-Instruct",
	}, zap.NewNop())
	NewHandler(provider).RegisterRoutes(r.Group("/api"))
	return r
}

func postDetect(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/detect-artwork", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeDetection(t *testing.T, w *httptest.ResponseRecorder) detectResponse {
	t.Helper()
	var out detectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func upstreamReturning(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDetectParsesStructuredResult(t *testing.T) {
	srv := upstreamReturning(t, http.StatusOK,
		`{"result":{"title":"Mona Lisa","description":"a portrait","confidence":92}}`)
	r := newDetectRouter(srv.URL, "test-key")

	w := postDetect(t, r, `{"image_url":"http://localhost:8000/temp_images/a.jpg"}`)
	require.Equal(t, http.StatusOK, w.Code)

	out := decodeDetection(t, w)
	assert.Equal(t, "Mona Lisa", out.Title)
	assert.Equal(t, "a portrait", out.Description)
	assert.Equal(t, float64(92), out.Confidence)
}

func TestDetectExtractsJSONFromFreeText(t *testing.T) {
	srv := upstreamReturning(t, http.StatusOK,
		`{"result":"Sure! Here you go: {\"title\":\"Starry Night\",\"confidence\":88} hope that helps"}`)
	r := newDetectRouter(srv.URL, "test-key")

	out := decodeDetection(t, postDetect(t, r, `{"image_url":"http://x/a.jpg"}`))
	assert.Equal(t, "Starry Night", out.Title)
	assert.Equal(t, float64(88), out.Confidence)
}

func TestDetectDefaultsMissingConfidence(t *testing.T) {
	srv := upstreamReturning(t, http.StatusOK,
		`{"result":"{\"title\":\"The Scream\",\"description\":\"figure on a bridge\"}"}`)
	r := newDetectRouter(srv.URL, "test-key")

	out := decodeDetection(t, postDetect(t, r, `{"image_url":"http://x/a.jpg"}`))
	assert.Equal(t, "The Scream", out.Title)
	assert.Equal(t, float64(50), out.Confidence)
}

func TestDetectTreatsPlainTextAsDescription(t *testing.T) {
	srv := upstreamReturning(t, http.StatusOK, `{"result":"just a painting of a dog"}`)
	r := newDetectRouter(srv.URL, "test-key")

	out := decodeDetection(t, postDetect(t, r, `{"image_url":"http://x/a.jpg"}`))
	assert.Empty(t, out.Title)
	assert.Equal(t, "just a painting of a dog", out.Description)
	assert.Equal(t, float64(50), out.Confidence)
}

func TestDetectUsesContentWhenResultAbsent(t *testing.T) {
	srv := upstreamReturning(t, http.StatusOK,
		`{"content":{"title":"Guernica","description":"war scene","confidence":75}}`)
	r := newDetectRouter(srv.URL, "test-key")

	out := decodeDetection(t, postDetect(t, r, `{"image_url":"http://x/a.jpg"}`))
	assert.Equal(t, "Guernica", out.Title)
	assert.Equal(t, float64(75), out.Confidence)
}

func TestDetectEmptyReplyFallsThrough(t *testing.T) {
	srv := upstreamReturning(t, http.StatusOK, `{}`)
	r := newDetectRouter(srv.URL, "test-key")

	out := decodeDetection(t, postDetect(t, r, `{"image_url":"http://x/a.jpg"}`))
	assert.Empty(t, out.Title)
	assert.Equal(t, "{}", out.Description)
	assert.Equal(t, float64(50), out.Confidence)
}

func TestDetectBrokenFragmentReturnsRawBody(t *testing.T) {
	body := `{"result":"pre {broken json} post"}`
	srv := upstreamReturning(t, http.StatusOK, body)
	r := newDetectRouter(srv.URL, "test-key")

	out := decodeDetection(t, postDetect(t, r, `{"image_url":"http://x/a.jpg"}`))
	assert.Empty(t, out.Title)
	assert.Equal(t, body, out.Description)
	assert.Equal(t, float64(0), out.Confidence)
}

func TestDetectMissingKeySkipsUpstream(t *testing.T) {
	t.Setenv("OVERSHOOT_API_KEY", "")
	t.Setenv("NEXT_PUBLIC_OVERSHOOT_API_KEY", "")

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	t.Cleanup(srv.Close)
	r := newDetectRouter(srv.URL, "")

	out := decodeDetection(t, postDetect(t, r, `{"image_url":"http://x/a.jpg"}`))
	assert.Empty(t, out.Title)
	assert.Equal(t, "Detection unavailable", out.Description)
	assert.Equal(t, float64(0), out.Confidence)
	assert.Zero(t, calls)
}

func TestDetectUpstreamErrorStatus(t *testing.T) {
	srv := upstreamReturning(t, http.StatusBadGateway, `{"error":"overloaded"}`)
	r := newDetectRouter(srv.URL, "test-key")

	out := decodeDetection(t, postDetect(t, r, `{"image_url":"http://x/a.jpg"}`))
	assert.Equal(t, "Detection unavailable", out.Description)
	assert.Equal(t, float64(0), out.Confidence)
}

func TestDetectUnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	r := newDetectRouter(url, "test-key")

	out := decodeDetection(t, postDetect(t, r, `{"image_url":"http://x/a.jpg"}`))
	assert.Equal(t, "Detection unavailable", out.Description)
}

func TestDetectNonJSONUpstreamBody(t *testing.T) {
	srv := upstreamReturning(t, http.StatusOK, "oops, plain text")
	r := newDetectRouter(srv.URL, "test-key")

	out := decodeDetection(t, postDetect(t, r, `{"image_url":"http://x/a.jpg"}`))
	assert.Equal(t, "Detection unavailable", out.Description)
	assert.Equal(t, float64(0), out.Confidence)
}

func TestDetectSendsAuthorizedPayload(t *testing.T) {
	var (
		gotAuth string
		gotBody map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"result":"{\"title\":\"ok\"}"}`)
	}))
	t.Cleanup(srv.Close)
	r := newDetectRouter(srv.URL, "secret-key")

	postDetect(t, r, `{"image_url":"http://x/a.jpg"}`)

	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "http://x/a.jpg", gotBody["image_url"])
	assert.Equal(t, "Qwen/Qwen3-VL-30B-A3B-Instruct", gotBody["model"])
	assert.Contains(t, gotBody["prompt"], "Identify the artwork")
}

func TestDetectRequiresImageURL(t *testing.T) {
	r := newDetectRouter("http://127.0.0.1:0", "test-key")

	w := postDetect(t, r, `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "detail")
}

func TestExtractBraceFragment(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
		ok   bool
	}{
		{`text {"t":1} more`, `{"t":1}`, true},
		{`{} then {"a":2}`, `{"a":2}`, true},
		{`{{"a":1}`, `{{"a":1}`, true},
		{`no braces here`, "", false},
		{`{unclosed`, "", false},
		{`{}`, "", false},
	} {
		got, ok := extractBraceFragment(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
