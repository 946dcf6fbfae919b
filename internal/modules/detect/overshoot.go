package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/art-beyond-sight/sight-core/internal/config"
)

const (
	detectTimeout     = 15 * time.Second
	defaultConfidence = 50
)

const detectPrompt = `Identify the artwork in this image. Respond with JSON:
{
  "title": "exact artwork name or empty string if unknown",
  "description": "brief description of what you see",
  "confidence": 0-100
}`

// detectionResult is the shape the vision model is prompted to answer
// with. Confidence stays a pointer so an absent field can default.
type detectionResult struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Confidence  *float64 `json:"confidence"`
}

type detectResponse struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// Provider calls the Overshoot vision endpoint and normalizes whatever
// comes back into a detectResponse.
type Provider struct {
	cfg    config.DetectionRuntimeConfig
	client *http.Client
	log    *zap.Logger
}

func NewProvider(cfg config.DetectionRuntimeConfig, logger *zap.Logger) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: detectTimeout},
		log:    logger,
	}
}

// Detect never fails outward: a missing key, transport error, bad status
// or unparsable reply all collapse into an empty-title result, which the
// caller reads as "no confident detection".
func (p *Provider) Detect(ctx context.Context, imageURL string) detectResponse {
	key := p.cfg.KeyValue()
	if key == "" {
		p.log.Warn("detection api key not configured")
		return unavailableResult()
	}

	payload, err := json.Marshal(map[string]string{
		"image_url": imageURL,
		"prompt":    detectPrompt,
		"model":     p.cfg.Model,
	})
	if err != nil {
		return unavailableResult()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		p.log.Warn("detection request could not be built", zap.Error(err))
		return unavailableResult()
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn("detection request failed", zap.Error(err))
		return unavailableResult()
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		p.log.Warn("detection upstream returned error status", zap.Int("status", resp.StatusCode))
		return unavailableResult()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.log.Warn("detection reply could not be read", zap.Error(err))
		return unavailableResult()
	}
	return parseDetectionReply(body)
}

// parseDetectionReply applies the lenient parse chain: prefer the reply's
// "result" field, then "content", then treat the reply as opaque. String
// content may embed a JSON object inside free text.
func parseDetectionReply(body []byte) detectResponse {
	var reply struct {
		Result  json.RawMessage `json:"result"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return unavailableResult()
	}

	raw := reply.Result
	if raw == nil {
		raw = reply.Content
	}
	if raw == nil {
		raw = json.RawMessage(`"{}"`)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return parseTextReply(text, body)
	}

	var res detectionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return rawReplyResult(body)
	}
	return res.normalize()
}

func parseTextReply(text string, body []byte) detectResponse {
	fragment, ok := extractBraceFragment(text)
	if !ok {
		return detectResponse{Description: text, Confidence: defaultConfidence}
	}
	var res detectionResult
	if err := json.Unmarshal([]byte(fragment), &res); err != nil {
		return rawReplyResult(body)
	}
	return res.normalize()
}

// extractBraceFragment returns the first {...} span with at least one
// character between the braces.
func extractBraceFragment(s string) (string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		j := strings.IndexByte(s[i+1:], '}')
		if j < 0 {
			return "", false
		}
		if j == 0 {
			continue
		}
		return s[i : i+j+2], true
	}
	return "", false
}

func (r detectionResult) normalize() detectResponse {
	confidence := float64(defaultConfidence)
	if r.Confidence != nil {
		confidence = *r.Confidence
	}
	return detectResponse{
		Title:       r.Title,
		Description: r.Description,
		Confidence:  confidence,
	}
}

func rawReplyResult(body []byte) detectResponse {
	return detectResponse{Description: string(body), Confidence: 0}
}

func unavailableResult() detectResponse {
	return detectResponse{Description: "Detection unavailable", Confidence: 0}
}
