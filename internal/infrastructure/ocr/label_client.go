package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stocksense/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from the vision API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// labelPrompt instructs the vision model to answer in a fixed two-field
// format that extractLabel can parse without a schema.
const labelPrompt = `Look at this product label image. Reply with exactly one line in the format:
[product name],[expiry date as YYYY-MM-DD or none]
Do not add any other text.`

// Label is the result of reading a product label photo
type Label struct {
	Name       string
	ExpiryDate *time.Time
}

// LabelClientConfig holds vision API settings
type LabelClientConfig struct {
	APIKey        string
	Model         string
	FallbackModel string
	BaseURL       string
	Timeout       time.Duration
}

// LabelClient extracts product name and expiry date from label photos
// using a hosted vision model, with a cheaper fallback model when the
// primary is unavailable.
type LabelClient struct {
	config     LabelClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewLabelClient creates a new LabelClient
func NewLabelClient(cfg LabelClientConfig, logger *zap.Logger) *LabelClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LabelClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type generatePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *generateInlineData `json:"inline_data,omitempty"`
}

type generateInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Extract reads a product label photo and returns the product name and
// expiry date. imageBase64 is the raw photo encoded as base64. The
// fallback model is tried when the primary model call fails.
func (c *LabelClient) Extract(ctx context.Context, imageBase64, mimeType string) (*Label, error) {
	if c.config.APIKey == "" {
		return nil, shared.NewDomainError("LABEL_NOT_CONFIGURED", "label extraction API key is not configured")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	label, err := c.callModel(ctx, c.config.Model, imageBase64, mimeType)
	if err == nil {
		return label, nil
	}
	if c.config.FallbackModel == "" || c.config.FallbackModel == c.config.Model {
		return nil, err
	}

	c.logger.Warn("primary label model failed, trying fallback",
		zap.String("model", c.config.Model),
		zap.String("fallback", c.config.FallbackModel),
		zap.Error(err))
	return c.callModel(ctx, c.config.FallbackModel, imageBase64, mimeType)
}

func (c *LabelClient) callModel(ctx context.Context, model, imageBase64, mimeType string) (*Label, error) {
	reqBody := generateRequest{
		Contents: []generateContent{{
			Parts: []generatePart{
				{Text: labelPrompt},
				{InlineData: &generateInlineData{MimeType: mimeType, Data: imageBase64}},
			},
		}},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal label request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.config.BaseURL, model, c.config.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build label request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: vision API status %d", shared.ErrUpstream, resp.StatusCode)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read label response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid vision API response: %v", shared.ErrUpstream, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: vision API returned no candidates", shared.ErrUpstream)
	}

	return extractLabel(parsed.Candidates[0].Content.Parts[0].Text)
}

// extractLabel parses the model's "[name],[expiry]" answer
func extractLabel(text string) (*Label, error) {
	line := strings.TrimSpace(text)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}

	idx := strings.LastIndexByte(line, ',')
	if idx < 0 {
		if line == "" {
			return nil, shared.NewDomainError("LABEL_UNREADABLE", "could not read product label")
		}
		return &Label{Name: line}, nil
	}

	name := strings.TrimSpace(line[:idx])
	rawDate := strings.TrimSpace(line[idx+1:])
	if name == "" {
		return nil, shared.NewDomainError("LABEL_UNREADABLE", "could not read product name from label")
	}

	label := &Label{Name: name}
	if rawDate != "" && !strings.EqualFold(rawDate, "none") {
		if t, err := time.Parse("2006-01-02", rawDate); err == nil {
			label.ExpiryDate = &t
		}
	}
	return label, nil
}
