package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/domain/forecast"
	"github.com/stocksense/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from the model service (10MB)
const maxResponseSize = 10 * 1024 * 1024

// ModelClientConfig holds prediction model service settings
type ModelClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ModelClient calls the external prediction model service over HTTP
type ModelClient struct {
	config     ModelClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewModelClient creates a new ModelClient
func NewModelClient(cfg ModelClientConfig, logger *zap.Logger) *ModelClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type predictRequestItem struct {
	ItemID     string  `json:"item_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	StockLevel int     `json:"stock_level"`
	UnitPrice  float64 `json:"unit_price"`
}

type predictRequest struct {
	Items []predictRequestItem `json:"items"`
}

type predictResponseItem struct {
	ItemID          string  `json:"item_id"`
	Pred7d          float64 `json:"pred_7d"`
	Pred30d         float64 `json:"pred_30d"`
	Pred60d         float64 `json:"pred_60d"`
	Pred180d        float64 `json:"pred_180d"`
	DaysLeft        float64 `json:"days_left"`
	NeedRestock7d   bool    `json:"need_restock_7d"`
	NeedRestock30d  bool    `json:"need_restock_30d"`
	NeedRestock60d  bool    `json:"need_restock_60d"`
	NeedRestock180d bool    `json:"need_restock_180d"`
	RestockQty7d    float64 `json:"restock_qty_7d"`
	RestockQty30d   float64 `json:"restock_qty_30d"`
	RestockQty60d   float64 `json:"restock_qty_60d"`
	RestockQty180d  float64 `json:"restock_qty_180d"`
}

type predictResponse struct {
	Predictions []predictResponseItem `json:"predictions"`
}

// Predict sends the full item set to the model service and returns one
// prediction per item. Responses are matched to items by item_id, falling
// back to positional order when the service omits identifiers. Any
// transport or non-2xx failure aborts the whole call.
func (c *ModelClient) Predict(ctx context.Context, items []catalog.Item) ([]forecast.Prediction, error) {
	if len(items) == 0 {
		return []forecast.Prediction{}, nil
	}

	req := predictRequest{Items: make([]predictRequestItem, len(items))}
	for i, item := range items {
		req.Items[i] = predictRequestItem{
			ItemID:     item.ItemID,
			Name:       item.Name,
			Category:   item.Category,
			StockLevel: item.StockLevel,
			UnitPrice:  item.UnitPrice.InexactFloat64(),
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("model service returned non-2xx status",
			zap.Int("status", resp.StatusCode),
			zap.Int("item_count", len(items)))
		return nil, fmt.Errorf("%w: model service status %d", shared.ErrUpstream, resp.StatusCode)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read predict response: %w", err)
	}

	var parsed predictResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid model response: %v", shared.ErrUpstream, err)
	}

	byID := make(map[string]predictResponseItem, len(parsed.Predictions))
	for _, p := range parsed.Predictions {
		if p.ItemID != "" {
			byID[p.ItemID] = p
		}
	}

	predictions := make([]forecast.Prediction, 0, len(items))
	for i, item := range items {
		p, ok := byID[item.ItemID]
		if !ok && i < len(parsed.Predictions) && parsed.Predictions[i].ItemID == "" {
			p = parsed.Predictions[i]
			ok = true
		}
		if !ok {
			c.logger.Warn("model response missing item", zap.String("item_id", item.ItemID))
			continue
		}
		predictions = append(predictions, forecast.NewPrediction(item.ItemID, forecast.PredictionValues{
			Pred7d:          p.Pred7d,
			Pred30d:         p.Pred30d,
			Pred60d:         p.Pred60d,
			Pred180d:        p.Pred180d,
			DaysLeft:        p.DaysLeft,
			NeedRestock7d:   p.NeedRestock7d,
			NeedRestock30d:  p.NeedRestock30d,
			NeedRestock60d:  p.NeedRestock60d,
			NeedRestock180d: p.NeedRestock180d,
			RestockQty7d:    p.RestockQty7d,
			RestockQty30d:   p.RestockQty30d,
			RestockQty60d:   p.RestockQty60d,
			RestockQty180d:  p.RestockQty180d,
		}))
	}

	return predictions, nil
}

// Ensure ModelClient implements forecast.Predictor
var _ forecast.Predictor = (*ModelClient)(nil)
