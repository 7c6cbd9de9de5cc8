package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/infrastructure/ocr"
)

// LabelExtractor reads a product label photo. Satisfied by the OCR
// infrastructure client.
type LabelExtractor interface {
	Extract(ctx context.Context, imageBase64, mimeType string) (*ocr.Label, error)
}

// LabelHandler extracts product details from label photos
type LabelHandler struct {
	BaseHandler
	extractor LabelExtractor
}

// NewLabelHandler creates a new LabelHandler
func NewLabelHandler(extractor LabelExtractor) *LabelHandler {
	return &LabelHandler{extractor: extractor}
}

// RegisterRoutes registers label routes
func (h *LabelHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/labels/extract", h.Extract)
}

// extractLabelRequest carries a base64-encoded label photo
type extractLabelRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
	MimeType    string `json:"mime_type"`
}

// extractLabelResponse is the extracted label content
type extractLabelResponse struct {
	Name       string `json:"name"`
	ExpiryDate string `json:"expiry_date,omitempty"`
}

// Extract reads the product name and expiry date off a label photo
func (h *LabelHandler) Extract(c *gin.Context) {
	var req extractLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	label, err := h.extractor.Extract(c.Request.Context(), req.ImageBase64, req.MimeType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := extractLabelResponse{Name: label.Name}
	if label.ExpiryDate != nil {
		resp.ExpiryDate = label.ExpiryDate.Format(catalog.DayFormat)
	}
	h.Success(c, resp)
}
