package handler

import (
	"github.com/gin-gonic/gin"
	appsales "github.com/stocksense/backend/internal/application/sales"
)

// SalesHandler records sales into the daily ledger
type SalesHandler struct {
	BaseHandler
	service *appsales.Service
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(service *appsales.Service) *SalesHandler {
	return &SalesHandler{service: service}
}

// RegisterRoutes registers sales routes
func (h *SalesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sales", h.RecordSale)
}

// recordSaleRequest is the sale submission payload
type recordSaleRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// recordSaleResponse reports the recorded sale and resulting stock.
// NewStock is -1 when the ledger row was written but the stock level
// could not be updated.
type recordSaleResponse struct {
	ItemID       string `json:"item_id"`
	QtySold      int    `json:"qty_sold"`
	NewStock     int    `json:"new_stock"`
	StockUpdated bool   `json:"stock_updated"`
}

// RecordSale appends a sale and decrements stock
func (h *SalesHandler) RecordSale(c *gin.Context) {
	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.service.RecordSale(c.Request.Context(), req.ItemID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, recordSaleResponse{
		ItemID:       result.ItemID,
		QtySold:      result.QtySold,
		NewStock:     result.NewStock,
		StockUpdated: result.StockUpdated,
	})
}
