package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	appcatalog "github.com/stocksense/backend/internal/application/catalog"
	"github.com/stocksense/backend/internal/domain/catalog"
)

// InventoryHandler handles stock intake and catalog queries
type InventoryHandler struct {
	BaseHandler
	intakeService *appcatalog.IntakeService
	itemService   *appcatalog.ItemService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(intakeService *appcatalog.IntakeService, itemService *appcatalog.ItemService) *InventoryHandler {
	return &InventoryHandler{
		intakeService: intakeService,
		itemService:   itemService,
	}
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inventory := rg.Group("/inventory")
	{
		inventory.POST("/intake", h.Intake)
		inventory.GET("/items", h.ListItems)
		inventory.GET("/items/:id", h.GetItem)
	}
}

// intakeRequest is the stock intake payload. ExpiryDate uses the
// day-granularity date layout; omitted cost fields leave existing
// values untouched.
type intakeRequest struct {
	Name                  string   `json:"name" binding:"required"`
	Category              string   `json:"category"`
	Quantity              int      `json:"quantity" binding:"required,min=1"`
	ExpiryDate            string   `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	UnitPrice             *float64 `json:"unit_price" binding:"omitempty,min=0"`
	HoldingCostPerUnitDay *float64 `json:"holding_cost_per_unit_day" binding:"omitempty,min=0"`
	HandlingCostPerUnit   *float64 `json:"handling_cost_per_unit" binding:"omitempty,min=0"`
}

// costUpdate converts the optional cost fields to the domain update
func (r intakeRequest) costUpdate() catalog.CostUpdate {
	var costs catalog.CostUpdate
	if r.UnitPrice != nil {
		v := decimal.NewFromFloat(*r.UnitPrice)
		costs.UnitPrice = &v
	}
	if r.HoldingCostPerUnitDay != nil {
		v := decimal.NewFromFloat(*r.HoldingCostPerUnitDay)
		costs.HoldingCostPerUnitDay = &v
	}
	if r.HandlingCostPerUnit != nil {
		v := decimal.NewFromFloat(*r.HandlingCostPerUnit)
		costs.HandlingCostPerUnit = &v
	}
	return costs
}

// intakeResponse reports the item affected by an intake
type intakeResponse struct {
	Item    *catalog.Item `json:"item"`
	Created bool          `json:"created"`
}

// Intake receives stock: it restocks a known item name or registers a new one
func (h *InventoryHandler) Intake(c *gin.Context) {
	var req intakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var expiry *time.Time
	if req.ExpiryDate != "" {
		t, err := time.Parse(catalog.DayFormat, req.ExpiryDate)
		if err != nil {
			h.BadRequest(c, "Invalid expiry_date, expected YYYY-MM-DD")
			return
		}
		expiry = &t
	}

	result, err := h.intakeService.Intake(c.Request.Context(), appcatalog.IntakeParams{
		Name:       req.Name,
		Category:   req.Category,
		Quantity:   req.Quantity,
		ExpiryDate: expiry,
		Costs:      req.costUpdate(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := intakeResponse{Item: result.Item, Created: result.Created}
	if result.Created {
		h.Created(c, resp)
		return
	}
	h.Success(c, resp)
}

// listItemsQuery holds the item list query parameters
type listItemsQuery struct {
	Page  int `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int `form:"limit,default=50" binding:"omitempty,min=1,max=500"`
}

// ListItems returns one page of catalog items
func (h *InventoryHandler) ListItems(c *gin.Context) {
	var query listItemsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.itemService.List(c.Request.Context(), query.Page, query.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.TotalItems, result.Page, result.Limit)
}

// GetItem returns one catalog item by identifier
func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.itemService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}
