package handler

import (
	"github.com/gin-gonic/gin"
	appdemand "github.com/stocksense/backend/internal/application/demand"
)

// DemandHandler exposes on-demand feature recomputation
type DemandHandler struct {
	BaseHandler
	service *appdemand.Service
}

// NewDemandHandler creates a new DemandHandler
func NewDemandHandler(service *appdemand.Service) *DemandHandler {
	return &DemandHandler{service: service}
}

// RegisterRoutes registers demand routes
func (h *DemandHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/demand/update", h.Update)
}

// demandUpdateResponse reports a completed recomputation pass
type demandUpdateResponse struct {
	ItemsProcessed int `json:"items_processed"`
}

// Update synchronously recomputes demand features for all items
func (h *DemandHandler) Update(c *gin.Context) {
	count, err := h.service.Recompute(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, demandUpdateResponse{ItemsProcessed: count})
}
