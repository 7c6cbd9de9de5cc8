package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appforecast "github.com/stocksense/backend/internal/application/forecast"
	"github.com/stocksense/backend/internal/domain/forecast"
)

// ForecastHandler serves the merged prediction view
type ForecastHandler struct {
	BaseHandler
	service *appforecast.Service
}

// NewForecastHandler creates a new ForecastHandler
func NewForecastHandler(service *appforecast.Service) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// RegisterRoutes registers forecast routes
func (h *ForecastHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/forecast", h.GetForecast)
}

// forecastQuery holds the forecast list query parameters. Limit has no
// upper bound; a page can span the whole catalog.
type forecastQuery struct {
	Page         int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit        int    `form:"limit,default=50" binding:"omitempty,min=1"`
	Filter       string `form:"filter"`
	ForceRefresh bool   `form:"force_refresh"`
}

// forecastResponse is the dashboard payload: one ranked page of the
// merged view with flat pagination fields
type forecastResponse struct {
	Success     bool                  `json:"success"`
	Page        int                   `json:"page"`
	Limit       int                   `json:"limit"`
	TotalItems  int                   `json:"total_items"`
	TotalPages  int                   `json:"total_pages"`
	Predictions []forecast.MergedItem `json:"predictions"`
}

// GetForecast returns a filtered, ranked page of item predictions
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	var query forecastQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	horizon, err := forecast.ParseHorizon(query.Filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.service.Query(c.Request.Context(), appforecast.QueryParams{
		Page:         query.Page,
		Limit:        query.Limit,
		Filter:       horizon,
		ForceRefresh: query.ForceRefresh,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, forecastResponse{
		Success:     true,
		Page:        result.Page,
		Limit:       result.Limit,
		TotalItems:  result.TotalItems,
		TotalPages:  result.TotalPages,
		Predictions: result.Items,
	})
}
