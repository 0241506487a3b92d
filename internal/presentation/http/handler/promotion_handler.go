package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-api/internal/application/service"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salon-api/pkg/apperror"
)

// PromotionHandler handles promotion HTTP requests
type PromotionHandler struct {
	pricingService *service.PricingService
	catalogService *service.CatalogService
	loc            *time.Location
}

// NewPromotionHandler creates a new promotion handler
func NewPromotionHandler(pricingService *service.PricingService, catalogService *service.CatalogService, loc *time.Location) *PromotionHandler {
	return &PromotionHandler{
		pricingService: pricingService,
		catalogService: catalogService,
		loc:            loc,
	}
}

// List handles listing promotions
func (h *PromotionHandler) List(c *gin.Context) {
	result, err := h.pricingService.ListPromotions(c.Request.Context(), &repository.PromotionFilterParams{
		Pagination: pageParams(c),
		Search:     c.Query("search"),
		ActiveOnly: boolQuery(c, "active_only", false),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Promotions retrieved successfully", result)
}

// Get handles getting a single promotion
func (h *PromotionHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "promotion")
	if !ok {
		return
	}
	promotion, err := h.pricingService.GetPromotion(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Promotion retrieved successfully", promotion)
}

// Create handles creating a promotion
func (h *PromotionHandler) Create(c *gin.Context) {
	var req request.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	start, err := time.ParseInLocation(dateLayout, req.StartDate, h.loc)
	if err != nil {
		response.BadRequest(c, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.ParseInLocation(dateLayout, req.EndDate, h.loc)
	if err != nil {
		response.BadRequest(c, "end_date must be YYYY-MM-DD")
		return
	}

	promotion, err := h.pricingService.CreatePromotion(c.Request.Context(), &service.CreatePromotionInput{
		Name:                   req.Name,
		Description:            req.Description,
		Kind:                   enum.DiscountKind(req.Kind),
		Value:                  req.Value,
		Scope:                  enum.PromotionScope(req.Scope),
		StartDate:              start,
		EndDate:                end,
		DaysOfWeek:             req.DaysOfWeek,
		StartTime:              req.StartTime,
		EndTime:                req.EndTime,
		MaxUses:                req.MaxUses,
		MaxUsesPerClient:       req.MaxUsesPerClient,
		AllowsCombining:        req.AllowsCombining,
		CommissionOnDiscounted: req.CommissionOnDiscounted,
		CouponCode:             req.CouponCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Promotion created successfully", promotion)
}

// SetActive handles switching a promotion on or off
func (h *PromotionHandler) SetActive(c *gin.Context) {
	id, ok := uuidParam(c, "id", "promotion")
	if !ok {
		return
	}

	var req request.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	promotion, err := h.pricingService.SetPromotionActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Promotion updated successfully", promotion)
}

// Quote prices one unit against the promotions active right now.
// The amount comes from the catalog when item_id is given.
func (h *PromotionHandler) Quote(c *gin.Context) {
	var req request.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	kind := enum.ItemKind(req.Kind)
	input := &service.QuoteInput{
		Kind:     kind,
		ClientID: req.ClientID,
		Coupon:   req.Coupon,
	}
	switch {
	case req.Amount != nil:
		input.Amount = *req.Amount
	case req.ItemID != nil:
		price, err := h.catalogService.Price(c.Request.Context(), kind, *req.ItemID)
		if err != nil {
			response.Error(c, err)
			return
		}
		input.Amount = price.UnitPrice
	default:
		response.Error(c, apperror.NewBadRequestError("amount or item_id is required"))
		return
	}

	quote, err := h.pricingService.Quote(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Price quoted successfully", quote)
}
