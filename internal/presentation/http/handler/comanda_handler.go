package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-api/internal/application/service"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/pagination"
)

// ComandaHandler handles tab-related HTTP requests
type ComandaHandler struct {
	comandaService *service.ComandaService
	loc            *time.Location
}

// NewComandaHandler creates a new comanda handler
func NewComandaHandler(comandaService *service.ComandaService, loc *time.Location) *ComandaHandler {
	return &ComandaHandler{comandaService: comandaService, loc: loc}
}

// Open handles opening a new tab
func (h *ComandaHandler) Open(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req request.OpenComandaRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	comanda, err := h.comandaService.Open(c.Request.Context(), p, &service.OpenComandaInput{
		ClientID:   req.ClientID,
		ClientName: req.ClientName,
		Notes:      req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Comanda opened successfully", comanda)
}

// Get handles getting a single tab
func (h *ComandaHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "comanda")
	if !ok {
		return
	}

	comanda, err := h.comandaService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Comanda retrieved successfully", comanda)
}

// List handles listing tabs (supports both page-based and cursor-based pagination)
func (h *ComandaHandler) List(c *gin.Context) {
	status, err := statusQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	clientID, err := optionalUUIDQuery(c, "client_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	start, end, err := dateRange(c, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}

	if c.Query("cursor") != "" || c.Query("limit") != "" {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "15"))
		params := &repository.ComandaCursorFilterParams{
			Cursor: &pagination.CursorParams{
				Cursor:    c.Query("cursor"),
				Direction: pagination.CursorDirection(c.DefaultQuery("direction", "next")),
				Limit:     limit,
			},
			Search:    c.Query("search"),
			Status:    status,
			ClientID:  clientID,
			StartDate: start,
			EndDate:   end,
		}
		result, err := h.comandaService.ListWithCursor(c.Request.Context(), params)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.SuccessWithCursor(c, 200, "Comandas retrieved successfully", result)
		return
	}

	params := &repository.ComandaFilterParams{
		Pagination: pageParams(c),
		Search:     c.Query("search"),
		Status:     status,
		ClientID:   clientID,
		StartDate:  start,
		EndDate:    end,
	}
	result, err := h.comandaService.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Comandas retrieved successfully", result)
}

func statusQuery(c *gin.Context) (*enum.ComandaStatus, error) {
	s := c.Query("status")
	if s == "" {
		return nil, nil
	}
	status, err := enum.ParseComandaStatus(s)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}
	return &status, nil
}

// Summary handles the open/closed totals for a date range
func (h *ComandaHandler) Summary(c *gin.Context) {
	start, end, err := dateRange(c, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.comandaService.Summary(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Comanda summary retrieved successfully", summary)
}

// AddItem handles appending a line to a tab
func (h *ComandaHandler) AddItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "comanda")
	if !ok {
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	comanda, err := h.comandaService.AddItem(c.Request.Context(), p, id, &service.AddItemInput{
		Kind:           enum.ItemKind(req.Kind),
		ItemID:         req.ItemID,
		Description:    req.Description,
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		ProfessionalID: req.ProfessionalID,
		Coupon:         req.Coupon,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Item added successfully", comanda)
}

// UpdateQuantity handles changing the quantity of one line
func (h *ComandaHandler) UpdateQuantity(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "comanda")
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}

	var req request.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	comanda, err := h.comandaService.UpdateQuantity(c.Request.Context(), p, id, index, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item updated successfully", comanda)
}

// RemoveItem handles deleting one line
func (h *ComandaHandler) RemoveItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "comanda")
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}

	comanda, err := h.comandaService.RemoveItem(c.Request.Context(), p, id, index)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed successfully", comanda)
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "Invalid item index")
		return 0, false
	}
	return index, true
}

// Close handles checking out a tab
func (h *ComandaHandler) Close(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "comanda")
	if !ok {
		return
	}

	var req request.CloseComandaRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	comanda, err := h.comandaService.Close(c.Request.Context(), p, id, &service.CloseComandaInput{
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Comanda closed successfully", comanda)
}

// Cancel handles cancelling an open tab
func (h *ComandaHandler) Cancel(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "comanda")
	if !ok {
		return
	}

	comanda, err := h.comandaService.Cancel(c.Request.Context(), p, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Comanda cancelled successfully", comanda)
}
