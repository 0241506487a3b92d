package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-api/internal/application/service"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/response"
)

// ClientHandler handles client and payment method HTTP requests
type ClientHandler struct {
	clientService        *service.ClientService
	paymentMethodService *service.PaymentMethodService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService, paymentMethodService *service.PaymentMethodService) *ClientHandler {
	return &ClientHandler{
		clientService:        clientService,
		paymentMethodService: paymentMethodService,
	}
}

// List handles listing clients
func (h *ClientHandler) List(c *gin.Context) {
	result, err := h.clientService.List(c.Request.Context(), pageParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Clients retrieved successfully", result)
}

// Get handles getting a single client
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "client")
	if !ok {
		return
	}
	client, err := h.clientService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Client retrieved successfully", client)
}

// Create handles creating a client
func (h *ClientHandler) Create(c *gin.Context) {
	var req request.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), &service.CreateClientInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Client created successfully", client)
}

// ListPaymentMethods handles listing payment methods
func (h *ClientHandler) ListPaymentMethods(c *gin.Context) {
	methods, err := h.paymentMethodService.List(c.Request.Context(), boolQuery(c, "active_only", true))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment methods retrieved successfully", methods)
}

// CreatePaymentMethod handles creating a payment method
func (h *ClientHandler) CreatePaymentMethod(c *gin.Context) {
	var req request.CreatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	method, err := h.paymentMethodService.Create(c.Request.Context(), &service.CreatePaymentMethodInput{
		Name:             req.Name,
		SurchargePercent: req.SurchargePercent,
		SurchargeFixed:   req.SurchargeFixed,
		DiscountPercent:  req.DiscountPercent,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Payment method created successfully", method)
}

// QuotePaymentMethod shows what an amount costs with one payment method
func (h *ClientHandler) QuotePaymentMethod(c *gin.Context) {
	id, ok := uuidParam(c, "id", "payment method")
	if !ok {
		return
	}

	var req request.QuotePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	charge, err := h.paymentMethodService.Quote(c.Request.Context(), id, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment quoted successfully", charge)
}
