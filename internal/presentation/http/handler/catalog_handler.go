package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-api/internal/application/service"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/response"
)

// CatalogHandler handles service, product and package HTTP requests
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func catalogParams(c *gin.Context) *repository.CatalogFilterParams {
	return &repository.CatalogFilterParams{
		Pagination: pageParams(c),
		Search:     c.Query("search"),
		ActiveOnly: boolQuery(c, "active_only", false),
	}
}

func bindCatalogUpdate(c *gin.Context) (*service.CatalogUpdateInput, bool) {
	var req request.UpdateCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return nil, false
	}
	return &service.CatalogUpdateInput{Price: req.Price, IsActive: req.IsActive}, true
}

// ListServices handles listing services
func (h *CatalogHandler) ListServices(c *gin.Context) {
	result, err := h.catalogService.ListServices(c.Request.Context(), catalogParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Services retrieved successfully", result)
}

// GetService handles getting a single service
func (h *CatalogHandler) GetService(c *gin.Context) {
	id, ok := uuidParam(c, "id", "service")
	if !ok {
		return
	}
	svc, err := h.catalogService.GetService(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Service retrieved successfully", svc)
}

// CreateService handles creating a service
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req request.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	svc, err := h.catalogService.CreateService(c.Request.Context(), &service.CatalogItemInput{
		Name:            req.Name,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Service created successfully", svc)
}

// UpdateService handles changing a service's price or activation
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	id, ok := uuidParam(c, "id", "service")
	if !ok {
		return
	}
	input, ok := bindCatalogUpdate(c)
	if !ok {
		return
	}
	svc, err := h.catalogService.UpdateService(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Service updated successfully", svc)
}

// ListProducts handles listing products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	result, err := h.catalogService.ListProducts(c.Request.Context(), catalogParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// GetProduct handles getting a single product
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}
	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved successfully", product)
}

// CreateProduct handles creating a product
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &service.CatalogItemInput{
		Name:          req.Name,
		Code:          req.Code,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Product created successfully", product)
}

// UpdateProduct handles changing a product's price or activation
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}
	input, ok := bindCatalogUpdate(c)
	if !ok {
		return
	}
	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product updated successfully", product)
}

// ListPackages handles listing packages
func (h *CatalogHandler) ListPackages(c *gin.Context) {
	result, err := h.catalogService.ListPackages(c.Request.Context(), catalogParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Packages retrieved successfully", result)
}

// GetPackage handles getting a single package
func (h *CatalogHandler) GetPackage(c *gin.Context) {
	id, ok := uuidParam(c, "id", "package")
	if !ok {
		return
	}
	pkg, err := h.catalogService.GetPackage(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Package retrieved successfully", pkg)
}

// CreatePackage handles creating a package
func (h *CatalogHandler) CreatePackage(c *gin.Context) {
	var req request.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	pkg, err := h.catalogService.CreatePackage(c.Request.Context(), &service.CatalogItemInput{
		Name:       req.Name,
		Price:      req.Price,
		ServiceIDs: req.ServiceIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Package created successfully", pkg)
}

// UpdatePackage handles changing a package's price or activation
func (h *CatalogHandler) UpdatePackage(c *gin.Context) {
	id, ok := uuidParam(c, "id", "package")
	if !ok {
		return
	}
	input, ok := bindCatalogUpdate(c)
	if !ok {
		return
	}
	pkg, err := h.catalogService.UpdatePackage(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Package updated successfully", pkg)
}
