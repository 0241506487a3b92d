package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ClientService handles client-related operations
type ClientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// CreateClientInput represents the create client input
type CreateClientInput struct {
	Name  string
	Email *string
	Phone *string
	Notes *string
}

// Create registers a new client
func (s *ClientService) Create(ctx context.Context, input *CreateClientInput) (*entity.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldValidationError([]apperror.FieldError{{Field: "name", Message: "name is required"}})
	}

	client := &entity.Client{
		Name:  name,
		Email: input.Email,
		Phone: input.Phone,
		Notes: input.Notes,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

// Get retrieves a client by ID
func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// List retrieves clients with pagination and optional name search
func (s *ClientService) List(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Client], error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	clients, total, err := s.clientRepo.List(ctx, params, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return pagination.NewPaginatedResult(clients, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// PaymentMethodService handles payment methods and what they charge
type PaymentMethodService struct {
	methodRepo repository.PaymentMethodRepository
}

// NewPaymentMethodService creates a new payment method service
func NewPaymentMethodService(methodRepo repository.PaymentMethodRepository) *PaymentMethodService {
	return &PaymentMethodService{methodRepo: methodRepo}
}

// CreatePaymentMethodInput represents the create payment method input
type CreatePaymentMethodInput struct {
	Name             string
	SurchargePercent decimal.Decimal
	SurchargeFixed   decimal.Decimal
	DiscountPercent  decimal.Decimal
}

// Create adds a payment method. Names are unique.
func (s *PaymentMethodService) Create(ctx context.Context, input *CreatePaymentMethodInput) (*entity.PaymentMethod, error) {
	var errs []apperror.FieldError
	name := strings.TrimSpace(input.Name)
	if name == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "name is required"})
	}
	if input.SurchargePercent.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "surcharge_percent", Message: "surcharge percent cannot be negative"})
	}
	if input.SurchargeFixed.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "surcharge_fixed", Message: "surcharge cannot be negative"})
	}
	if input.DiscountPercent.IsNegative() || input.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		errs = append(errs, apperror.FieldError{Field: "discount_percent", Message: "discount percent must be between 0 and 100"})
	}
	if len(errs) > 0 {
		return nil, apperror.NewFieldValidationError(errs)
	}

	existing, err := s.methodRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get payment method: %w", err)
	}
	if existing != nil {
		return nil, apperror.NewConflictError(fmt.Sprintf("payment method %q already exists", name))
	}

	method := &entity.PaymentMethod{
		Name:             name,
		SurchargePercent: input.SurchargePercent,
		SurchargeFixed:   input.SurchargeFixed,
		DiscountPercent:  input.DiscountPercent,
		IsActive:         true,
	}
	if err := s.methodRepo.Create(ctx, method); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewConflictError(fmt.Sprintf("payment method %q already exists", name))
		}
		return nil, fmt.Errorf("create payment method: %w", err)
	}
	return method, nil
}

// List returns payment methods ordered by name
func (s *PaymentMethodService) List(ctx context.Context, activeOnly bool) ([]entity.PaymentMethod, error) {
	methods, err := s.methodRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	return methods, nil
}

// Charge is what paying amount with a method costs the client
type Charge struct {
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	Charged         decimal.Decimal `json:"charged"`
}

// Quote applies the method's surcharge or discount to amount
func (s *PaymentMethodService) Quote(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*Charge, error) {
	if amount.IsNegative() {
		return nil, apperror.NewValidationError("amount cannot be negative")
	}
	method, err := s.methodRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment method: %w", err)
	}
	if method == nil {
		return nil, apperror.NewNotFoundError("Payment method")
	}
	return &Charge{
		PaymentMethodID: method.ID,
		Name:            method.Name,
		Amount:          amount,
		Charged:         method.Apply(amount),
	}, nil
}
