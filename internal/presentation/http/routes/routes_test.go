package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-api/internal/application/service"
	"github.com/sangkips/salon-api/internal/config"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/infrastructure/memory"
	"github.com/sangkips/salon-api/internal/presentation/http/handler"
	"github.com/sangkips/salon-api/internal/presentation/http/middleware"
	"github.com/sangkips/salon-api/pkg/printer"
	"github.com/sangkips/salon-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

type comandaBody struct {
	ID     string          `json:"id"`
	Number int64           `json:"number"`
	Status string          `json:"status"`
	Total  decimal.Decimal `json:"total"`
	Items  []struct {
		Description string          `json:"description"`
		LineTotal   decimal.Decimal `json:"line_total"`
	} `json:"items"`
}

type server struct {
	t      *testing.T
	router *gin.Engine
	admin  string
	desk   string
	pro    string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	log := zap.NewNop()
	clock := service.SystemClock(time.UTC)
	jwt := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	pricing := service.NewPricingService(store.Promotions(), store.Transactor(), clock, log)
	comandas := service.NewComandaService(store.Comandas(), store.Catalog(), store.Clients(), store.PaymentMethods(), pricing, store.Transactor(), clock, log)
	catalog := service.NewCatalogService(store.Catalog())
	clients := service.NewClientService(store.Clients())
	methods := service.NewPaymentMethodService(store.PaymentMethods())
	users := service.NewUserService(store.Users())
	auth := service.NewAuthService(store.Users(), jwt, clock, log)
	dashboard := service.NewDashboardService(store.Comandas(), store.Clients(), clock)
	printing := service.NewPrinterService(printer.Discard, store.Comandas(), store.PaymentMethods(), service.PrinterOptions{CharWidth: 32, StoreName: "Salon"}, log)

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfigFor(1000, 1))
	t.Cleanup(rl.Stop)

	cfg := &config.Config{App: config.AppConfig{Name: "salon-api"}}
	router := Setup(&Handlers{
		Auth:      handler.NewAuthHandler(auth),
		User:      handler.NewUserHandler(users),
		Comanda:   handler.NewComandaHandler(comandas, time.UTC),
		Catalog:   handler.NewCatalogHandler(catalog),
		Client:    handler.NewClientHandler(clients, methods),
		Promotion: handler.NewPromotionHandler(pricing, catalog, time.UTC),
		Dashboard: handler.NewDashboardHandler(dashboard),
		Printer:   handler.NewPrinterHandler(printing),
	}, &Deps{
		JWTManager:      jwt,
		Cfg:             cfg,
		IdempotencyRepo: store.Idempotency(),
		RateLimiter:     rl,
		Log:             log,
	})

	s := &server{t: t, router: router}
	token := func(email string, role enum.UserRole) string {
		u, err := users.CreateUser(context.Background(), &service.CreateUserInput{Name: "Staff", Email: email, Password: "correct-horse", Role: role})
		require.NoError(t, err)
		tok, err := jwt.GenerateAccessToken(u.ID, u.Email, u.Role.String())
		require.NoError(t, err)
		return tok
	}
	s.admin = token("admin@salon.test", enum.UserRoleAdmin)
	s.desk = token("desk@salon.test", enum.UserRoleReception)
	s.pro = token("pro@salon.test", enum.UserRoleProfessional)
	return s
}

func (s *server) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (s *server) createService(name, price string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/services", s.admin, map[string]any{"name": name, "price": price, "duration_minutes": 30})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		ID string `json:"id"`
	}](s.t, w).ID
}

func (s *server) createProduct(name, price string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/products", s.admin, map[string]any{"name": name, "price": price, "stock_quantity": "10"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		ID string `json:"id"`
	}](s.t, w).ID
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/comandas", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/comandas", "not-a-jwt", nil).Code)
}

func TestLogin(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "desk@salon.test", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}](t, w)
	assert.Equal(t, "Bearer", out.TokenType)

	me := s.do(http.MethodGet, "/api/v1/auth/me", out.AccessToken, nil)
	assert.Equal(t, http.StatusOK, me.Code)

	bad := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "desk@salon.test", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
}

func TestCatalogWritesNeedAdmin(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/v1/services", s.desk, map[string]any{"name": "Haircut", "price": "80.00"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.createService("Haircut", "80.00")
	list := s.do(http.MethodGet, "/api/v1/services", s.desk, nil)
	assert.Equal(t, http.StatusOK, list.Code)
}

func TestComandaFlow(t *testing.T) {
	s := newServer(t)
	haircut := s.createService("Haircut", "80.00")
	shampoo := s.createProduct("Shampoo", "15.50")

	w := s.do(http.MethodPost, "/api/v1/comandas", s.desk, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tab := decode[comandaBody](t, w)
	assert.Equal(t, "open", tab.Status)
	base := "/api/v1/comandas/" + tab.ID

	w = s.do(http.MethodPost, base+"/items", s.pro, map[string]any{"kind": "service", "item_id": haircut, "quantity": "1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, base+"/items", s.desk, map[string]any{"kind": "product", "item_id": shampoo, "quantity": "2"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tab = decode[comandaBody](t, w)
	assert.Equal(t, "111.00", tab.Total.StringFixed(2))
	require.Len(t, tab.Items, 2)

	w = s.do(http.MethodDelete, base+"/items/1", s.desk, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "80.00", decode[comandaBody](t, w).Total.StringFixed(2))

	// professionals cannot check out
	w = s.do(http.MethodPost, base+"/close", s.pro, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, base+"/close", s.desk, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "closed", decode[comandaBody](t, w).Status)

	w = s.do(http.MethodPost, base+"/close", s.desk, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "invalid_state", env.Kind)

	w = s.do(http.MethodGet, base+"/receipt", s.desk, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestComandaBadInput(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/comandas/not-a-uuid", s.desk, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/comandas?status=paid", s.desk, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/comandas/summary?start_date=03-02-2026", s.desk, nil).Code)

	w := s.do(http.MethodPost, "/api/v1/comandas", s.desk, nil)
	tab := decode[comandaBody](t, w)
	w = s.do(http.MethodPost, "/api/v1/comandas/"+tab.ID+"/items", s.desk, map[string]any{"kind": "voucher", "quantity": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdempotentOpen(t *testing.T) {
	s := newServer(t)

	first := s.do(http.MethodPost, "/api/v1/comandas", s.desk, nil, middleware.IdempotencyKeyHeader, "open-1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := s.do(http.MethodPost, "/api/v1/comandas", s.desk, nil, middleware.IdempotencyKeyHeader, "open-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, decode[comandaBody](t, first).ID, decode[comandaBody](t, second).ID)

	// a different staff member with the same key gets a new tab
	other := s.do(http.MethodPost, "/api/v1/comandas", s.admin, nil, middleware.IdempotencyKeyHeader, "open-1")
	require.Equal(t, http.StatusCreated, other.Code)
	assert.NotEqual(t, decode[comandaBody](t, first).ID, decode[comandaBody](t, other).ID)
}

func TestUsersAdminOnly(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/users", s.desk, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/users", s.admin, nil).Code)
}
