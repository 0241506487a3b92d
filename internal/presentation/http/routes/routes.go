package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-api/internal/config"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/presentation/http/handler"
	"github.com/sangkips/salon-api/internal/presentation/http/middleware"
	"github.com/sangkips/salon-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Comanda   *handler.ComandaHandler
	Catalog   *handler.CatalogHandler
	Client    *handler.ClientHandler
	Promotion *handler.PromotionHandler
	Dashboard *handler.DashboardHandler
	Printer   *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.RateLimiter
	Log             *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Public routes, limited per client IP
		public := v1.Group("")
		if deps.RateLimiter != nil {
			public.Use(deps.RateLimiter.Middleware())
		}
		registerAuthRoutes(public, h)

		// Protected routes, limited per staff member
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Log:  deps.Log,
		}))

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/auth/me", h.Auth.Me)
	protected.PUT("/auth/password", h.Auth.ChangePassword)

	protected.GET("/dashboard", h.Dashboard.GetStats)
	protected.GET("/printer/status", h.Printer.GetStatus)

	registerComandaRoutes(protected, h)
	registerCatalogRoutes(protected, h)
	registerClientRoutes(protected, h)
	registerPromotionRoutes(protected, h)
	registerUserRoutes(protected, h)
}

func registerComandaRoutes(protected *gin.RouterGroup, h *Handlers) {
	comandas := protected.Group("/comandas")
	{
		comandas.GET("", h.Comanda.List)
		comandas.POST("", h.Comanda.Open)
		comandas.GET("/summary", h.Comanda.Summary)
		comandas.GET("/:id", h.Comanda.Get)
		comandas.POST("/:id/items", h.Comanda.AddItem)
		comandas.PATCH("/:id/items/:index", h.Comanda.UpdateQuantity)
		comandas.DELETE("/:id/items/:index", h.Comanda.RemoveItem)
		comandas.POST("/:id/close", h.Comanda.Close)
		comandas.POST("/:id/cancel", h.Comanda.Cancel)
		comandas.GET("/:id/receipt", h.Printer.Receipt)
		comandas.POST("/:id/print", h.Printer.PrintComanda)
	}
}

func registerCatalogRoutes(protected *gin.RouterGroup, h *Handlers) {
	admin := middleware.RequireRole(enum.UserRoleAdmin)

	services := protected.Group("/services")
	{
		services.GET("", h.Catalog.ListServices)
		services.GET("/:id", h.Catalog.GetService)
		services.POST("", admin, h.Catalog.CreateService)
		services.PATCH("/:id", admin, h.Catalog.UpdateService)
	}

	products := protected.Group("/products")
	{
		products.GET("", h.Catalog.ListProducts)
		products.GET("/:id", h.Catalog.GetProduct)
		products.POST("", admin, h.Catalog.CreateProduct)
		products.PATCH("/:id", admin, h.Catalog.UpdateProduct)
	}

	packages := protected.Group("/packages")
	{
		packages.GET("", h.Catalog.ListPackages)
		packages.GET("/:id", h.Catalog.GetPackage)
		packages.POST("", admin, h.Catalog.CreatePackage)
		packages.PATCH("/:id", admin, h.Catalog.UpdatePackage)
	}
}

func registerClientRoutes(protected *gin.RouterGroup, h *Handlers) {
	clients := protected.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.GET("/:id", h.Client.Get)
		clients.POST("", h.Client.Create)
	}

	methods := protected.Group("/payment-methods")
	{
		methods.GET("", h.Client.ListPaymentMethods)
		methods.POST("", middleware.RequireRole(enum.UserRoleAdmin), h.Client.CreatePaymentMethod)
		methods.POST("/:id/quote", h.Client.QuotePaymentMethod)
	}
}

func registerPromotionRoutes(protected *gin.RouterGroup, h *Handlers) {
	admin := middleware.RequireRole(enum.UserRoleAdmin)

	promotions := protected.Group("/promotions")
	{
		promotions.GET("", h.Promotion.List)
		promotions.POST("/quote", h.Promotion.Quote)
		promotions.GET("/:id", h.Promotion.Get)
		promotions.POST("", admin, h.Promotion.Create)
		promotions.PATCH("/:id/active", admin, h.Promotion.SetActive)
	}
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	users.Use(middleware.RequireRole(enum.UserRoleAdmin))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.PATCH("/:id/active", h.User.SetActive)
	}
}
