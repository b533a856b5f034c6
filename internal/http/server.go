package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/service"
)

// Deps зависимости HTTP слоя
type Deps struct {
	Products *service.ProductService
	Carts    *service.CartService
	Orders   *service.OrderService
	Users    *service.UserService
	Logger   *slog.Logger
	Metrics  *metrics.ServerMetrics
	// Health вызывается из /healthz; nil значит всегда здоров
	Health        func(ctx context.Context) error
	SessionCookie string
	CookieSecure  bool
}

type Server struct {
	engine   *gin.Engine
	products *service.ProductService
	carts    *service.CartService
	orders   *service.OrderService
	users    *service.UserService
	log      *slog.Logger
	metrics  *metrics.ServerMetrics
	health   func(ctx context.Context) error
	validate *validator.Validate
	cookie   string
	secure   bool
}

func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewServerMetrics()
	}
	if d.SessionCookie == "" {
		d.SessionCookie = "sessionid"
	}
	r := gin.New()
	s := &Server{
		engine:   r,
		products: d.Products,
		carts:    d.Carts,
		orders:   d.Orders,
		users:    d.Users,
		log:      d.Logger,
		metrics:  d.Metrics,
		health:   d.Health,
		validate: newValidator(),
		cookie:   d.SessionCookie,
		secure:   d.CookieSecure,
	}
	r.Use(s.requestLogger(), gin.Recovery(), s.authenticate())
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в сообщениях валидации имена полей из json тегов
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.engine.GET("/healthz", s.healthz)

	api := s.engine.Group("/api")
	{
		products := api.Group("/products")
		products.GET("/", s.listProducts)
		products.GET("/categories/list/", s.listCategories)
		products.GET("/:id/", s.getProduct)
		admin := products.Group("", s.requireAdmin())
		admin.POST("/", s.createProduct)
		admin.PUT("/:id/", s.replaceProduct)
		admin.PATCH("/:id/", s.patchProduct)
		admin.DELETE("/:id/", s.deleteProduct)

		cart := api.Group("/cart", s.resolveOwner())
		cart.GET("/", s.getCart)
		cart.POST("/add/", s.addToCart)
		cart.PATCH("/items/:id/update/", s.updateCartItem)
		cart.DELETE("/items/:id/remove/", s.removeCartItem)
		api.POST("/cart/merge/", s.requireAuth(), s.mergeCart)

		orders := api.Group("/orders", s.requireAuth())
		orders.POST("/", s.createOrder)
		orders.GET("/", s.listOrders)
		orders.GET("/:id/", s.getOrder)
		orders.PATCH("/:id/status/", s.requireAdmin(), s.setOrderStatus)

		authGroup := api.Group("/auth")
		authGroup.POST("/register/", s.register)
		authGroup.POST("/login/", s.login)
		authGroup.POST("/token/refresh/", s.refreshToken)
		authGroup.GET("/me/", s.requireAuth(), s.me)
	}
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (s *Server) healthz(c *gin.Context) {
	if s.health != nil {
		if err := s.health(c.Request.Context()); err != nil {
			s.log.Error("health check failed", slog.String(logging.Error, err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
