package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/flicky/coffeebar-pos/internal/middleware"
)

type Handlers struct {
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Cart    *CartHandler
	Order   *OrderHandler
	Product *ProductHandler
	Health  *HealthHandler
}

func NewRouter(h Handlers, tokens middleware.TokenParser, log *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	router.GET("/healthz", h.Health.Healthz)
	router.GET("/readyz", h.Health.Readyz)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)

		authed := v1.Group("", middleware.AuthMiddleware(tokens))
		authed.POST("/auth/logout", h.Auth.Logout)

		catalog := authed.Group("/catalog")
		catalog.GET("/categories", h.Catalog.Categories)
		catalog.GET("/products", h.Catalog.Products)

		cart := authed.Group("/cart")
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/items/:id", h.Cart.AddItem)
		cart.POST("/items/:id/decrement", h.Cart.DecrementItem)
		cart.DELETE("/items/:id", h.Cart.DeleteItem)

		orders := authed.Group("/orders")
		orders.POST("", h.Order.CreateOrder)
		orders.GET("", h.Order.ListOrders)
		orders.GET("/:id", h.Order.GetOrder)

		admin := authed.Group("/admin", middleware.AdminOnly())
		admin.GET("/products", h.Product.List)
		admin.POST("/products", h.Product.Create)
		admin.PUT("/products/:id", h.Product.Update)
		admin.DELETE("/products/:id", h.Product.Delete)
	}

	return router
}
