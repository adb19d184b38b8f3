package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	authController     *controller.AuthController
	productController  *controller.ProductController
	favoriteController *controller.FavoriteController
	authMiddleware     *middleware.AuthMiddleware
	favoriteLimiter    *middleware.UserRateLimiter
	metrics            *metrics.Metrics
	gatherer           prometheus.Gatherer
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	favoriteController *controller.FavoriteController,
	authMiddleware *middleware.AuthMiddleware,
	favoriteLimiter *middleware.UserRateLimiter,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		productController:  productController,
		favoriteController: favoriteController,
		authMiddleware:     authMiddleware,
		favoriteLimiter:    favoriteLimiter,
		metrics:            m,
		gatherer:           gatherer,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(r.metrics.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	if r.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(r.authMiddleware.Authenticate())
		{
			auth.GET("/me", r.authController.GetMe)
			auth.POST("/logout", r.authController.Logout)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetAllProducts)
			products.GET("/recent", r.productController.GetRecentProducts)
			products.GET("/search", r.productController.SearchProducts)
			products.GET("/categories", r.productController.GetCategories)
			products.POST("/filter", r.productController.FilterProducts)
			products.GET("/:id", r.productController.GetProductByID)

			products.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireAdmin(),
				r.productController.CreateProduct,
			)
			products.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireAdmin(),
				r.productController.UpdateProduct,
			)
			products.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireAdmin(),
				r.productController.DeleteProduct,
			)
		}

		favorites := v1.Group("/favorites")
		favorites.Use(r.authMiddleware.Authenticate())
		{
			favorites.GET("", r.favoriteController.List)
			favorites.GET("/ids", r.favoriteController.IDs)
			favorites.GET("/entries", r.favoriteController.Entries)
			favorites.GET("/ws", r.favoriteController.WebSocketHandler)
			favorites.GET("/:product_id/status", r.favoriteController.Status)

			mutations := favorites.Group("")
			if r.favoriteLimiter != nil {
				mutations.Use(r.favoriteLimiter.Middleware())
			}
			mutations.POST("/toggle", r.favoriteController.Toggle)
			mutations.POST("", r.favoriteController.Add)
			mutations.DELETE("/:product_id", r.favoriteController.Remove)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "Cache-Control", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			// credentials rule out a literal wildcard
			cfg.AllowOriginFunc = func(string) bool { return true }
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = allowedOrigins
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(cfg)
}
