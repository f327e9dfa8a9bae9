package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"kitchenware-market.backend/internal/config"
	"kitchenware-market.backend/internal/interfaces/http/handlers"
	"kitchenware-market.backend/internal/interfaces/http/middleware"
	"kitchenware-market.backend/pkg/metrics"
)

type routeDeps struct {
	authHandler     *handlers.AuthHandler
	profileHandler  *handlers.ProfileHandler
	sellerHandler   *handlers.SellerHandler
	categoryHandler *handlers.CategoryHandler
	itemHandler     *handlers.ItemHandler
	healthHandler   *handlers.HealthHandler
	actorMiddleware gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-ID, Idempotency-Key, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

// registerInfraRoutes mounts health, prometheus and the read-only media tree.
func registerInfraRoutes(r *gin.Engine, health *handlers.HealthHandler, media config.MediaConfig) {
	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.Static(media.PublicPrefix, media.Root)
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	requireAuth := middleware.RequireAuth()
	requireAdmin := middleware.RequireAdmin()

	v1 := r.Group("/api/v1")
	v1.Use(d.actorMiddleware)
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.POST("/logout", d.authHandler.Logout)
			auth.GET("/me", requireAuth, d.authHandler.GetMe)
		}

		profile := v1.Group("/profile")
		profile.Use(requireAuth)
		{
			profile.GET("", d.profileHandler.GetOwnProfile)
			profile.PUT("", d.profileHandler.UpdateProfile)
			profile.PUT("/account", d.profileHandler.UpdateAccount)
			profile.DELETE("", d.profileHandler.DeleteAccount)
		}
		v1.GET("/users/:username", d.profileHandler.GetUserProfile)

		v1.GET("/sellers", d.sellerHandler.ListSellers)
		v1.GET("/sellers/:username", d.sellerHandler.GetSeller)

		categories := v1.Group("/categories")
		{
			categories.GET("", d.categoryHandler.ListCategories)
			categories.POST("", requireAuth, requireAdmin, d.categoryHandler.CreateCategory)
			categories.DELETE("/:id", requireAuth, requireAdmin, d.categoryHandler.DeleteCategory)
		}

		items := v1.Group("/items")
		{
			items.GET("", d.itemHandler.ListItems)
			items.GET("/:id", d.itemHandler.GetItem)
			items.POST("", requireAuth, middleware.IdempotencyMiddleware(), d.itemHandler.CreateItem)
			items.PUT("/:id", requireAuth, d.itemHandler.UpdateItem)
			items.DELETE("/:id", requireAuth, d.itemHandler.DeleteItem)
		}

		admin := v1.Group("/admin")
		admin.Use(requireAuth, requireAdmin)
		{
			admin.GET("/items/:id", d.itemHandler.GetItemRaw)
		}

		// Reserved for features outside this service
		v1.Any("/messages/*path", handlers.NotImplemented("messaging"))
		v1.Any("/transactions/*path", handlers.NotImplemented("transactions"))
		v1.Any("/reviews/*path", handlers.NotImplemented("reviews"))
	}
}
