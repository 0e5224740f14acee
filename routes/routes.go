package routes

import (
	"net/http"
	"slices"
	"time"

	"burger-order-api/handlers"
	"burger-order-api/middleware"
	"burger-order-api/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig allows the given origins; "*" opens the API to any origin
// without credentials.
func CORSConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth *middleware.Auth, origins []string) {
	r.Use(cors.New(CORSConfig(origins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Burger Ordering API",
			"version": "1.0.0",
		})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "🍔 Welcome to the Burger Ordering API",
			"docs":    "/api/state-machine",
			"health":  "/health",
		})
	})

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)
		public.POST("/auth/logout", h.Logout)

		// Menu & builder
		public.GET("/home", h.Home)
		public.GET("/menu", h.GetMenu)
		public.GET("/menu/:id", h.GetBurger)
		public.GET("/menu/:id/reviews", h.GetBurgerReviews)
		public.GET("/builder", h.GetBuilder)
		public.POST("/builder/price", h.PreviewCustomPrice)
		public.POST("/cart/quote", h.QuoteCart)

		// State machine info
		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(auth.Required())
	{
		authed.GET("/profile", h.GetProfile)

		authed.POST("/orders", h.PlaceOrder)
		authed.GET("/orders", h.GetMyOrders)
		authed.GET("/orders/:orderId", h.GetOrderDetail)
		authed.GET("/orders/:orderId/status", h.GetOrderStatus)
		authed.PUT("/orders/:orderId/cancel", h.CancelOrder)

		authed.POST("/menu/:id/reviews", h.CreateReview)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(auth.Required(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/dashboard", h.AdminDashboard)
		admin.GET("/analytics", h.AdminAnalytics)

		admin.GET("/orders", h.AdminGetAllOrders)
		admin.PUT("/orders/:orderId/status", h.AdminUpdateOrderStatus)

		admin.GET("/inventory", h.AdminInventory)
		admin.PUT("/inventory/:id/stock", h.AdminUpdateStock)
		admin.POST("/ingredients", h.AdminCreateIngredient)
		admin.POST("/burgers", h.AdminCreateBurger)
		admin.PATCH("/burgers/:id", h.AdminUpdateBurger)

		admin.GET("/users", h.AdminGetAllUsers)
	}
}
