package routes

import (
	"maybach_liquor/internal/handlers"
	"maybach_liquor/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// Limites par défaut : tentatives de connexion par IP, ajouts au panier par session
const (
	authPerSecond    = 1.0 / 3
	authBurst        = 5
	cartAddPerSecond = 5
	cartAddBurst     = 10
)

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, store sessions.Store) {
	r.GET("/health", h.Health)

	authLimiter := middleware.NewRateLimiter(authPerSecond, authBurst, middleware.ByClientIP)
	cartLimiter := middleware.NewRateLimiter(cartAddPerSecond, cartAddBurst, middleware.BySession)

	api := r.Group("/api")
	api.Use(
		middleware.BrowserSession(store, h.Log),
		middleware.CurrentUser(h.Tokens, h.Auth, h.Log),
	)

	// Catalogue
	api.GET("/products", h.ListProducts)
	api.GET("/products/featured", h.FeaturedProducts)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/products/:id/related", h.RelatedProducts)
	api.GET("/categories", h.Categories)

	// Panier
	cartGroup := api.Group("/cart")
	{
		cartGroup.GET("", h.GetCart)
		cartGroup.GET("/ws", h.CartWebSocket)
		cartGroup.POST("/add", cartLimiter.Middleware(), h.AddToCart)
		cartGroup.PUT("/:productId", h.UpdateCartItem)
		cartGroup.DELETE("/:productId", h.RemoveFromCart)
		cartGroup.DELETE("", h.ClearCart)
	}

	// Auth
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", authLimiter.Middleware(), h.Signup)
		authGroup.POST("/login", authLimiter.Middleware(), h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.Me)
		authGroup.PUT("/me", middleware.RequireUser, h.UpdateMe)
	}

	// Checkout & pré-réservation
	checkoutGroup := api.Group("/checkout")
	{
		checkoutGroup.POST("", h.BeginCheckout)
		checkoutGroup.GET("/:id", h.GetCheckout)
		checkoutGroup.DELETE("/:id", h.AbandonCheckout)
		checkoutGroup.POST("/:id/info", h.SubmitCheckoutInfo)
		checkoutGroup.POST("/:id/mpesa", h.ConfirmMpesa)
		checkoutGroup.POST("/:id/back", h.CheckoutBack)
	}
	api.POST("/prebook", h.PreBook)

	// Commandes du client
	orders := api.Group("/orders", middleware.RequireUser)
	{
		orders.GET("/mine", h.MyOrders)
		orders.GET("/:id/qrcode", h.OrderQRCode)
	}

	// Console admin
	adm := api.Group("/admin", middleware.RequireAdmin)
	{
		adm.GET("/products", h.AdminListProducts)
		adm.POST("/products", middleware.AuditAdminAction(middleware.ActionProductCreate, h.Log), h.AdminAddProduct)
		adm.PUT("/products/:id", middleware.AuditAdminAction(middleware.ActionProductUpdate, h.Log), h.AdminUpdateProduct)
		adm.POST("/products/:id/image", middleware.AuditAdminAction(middleware.ActionProductImage, h.Log), h.AdminUploadProductImage)

		adm.GET("/orders", h.AdminListOrders)
		adm.GET("/orders/:id", h.AdminGetOrder)
		adm.PUT("/orders/:id/status", middleware.AuditAdminAction(middleware.ActionOrderStatusChange, h.Log), h.AdminUpdateOrderStatus)
		adm.PUT("/orders/:id/payment-status", middleware.AuditAdminAction(middleware.ActionOrderPaymentChange, h.Log), h.AdminUpdatePaymentStatus)

		adm.GET("/dashboard", h.AdminDashboard)
		adm.GET("/payments", h.AdminPayments)
	}
}
