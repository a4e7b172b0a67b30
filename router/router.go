package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alsafartravel/travel-services/controllers"
	"github.com/alsafartravel/travel-services/middlewares"
	"github.com/alsafartravel/travel-services/services"
)

// SetupRouter wires every HTTP route. The PayTabs callback stays outside
// the auth group: the gateway authenticates with its signature, not a JWT.
func SetupRouter(db *gorm.DB, payments *services.PaymentService, payTabs *services.PayTabsGateway, monitor *services.PaymentMonitor, allowUnsignedCallbacks bool) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Global limit: 50 requests per second per IP.
	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	userCtrl := controllers.NewUserController(db)
	applicationCtrl := controllers.NewApplicationController(db)
	paymentCtrl := controllers.NewPaymentController(db, payments, payTabs, allowUnsignedCallbacks)
	adminCtrl := controllers.NewAdminController(db, monitor)
	receiptCtrl := controllers.NewReceiptController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/api/auth")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Service-request forms come from the public website.
	r.POST("/api/applications", applicationCtrl.CreateApplication)

	// Gateway-to-server result notification.
	r.POST("/api/payments/paytabs/callback",
		middlewares.LogPaymentRequest(),
		paymentCtrl.HandlePayTabsCallback)

	// Back-office event stream.
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/admin", controllers.EventsHandler)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/api")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/auth/logout", userCtrl.Logout)
		auth.GET("/profile", userCtrl.GetProfile)

		auth.POST("/payments",
			middlewares.PaymentRateLimiter(),
			middlewares.LogPaymentRequest(),
			paymentCtrl.CreatePayment)
		auth.GET("/payments", paymentCtrl.GetPayments)
		auth.GET("/payments/:payment_id/check", paymentCtrl.CheckPayment)
		auth.POST("/payments/:payment_id/receipt", receiptCtrl.GenerateReceipt)

		auth.GET("/applications", applicationCtrl.GetAllApplications)
		auth.GET("/applications/:application_id", applicationCtrl.GetApplicationByID)
		auth.PATCH("/applications/:application_id", applicationCtrl.UpdateApplicationStatus)

		auth.GET("/admin/stats", middlewares.RequireRole("admin"), adminCtrl.GetDashboardStats)
	}

	return r
}
