package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alsafartravel/travel-services/config"
	"github.com/alsafartravel/travel-services/events"
	"github.com/alsafartravel/travel-services/models"
	"github.com/alsafartravel/travel-services/router"
	"github.com/alsafartravel/travel-services/services"
	"github.com/alsafartravel/travel-services/utils"
)

func init() {
	utils.InitLogger()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	payTabs := services.NewPayTabsGateway(&services.PayTabsConfig{
		ProfileID:   cfg.PayTabsProfileID,
		ServerKey:   cfg.PayTabsServerKey,
		BaseURL:     cfg.PayTabsBaseURL,
		CallbackURL: cfg.CallbackURL(),
		ReturnURL:   cfg.ReturnURL(),
	})
	if err := payTabs.ValidateConfig(); err != nil {
		utils.InfoLogger.Printf("Warning: PayTabs is not fully configured: %v", err)
	}

	stripe := services.NewStripeGateway(&services.StripeConfig{
		SecretKey:      cfg.StripeSecretKey,
		PublishableKey: cfg.StripePublishableKey,
	})

	paymentService := services.NewPaymentService(db, payTabs, stripe)

	// PayPal needs live credentials to mint an access token, so it only
	// registers when configured.
	if cfg.PayPalClientID != "" && cfg.PayPalClientSecret != "" {
		payPal, err := services.NewPayPalGateway(&services.PayPalConfig{
			ClientID:     cfg.PayPalClientID,
			ClientSecret: cfg.PayPalClientSecret,
			Live:         cfg.PayPalLive,
			ReturnURL:    cfg.ReturnURL(),
			CancelURL:    cfg.ReturnURL(),
		})
		if err != nil {
			utils.ErrorLogger.Printf("PayPal gateway disabled: %v", err)
		} else {
			paymentService.RegisterGateway(payPal)
		}
	}

	monitor := services.NewPaymentMonitor(paymentService, payTabs)
	monitor.SetNotifier(events.BroadcastPaymentUpdate)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(db, paymentService, payTabs, monitor, cfg.PayTabsAllowUnsigned)

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Application{},
		&models.Payment{},
		&models.Receipt{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}
}
