package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type Config struct {
	Port        string
	DatabaseDSN string

	// AppBaseURL is the public base URL the gateways redirect to and post
	// callbacks against, e.g. https://services.example.com
	AppBaseURL string

	PayTabsProfileID     string
	PayTabsServerKey     string
	PayTabsBaseURL       string
	PayTabsAllowUnsigned bool

	StripeSecretKey      string
	StripePublishableKey string

	PayPalClientID     string
	PayPalClientSecret string
	PayPalLive         bool
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	return &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		AppBaseURL: getEnvOrDefault("APP_BASE_URL", "http://localhost:8080"),

		PayTabsProfileID:     os.Getenv("PAYTABS_PROFILE_ID"),
		PayTabsServerKey:     os.Getenv("PAYTABS_SERVER_KEY"),
		PayTabsBaseURL:       getEnvOrDefault("PAYTABS_BASE_URL", "https://secure.paytabs.com"),
		PayTabsAllowUnsigned: os.Getenv("PAYTABS_ALLOW_UNSIGNED") == "true",

		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),

		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalLive:         os.Getenv("PAYPAL_ENV") == "live",
	}, nil
}

// CallbackURL is where PayTabs posts transaction results.
func (c *Config) CallbackURL() string {
	return c.AppBaseURL + "/api/payments/paytabs/callback"
}

// ReturnURL is where the hosted payment page sends the customer's browser.
func (c *Config) ReturnURL() string {
	return c.AppBaseURL + "/payments/return"
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
