package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/cart"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
)

type Config struct {
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	JWT_SECRET     string
	REFRESH_SECRET string

	KAFKA_ADDRESS string

	STRIPE_SECRET         string
	STRIPE_WEBHOOK_SECRET string

	PRICE_DIVISOR string
	DELIVERY_FEE  string
	TAX_RATE      string

	LOG_LEVEL string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:               os.Getenv("DB_HOST"),
		DB_PORT:               os.Getenv("DB_PORT"),
		DB_USER:               os.Getenv("DB_USER"),
		DB_PASSWORD:           os.Getenv("DB_PASSWORD"),
		DB_NAME:               os.Getenv("DB_NAME"),
		ES_URL:                os.Getenv("ES_URL"),
		ES_USER:               os.Getenv("ES_USER"),
		ES_PASSWORD:           os.Getenv("ES_PASSWORD"),
		JWT_SECRET:            os.Getenv("JWT_SECRET"),
		REFRESH_SECRET:        os.Getenv("REFRESH_SECRET"),
		KAFKA_ADDRESS:         os.Getenv("KAFKA_ADDRESS"),
		STRIPE_SECRET:         os.Getenv("STRIPE_SECRET"),
		STRIPE_WEBHOOK_SECRET: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PRICE_DIVISOR:         os.Getenv("PRICE_DIVISOR"),
		DELIVERY_FEE:          os.Getenv("DELIVERY_FEE"),
		TAX_RATE:              os.Getenv("TAX_RATE"),
		LOG_LEVEL:             os.Getenv("LOG_LEVEL"),
	}

	return config, nil
}

// Pricing materializes the pricing policy constants, falling back to the
// defaults when the environment leaves them unset.
func (c *Config) Pricing() cart.Pricing {
	p := cart.DefaultPricing()
	if c.PRICE_DIVISOR != "" {
		if v, err := strconv.ParseInt(c.PRICE_DIVISOR, 10, 64); err == nil && v > 0 {
			p.PriceDivisor = v
		}
	}
	if c.DELIVERY_FEE != "" {
		if v, err := decimal.NewFromString(c.DELIVERY_FEE); err == nil {
			p.DeliveryFee = v
		}
	}
	if c.TAX_RATE != "" {
		if v, err := decimal.NewFromString(c.TAX_RATE); err == nil {
			p.TaxRate = v
		}
	}
	return p
}

func InitDB() (*gorm.DB, error) {
	configuration, _ := LoadConfig()

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		configuration.DB_USER,
		configuration.DB_PASSWORD,
		configuration.DB_HOST,
		configuration.DB_PORT,
		configuration.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.CartRecord{},
		&models.Order{},
		&models.Reservation{},
		&models.Rating{},
		&models.SupportTicket{},
		&models.Campaign{},
	)
}
