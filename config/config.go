package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort string `mapstructure:"APP_PORT"`
	Env     string `mapstructure:"ENV"`

	// Public base URL of the app; checkout return links are built from it.
	AppBaseURL string `mapstructure:"APP_BASE_URL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Stripe configuration.
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// Billing: per-seat flat price in the smallest currency unit.
	SeatUnitPrice int64  `mapstructure:"SEAT_UNIT_PRICE"`
	Currency      string `mapstructure:"CURRENCY"`
	MinOrgSeats   int    `mapstructure:"MIN_ORG_SEATS"`

	// Lifetimes, in minutes.
	RegistrationSessionTTL int `mapstructure:"REGISTRATION_SESSION_TTL"`
	PendingCredentialsTTL  int `mapstructure:"PENDING_CREDENTIALS_TTL"`
	TempAccountTTL         int `mapstructure:"TEMP_ACCOUNT_TTL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("APP_BASE_URL", "http://localhost:8080")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("SEAT_UNIT_PRICE", 2900)
	viper.SetDefault("CURRENCY", "eur")
	viper.SetDefault("MIN_ORG_SEATS", 4)
	viper.SetDefault("REGISTRATION_SESSION_TTL", 60)
	viper.SetDefault("PENDING_CREDENTIALS_TTL", 60)
	viper.SetDefault("TEMP_ACCOUNT_TTL", 24*60)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
