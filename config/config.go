package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	GatewayToken GatewayTokenConfig `mapstructure:"gateway_token"`
	PayU         PayUConfig         `mapstructure:"payu"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	Sessions     SessionsConfig     `mapstructure:"sessions"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig describes how identities issued by the auth provider are verified.
type AuthConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// GatewayTokenConfig controls the signed token bound to a gateway order.
type GatewayTokenConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
}

// PayUConfig holds merchant credentials and redirect settings for the external gateway.
type PayUConfig struct {
	APIKey                  string `mapstructure:"api_key"`
	MerchantID              string `mapstructure:"merchant_id"`
	AccountID               string `mapstructure:"account_id"`
	CheckoutURL             string `mapstructure:"checkout_url"`
	ResponseURL             string `mapstructure:"response_url"`
	ConfirmationURL         string `mapstructure:"confirmation_url"`
	Test                    bool   `mapstructure:"test"`
	VerifyCallbackSignature bool   `mapstructure:"verify_callback_signature"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// RateLimitConfig toggles the Redis-backed limiter.
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type SessionsConfig struct {
	Window time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: SFP_ (StoreFront Payments).
// Nested keys use underscore: SFP_DATABASE_HOST, SFP_PAYU_API_KEY, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "storefront")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "storefront-auth")
	v.SetDefault("gateway_token.secret", "")
	v.SetDefault("gateway_token.expiry", "1h")
	v.SetDefault("payu.api_key", "")
	v.SetDefault("payu.merchant_id", "")
	v.SetDefault("payu.account_id", "")
	v.SetDefault("payu.checkout_url", "https://sandbox.checkout.payulatam.com/ppp-web-gateway-payu/")
	v.SetDefault("payu.response_url", "")
	v.SetDefault("payu.confirmation_url", "")
	v.SetDefault("payu.test", true)
	v.SetDefault("payu.verify_callback_signature", true)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "orders.events")
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("sessions.window", "60s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// SFP_PAYU_API_KEY -> payu.api_key
	v.SetEnvPrefix("SFP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A config file is optional; env vars can suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate reports missing secrets that the service cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.Auth.Secret == "" {
		missing = append(missing, "auth.secret")
	}
	if c.GatewayToken.Secret == "" {
		missing = append(missing, "gateway_token.secret")
	}
	if c.PayU.APIKey == "" {
		missing = append(missing, "payu.api_key")
	}
	if c.PayU.MerchantID == "" {
		missing = append(missing, "payu.merchant_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
