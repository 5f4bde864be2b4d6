// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// WSAddr is the address the socket gateway listens on (e.g. :4567).
	WSAddr string `mapstructure:"WS_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisAddr is the Redis host:port used for reset codes, rate limits, and unread trackers.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// RedisPassword is the optional Redis AUTH password.
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	// RedisDB is the Redis logical database number.
	RedisDB int `mapstructure:"REDIS_DB"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used to issue socket tokens.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used to validate socket handshake tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "nodebb"); required when handshake auth is enabled.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "nodebb-sockets"); required when handshake auth is enabled.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// BcryptCost is the bcrypt cost factor (4 to 31); default 12. Used when committing password resets.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// EmailConfirmationEnabled gates the user.emailConfirm procedure.
	EmailConfirmationEnabled bool `mapstructure:"EMAIL_CONFIRMATION_ENABLED"`
	// PasswordResetDisabled administratively disables password-reset issuance (user.reset.send).
	PasswordResetDisabled bool `mapstructure:"PASSWORD_RESET_DISABLED"`
	// ResetSendCooldown is the fixed delay applied before replying to user.reset.send (e.g. "2500ms").
	ResetSendCooldown string `mapstructure:"RESET_SEND_COOLDOWN"`
	// ResetMaxSends is the max reset issuances per email within ResetRateWindow.
	ResetMaxSends int `mapstructure:"RESET_MAX_SENDS"`
	// ResetRateWindow is the sliding window for reset issuance rate limiting (e.g. "1h").
	ResetRateWindow string `mapstructure:"RESET_RATE_WINDOW"`
	// ResetCodeTTL is how long a reset code stays valid (e.g. "24h").
	ResetCodeTTL string `mapstructure:"RESET_CODE_TTL"`
	// PublicURL is the external base URL of the forum, used in email links.
	PublicURL string `mapstructure:"PUBLIC_URL"`
	// MailAPIKey is the API key for the outbound mail provider.
	MailAPIKey string `mapstructure:"MAIL_API_KEY"`
	// MailAPIURL is the mail provider send endpoint.
	MailAPIURL string `mapstructure:"MAIL_API_URL"`
	// MailFrom is the From address on outbound mail.
	MailFrom string `mapstructure:"MAIL_FROM"`
	// OTLPEndpoint enables OpenTelemetry export when set (e.g. http://localhost:4317).
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Hooks (optional). When Kafka brokers are set, plugin hook events are published to Kafka.
	// HooksKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	HooksKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// HooksKafkaTopic is the Kafka topic for hook events (default nodebb-hooks).
	HooksKafkaTopic string `mapstructure:"HOOKS_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the hook worker to push events (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the hook worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("WS_ADDR", ":4567")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ISSUER", "nodebb")
	v.SetDefault("JWT_AUDIENCE", "nodebb-sockets")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("EMAIL_CONFIRMATION_ENABLED", false)
	v.SetDefault("PASSWORD_RESET_DISABLED", false)
	v.SetDefault("RESET_SEND_COOLDOWN", "2500ms")
	v.SetDefault("RESET_MAX_SENDS", 3)
	v.SetDefault("RESET_RATE_WINDOW", "1h")
	v.SetDefault("RESET_CODE_TTL", "24h")
	v.SetDefault("PUBLIC_URL", "http://localhost:4567")
	v.SetDefault("MAIL_API_URL", "https://api.mailchannels.net/tx/v1/send")
	v.SetDefault("MAIL_FROM", "no-reply@localhost")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("HOOKS_KAFKA_TOPIC", "nodebb-hooks")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "nodebb-hooks-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.WSAddr == "" {
		return nil, errors.New("config: WS_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.ResetMaxSends <= 0 {
		return nil, errors.New("config: RESET_MAX_SENDS must be positive")
	}

	return &cfg, nil
}

// ResetSendCooldownDuration parses ResetSendCooldown as a time.Duration. Returns 2500ms if unset or invalid.
func (c *Config) ResetSendCooldownDuration() time.Duration {
	d, err := time.ParseDuration(c.ResetSendCooldown)
	if err != nil || d < 0 {
		return 2500 * time.Millisecond
	}
	return d
}

// ResetRateWindowDuration parses ResetRateWindow as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) ResetRateWindowDuration() time.Duration {
	d, err := time.ParseDuration(c.ResetRateWindow)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// ResetCodeTTLDuration parses ResetCodeTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) ResetCodeTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.ResetCodeTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// HooksKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if hook publishing is enabled (non-empty list) and to create the producer.
func (c *Config) HooksKafkaBrokersList() []string {
	if c == nil || c.HooksKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.HooksKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
