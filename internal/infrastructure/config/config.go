// Package config loads application settings from a TOML file with
// environment variable overrides.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration tree.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Payment   PaymentConfig
	Telemetry TelemetryConfig
}

// AppConfig names the service and the environment it runs in.
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds PostgreSQL connection and pool settings.
// Lifetime and idle time are in minutes.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds token signing settings. An empty RefreshSecret means
// refresh tokens are signed with Secret.
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	MaxRefreshCount        int
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Output string // stdout, stderr, or a file path
}

// HTTPConfig holds server timeouts, body limits, CORS and rate limiting.
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// PaymentConfig holds the online payment gateway credentials used when
// settling merchant balances.
type PaymentConfig struct {
	TmnCode    string        // merchant terminal code issued by the gateway
	HashSecret string        // HMAC secret signing requests and verifying callbacks
	PayURL     string        // gateway payment page base URL
	ReturnURL  string        // where the gateway sends the payer afterwards
	Timeout    time.Duration // how long a generated payment URL stays valid
}

// TelemetryConfig holds tracing and profiling settings.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP collector, host:port
	SamplingRatio     float64 // 0.0 to 1.0
	ServiceName       string
	Insecure          bool // non-TLS collector connection, development only
	DBTraceEnabled    bool // trace database queries via otelgorm
	DBLogFullSQL      bool // record full SQL in spans, never in production
	ProfilerEnabled   bool
	ProfilerAddress   string // Pyroscope server, e.g. http://pyroscope:4040
}

// Load reads config.toml (from the working directory or /app), applies
// LM_-prefixed environment overrides, and fills in defaults for
// anything left unset. LM_DATABASE_PASSWORD overrides
// database.password, and so on.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Running on defaults and environment alone is supported.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("LM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := buildConfig(v)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"app.name": "lastmile-backend",
		"app.env":  "development",
		"app.port": "8080",

		"database.host":               "localhost",
		"database.port":               5432,
		"database.user":               "postgres",
		"database.dbname":             "lastmile",
		"database.sslmode":            "disable",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  60,
		"database.conn_max_idle_time": 30,

		"redis.host": "localhost",
		"redis.port": 6379,

		"jwt.access_token_expiration":  15 * time.Minute,
		"jwt.refresh_token_expiration": 7 * 24 * time.Hour,
		"jwt.issuer":                   "lastmile-backend",
		"jwt.max_refresh_count":        30,

		"log.level":  "info",
		"log.format": "console",
		"log.output": "stdout",

		"http.read_timeout":     15 * time.Second,
		"http.write_timeout":    15 * time.Second,
		"http.idle_timeout":     60 * time.Second,
		"http.max_header_bytes": 1 << 20,
		"http.max_body_size":    10 << 20,
		// No default for cors_allow_origins: an empty list blocks all
		// cross-origin requests until origins are configured.
		"http.cors_allow_methods":  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		"http.cors_allow_headers":  []string{"Content-Type", "Authorization", "X-Request-ID"},
		"http.rate_limit_requests": 100,
		"http.rate_limit_window":   time.Minute,

		"payment.pay_url": "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		"payment.timeout": 15 * time.Minute,

		"telemetry.collector_endpoint": "localhost:4317",
		"telemetry.sampling_ratio":     1.0,
		"telemetry.service_name":       "lastmile-backend",
	}
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
}

func buildConfig(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),

			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
		},
		Payment: PaymentConfig{
			TmnCode:    v.GetString("payment.tmn_code"),
			HashSecret: v.GetString("payment.hash_secret"),
			PayURL:     v.GetString("payment.pay_url"),
			ReturnURL:  v.GetString("payment.return_url"),
			Timeout:    v.GetDuration("payment.timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			ProfilerEnabled:   v.GetBool("telemetry.profiler_enabled"),
			ProfilerAddress:   v.GetString("telemetry.profiler_address"),
		},
	}
}

// validate rejects settings that would misbehave at runtime. The
// production environment additionally requires every secret to be set.
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

func (c *Config) validateProduction() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	}
	if c.Payment.HashSecret == "" {
		return fmt.Errorf("payment.hash_secret is required in production")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	if c.Telemetry.DBLogFullSQL {
		return fmt.Errorf("telemetry.db_log_full_sql must be false in production to keep order and payment data out of traces")
	}
	return nil
}

// DSN builds the postgres connection URL. Credentials are URL-escaped
// so passwords with reserved characters survive.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
