package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"LM_APP_NAME":                os.Getenv("LM_APP_NAME"),
		"LM_APP_ENV":                 os.Getenv("LM_APP_ENV"),
		"LM_APP_PORT":                os.Getenv("LM_APP_PORT"),
		"LM_DATABASE_HOST":           os.Getenv("LM_DATABASE_HOST"),
		"LM_DATABASE_PORT":           os.Getenv("LM_DATABASE_PORT"),
		"LM_DATABASE_USER":           os.Getenv("LM_DATABASE_USER"),
		"LM_DATABASE_PASSWORD":       os.Getenv("LM_DATABASE_PASSWORD"),
		"LM_DATABASE_DBNAME":         os.Getenv("LM_DATABASE_DBNAME"),
		"LM_DATABASE_SSLMODE":        os.Getenv("LM_DATABASE_SSLMODE"),
		"LM_DATABASE_MAX_OPEN_CONNS": os.Getenv("LM_DATABASE_MAX_OPEN_CONNS"),
		"LM_DATABASE_MAX_IDLE_CONNS": os.Getenv("LM_DATABASE_MAX_IDLE_CONNS"),
		"LM_JWT_SECRET":              os.Getenv("LM_JWT_SECRET"),
		"LM_PAYMENT_HASH_SECRET":     os.Getenv("LM_PAYMENT_HASH_SECRET"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "lastmile-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "lastmile", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "lastmile-backend", cfg.Telemetry.ServiceName)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("env vars override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("LM_APP_NAME", "custom-app")
		os.Setenv("LM_APP_PORT", "9090")
		os.Setenv("LM_DATABASE_HOST", "db.internal")
		os.Setenv("LM_DATABASE_PORT", "5433")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "custom-app", cfg.App.Name)
		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
	})

	t.Run("production requires jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("LM_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production requires database password and ssl", func(t *testing.T) {
		clearEnv()
		os.Setenv("LM_APP_ENV", "production")
		os.Setenv("LM_JWT_SECRET", "0123456789abcdef0123456789abcdef")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("production requires payment hash secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("LM_APP_ENV", "production")
		os.Setenv("LM_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		os.Setenv("LM_DATABASE_PASSWORD", "secret")
		os.Setenv("LM_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payment.hash_secret")
	})

	t.Run("production config valid with all secrets set", func(t *testing.T) {
		clearEnv()
		os.Setenv("LM_APP_ENV", "production")
		os.Setenv("LM_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		os.Setenv("LM_DATABASE_PASSWORD", "secret")
		os.Setenv("LM_DATABASE_SSLMODE", "require")
		os.Setenv("LM_PAYMENT_HASH_SECRET", "gateway-hash-secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
		assert.Equal(t, "gateway-hash-secret", cfg.Payment.HashSecret)
	})
}

func TestValidate(t *testing.T) {
	t.Run("rejects idle conns exceeding open conns", func(t *testing.T) {
		cfg := &Config{
			Database: DatabaseConfig{MaxOpenConns: 5, MaxIdleConns: 10},
		}
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		cfg := &Config{
			Database:  DatabaseConfig{MaxOpenConns: 5, MaxIdleConns: 2},
			Telemetry: TelemetryConfig{SamplingRatio: 1.5},
		}
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "lastmile",
		SSLMode:  "disable",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}
