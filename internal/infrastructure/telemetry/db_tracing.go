// Package telemetry provides OpenTelemetry integration for distributed tracing.
package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures query span generation.
type DBTracingConfig struct {
	Enabled         bool
	// LogFullSQL includes query parameter values in spans. Parameter
	// values can contain customer phone numbers and addresses, keep
	// this off outside local development.
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DefaultDBTracingConfig returns the default database tracing configuration.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:         false,
		LogFullSQL:      false,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin wraps otelgorm and annotates query spans with row
// counts, table names and slow-query events.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin builds a plugin. Zero values in cfg fall back to
// the defaults from DefaultDBTracingConfig.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm installs otelgorm plus the timing callbacks on db.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := p.registerTimingCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// registerTimingCallbacks hooks every GORM operation type with a start
// timestamp before the operation and span enrichment after it.
func (p *DBTracingPlugin) registerTimingCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("otel_timing:before_create", markQueryStart),
		cb.Create().After("gorm:create").Register("otel_timing:after_create", p.enrichQuerySpan),
		cb.Query().Before("gorm:query").Register("otel_timing:before_query", markQueryStart),
		cb.Query().After("gorm:query").Register("otel_timing:after_query", p.enrichQuerySpan),
		cb.Update().Before("gorm:update").Register("otel_timing:before_update", markQueryStart),
		cb.Update().After("gorm:update").Register("otel_timing:after_update", p.enrichQuerySpan),
		cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", markQueryStart),
		cb.Delete().After("gorm:delete").Register("otel_timing:after_delete", p.enrichQuerySpan),
		cb.Row().Before("gorm:row").Register("otel_timing:before_row", markQueryStart),
		cb.Row().After("gorm:row").Register("otel_timing:after_row", p.enrichQuerySpan),
		cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", markQueryStart),
		cb.Raw().After("gorm:raw").Register("otel_timing:after_raw", p.enrichQuerySpan),
	)
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// enrichQuerySpan runs after each operation, once otelgorm has a span
// on the statement context.
func (p *DBTracingPlugin) enrichQuerySpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// Not-found is a normal outcome for lookups, not a span error.
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"
