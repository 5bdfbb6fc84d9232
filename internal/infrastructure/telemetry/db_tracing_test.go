package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedOrder struct {
	ID           uint   `gorm:"primaryKey"`
	TrackingCode string `gorm:"size:32"`
	CreatedAt    time.Time
}

func (tracedOrder) TableName() string { return "orders" }

func openTracedDB(t *testing.T, cfg DBTracingConfig) (*gorm.DB, *tracetest.SpanRecorder) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedOrder{}))

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	// otelgorm picks up the global provider when the plugin is built.
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	plugin := NewDBTracingPlugin(cfg, zaptest.NewLogger(t))
	require.NoError(t, plugin.RegisterOtelGorm(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	t.Cleanup(func() { span.End() })

	return db.WithContext(ctx), sr
}

func lastQuerySpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	spans := sr.Ended()
	require.NotEmpty(t, spans)
	return spans[len(spans)-1]
}

func attrsOf(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL, "parameter values must stay out of spans by default")
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestNewDBTracingPlugin_FillsZeroValues(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())

	assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBSystem)
}

func TestRegisterOtelGorm_DisabledIsNoOp(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	p := NewDBTracingPlugin(DBTracingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, p.RegisterOtelGorm(db))

	// otelgorm was never installed, so the callback name is free.
	err = db.Callback().Create().Before("gorm:create").Register("otel_timing:before_create", func(*gorm.DB) {})
	assert.NoError(t, err)
}

func TestQuerySpan_TableAndRowsAffected(t *testing.T) {
	db, sr := openTracedDB(t, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Minute,
		DBSystem:        "sqlite",
	})

	require.NoError(t, db.Create(&tracedOrder{TrackingCode: "SPXHN0001"}).Error)

	attrs := attrsOf(lastQuerySpan(t, sr))
	assert.Equal(t, "orders", attrs["db.sql.table"].AsString())
	assert.Equal(t, int64(1), attrs["db.rows_affected"].AsInt64())
}

func TestQuerySpan_SlowQueryMarked(t *testing.T) {
	db, sr := openTracedDB(t, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Nanosecond,
		DBSystem:        "sqlite",
	})

	var orders []tracedOrder
	require.NoError(t, db.Find(&orders).Error)

	span := lastQuerySpan(t, sr)
	attrs := attrsOf(span)
	assert.True(t, attrs["db.slow_query"].AsBool())

	var hasEvent bool
	for _, ev := range span.Events() {
		if ev.Name == "slow_query_warning" {
			hasEvent = true
		}
	}
	assert.True(t, hasEvent)
}

func TestQuerySpan_FastQueryNotMarked(t *testing.T) {
	db, sr := openTracedDB(t, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Minute,
		DBSystem:        "sqlite",
	})

	var orders []tracedOrder
	require.NoError(t, db.Find(&orders).Error)

	attrs := attrsOf(lastQuerySpan(t, sr))
	_, marked := attrs["db.slow_query"]
	assert.False(t, marked)
}

func TestQuerySpan_RecordNotFoundIsNotAnError(t *testing.T) {
	db, sr := openTracedDB(t, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Minute,
		DBSystem:        "sqlite",
	})

	var order tracedOrder
	err := db.First(&order, "tracking_code = ?", "SPX-MISSING").Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	span := lastQuerySpan(t, sr)
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestQuerySpan_SQLErrorMarksSpan(t *testing.T) {
	db, sr := openTracedDB(t, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Minute,
		DBSystem:        "sqlite",
	})

	err := db.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)

	span := lastQuerySpan(t, sr)
	assert.Equal(t, codes.Error, span.Status().Code)
}

func TestRegisterOtelGorm_DoubleRegistrationFails(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	cfg := DBTracingConfig{Enabled: true, SlowQueryThresh: time.Minute, DBSystem: "sqlite"}
	p := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, p.RegisterOtelGorm(db))
	assert.Error(t, p.RegisterOtelGorm(db))
}

func TestEnrichQuerySpan_NoSpanOnContext(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedOrder{}))

	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Minute, DBSystem: "sqlite"}, zap.NewNop())
	require.NoError(t, p.RegisterOtelGorm(db))

	// Plain background context: callbacks must tolerate the absent span.
	assert.NoError(t, db.Create(&tracedOrder{TrackingCode: "SPXHN0002"}).Error)
}
