package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer name used for business spans.
const TracerName = "lastmile-backend"

// SpanOption configures span start options.
type SpanOption func(*spanOptions)

type spanOptions struct {
	attributes []attribute.KeyValue
	kind       trace.SpanKind
}

// WithAttribute attaches an attribute to the span at start.
func WithAttribute(key string, value interface{}) SpanOption {
	return func(opts *spanOptions) {
		opts.attributes = append(opts.attributes, toAttribute(key, value))
	}
}

// WithSpanKind overrides the default internal span kind.
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(opts *spanOptions) {
		opts.kind = kind
	}
}

// StartSpan opens a span on the global tracer. The caller owns the
// returned span and must End it:
//
//	ctx, span := telemetry.StartSpan(ctx, "order.create")
//	defer span.End()
func StartSpan(ctx context.Context, spanName string, opts ...SpanOption) (context.Context, trace.Span) {
	options := &spanOptions{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(options)
	}

	startOpts := []trace.SpanStartOption{trace.WithSpanKind(options.kind)}
	if len(options.attributes) > 0 {
		startOpts = append(startOpts, trace.WithAttributes(options.attributes...))
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, spanName, startOpts...)
}

// StartServiceSpan opens a span named {service}.{method}, the
// convention used by the application layer ("settlement.submit_cod").
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, opts...)
}

// SetAttributes attaches alternating key/value pairs to a span.
// Non-string keys are skipped.
//
//	telemetry.SetAttributes(span,
//	    telemetry.SpanAttrOrderID, orderID.String(),
//	    telemetry.SpanAttrActorRole, string(actor.Role),
//	)
func SetAttributes(span trace.Span, keyValues ...interface{}) {
	if span == nil {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, keyValues[i+1]))
	}
	span.SetAttributes(attrs...)
}

// RecordError records err on the span and flips its status to error.
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}

// Attribute keys used on business spans.
const (
	SpanAttrOrderID        = "order_id"
	SpanAttrTrackingNumber = "tracking_number"
	SpanAttrOrderStatus    = "order_status"

	SpanAttrActorID   = "actor_id"
	SpanAttrActorRole = "actor_role"

	SpanAttrShipmentID   = "shipment_id"
	SpanAttrShipmentCode = "shipment_code"

	SpanAttrBatchID         = "batch_id"
	SpanAttrBatchCode       = "batch_code"
	SpanAttrTransactionCode = "transaction_code"
	SpanAttrPaymentGateway  = "payment_gateway"
	SpanAttrAmount          = "amount"
)
