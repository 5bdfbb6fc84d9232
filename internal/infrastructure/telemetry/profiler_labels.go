package telemetry

import (
	"context"
	"maps"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Label keys used to slice profiles in the Pyroscope UI.
const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelActorRole  = "actor_role"
	ProfilingLabelOperation  = "operation"
)

// maxLabelValueLength caps label values before they reach Pyroscope.
const maxLabelValueLength = 128

// highCardinalityLabels are keys whose values are per-entity rather
// than per-category. Each distinct label value is a separate profile
// series, so these are dropped outright. actor_role stays allowed:
// the role set is a handful of constants.
var highCardinalityLabels = map[string]bool{
	"user_id":         true,
	"request_id":      true,
	"order_id":        true,
	"tracking_number": true,
	"trace_id":        true,
	"span_id":         true,
	"session_id":      true,
}

// WithProfilingLabels runs fn with the given Pyroscope labels applied
// to its goroutine. The labels map is copied, and high-cardinality or
// malformed entries are dropped before tagging.
//
//	telemetry.WithProfilingLabels(ctx, map[string]string{
//	    telemetry.ProfilingLabelOperation: "close_settlement_batch",
//	}, func(c context.Context) {
//	    worker.Run(c)
//	})
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// sanitizeLabels turns a label map into the flat key/value slice the
// pprof API takes, with keys sorted for deterministic ordering.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	copied := make(map[string]string, len(labels))
	maps.Copy(copied, labels)

	keys := make([]string, 0, len(copied))
	for k := range copied {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(copied)*2)
	for _, key := range keys {
		value := copied[key]
		if key == "" || value == "" || highCardinalityLabels[key] {
			continue
		}
		if len(value) > maxLabelValueLength {
			value = value[:maxLabelValueLength]
		}
		if sanitized := sanitizeLabelKey(key); sanitized != "" {
			pairs = append(pairs, sanitized, value)
		}
	}
	return pairs
}

// sanitizeLabelKey normalizes keys to snake_case ASCII.
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")

	result := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			result = append(result, c)
		}
	}
	return string(result)
}
