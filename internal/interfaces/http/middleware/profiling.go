package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lastmile/backend/internal/infrastructure/telemetry"
)

// ProfilingConfig configures which requests get profiling labels.
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig skips health probes and API docs.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health", "/healthz", "/ready", "/metrics"},
		SkipPathPrefixes: []string{"/swagger", "/api-docs"},
	}
}

// Profiling returns the profiling middleware with default configuration.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig tags each request's goroutines with Pyroscope
// labels (method, route pattern, controller, actor_role) so profiles
// can be sliced per endpoint. All label values are bounded sets; actual
// request paths never become labels.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if skipProfiling(cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func skipProfiling(cfg ProfilingConfig, path string) bool {
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func profilingLabels(c *gin.Context) map[string]string {
	labels := make(map[string]string, 4)
	if method := c.Request.Method; method != "" {
		labels[telemetry.ProfilingLabelMethod] = method
	}
	route := c.FullPath()
	if route != "" {
		labels[telemetry.ProfilingLabelRoute] = route
	}
	if controller := controllerFromRoute(route); controller != "" {
		labels[telemetry.ProfilingLabelController] = controller
	}
	if role := getActorRoleFromContext(c); role != "" {
		labels[telemetry.ProfilingLabelActorRole] = role
	}
	return labels
}

// controllerFromRoute maps a route pattern to its resource segment:
// "/api/v1/orders/:id/assign" becomes "orders".
func controllerFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "", part == "api":
		case isVersionSegment(part):
		case strings.HasPrefix(part, ":"), strings.HasPrefix(part, "{"):
		default:
			return part
		}
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}
