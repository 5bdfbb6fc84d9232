// Package telemetry provides Pyroscope continuous profiling integration.
package telemetry

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig holds Pyroscope continuous profiling configuration.
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
	// Basic auth credentials, needed for Grafana Cloud.
	BasicAuthUser     string
	BasicAuthPassword string

	ProfileCPU           bool
	ProfileAllocObjects  bool
	ProfileAllocSpace    bool
	ProfileInuseObjects  bool
	ProfileInuseSpace    bool
	ProfileGoroutines    bool
	ProfileMutexCount    bool
	ProfileMutexDuration bool
	ProfileBlockCount    bool
	ProfileBlockDuration bool

	// MutexProfileFraction and BlockProfileRate tune the runtime
	// samplers; zero means the default of 5.
	MutexProfileFraction int
	BlockProfileRate     int
	DisableGCRuns        bool
}

// Profiler owns the Pyroscope session lifecycle. When profiling is
// disabled it is a no-op whose Stop still succeeds.
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
	config   ProfilerConfig
	mu       sync.Mutex
	stopped  bool
}

// NewProfiler starts a Pyroscope session, or returns a no-op profiler
// when cfg.Enabled is false.
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger, config: cfg}

	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled, using no-op profiler")
		return p, nil
	}
	if cfg.ServerAddress == "" {
		return nil, fmt.Errorf("profiler server address is required when profiling is enabled")
	}
	if cfg.ApplicationName == "" {
		return nil, fmt.Errorf("profiler application name is required when profiling is enabled")
	}

	if cfg.ProfileMutexCount || cfg.ProfileMutexDuration {
		fraction := cfg.MutexProfileFraction
		if fraction <= 0 {
			fraction = 5
		}
		runtime.SetMutexProfileFraction(fraction)
		logger.Debug("Mutex profiling enabled", zap.Int("fraction", fraction))
	}
	if cfg.ProfileBlockCount || cfg.ProfileBlockDuration {
		rate := cfg.BlockProfileRate
		if rate <= 0 {
			rate = 5
		}
		runtime.SetBlockProfileRate(rate)
		logger.Debug("Block profiling enabled", zap.Int("rate", rate))
	}

	types := cfg.profileTypes()
	if len(types) == 0 {
		logger.Warn("No profile types enabled, profiler will not collect any data")
	}

	tags := map[string]string{}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		tags["hostname"] = hostname
	}
	if podName := os.Getenv("POD_NAME"); podName != "" {
		tags["pod"] = podName
	}

	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.ApplicationName,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.BasicAuthUser,
		BasicAuthPassword: cfg.BasicAuthPassword,
		Logger:            newPyroscopeLogger(logger),
		Tags:              tags,
		ProfileTypes:      types,
		DisableGCRuns:     cfg.DisableGCRuns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	p.profiler = session

	logger.Info("Pyroscope profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
		zap.Int("profile_types", len(types)),
		zap.Bool("disable_gc_runs", cfg.DisableGCRuns),
	)
	return p, nil
}

func (cfg ProfilerConfig) profileTypes() []pyroscope.ProfileType {
	enabled := []struct {
		on bool
		pt pyroscope.ProfileType
	}{
		{cfg.ProfileCPU, pyroscope.ProfileCPU},
		{cfg.ProfileAllocObjects, pyroscope.ProfileAllocObjects},
		{cfg.ProfileAllocSpace, pyroscope.ProfileAllocSpace},
		{cfg.ProfileInuseObjects, pyroscope.ProfileInuseObjects},
		{cfg.ProfileInuseSpace, pyroscope.ProfileInuseSpace},
		{cfg.ProfileGoroutines, pyroscope.ProfileGoroutines},
		{cfg.ProfileMutexCount, pyroscope.ProfileMutexCount},
		{cfg.ProfileMutexDuration, pyroscope.ProfileMutexDuration},
		{cfg.ProfileBlockCount, pyroscope.ProfileBlockCount},
		{cfg.ProfileBlockDuration, pyroscope.ProfileBlockDuration},
	}

	var types []pyroscope.ProfileType
	for _, e := range enabled {
		if e.on {
			types = append(types, e.pt)
		}
	}
	return types
}

// Stop flushes pending profiles and stops the session. Safe to call
// more than once. The Pyroscope SDK has no context support here; it
// relies on its own internal timeouts.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true

	if p.profiler == nil {
		return nil
	}

	if err := p.profiler.Stop(); err != nil {
		p.logger.Error("Error stopping profiler", zap.Error(err))
		return fmt.Errorf("failed to stop profiler: %w", err)
	}
	p.logger.Info("Pyroscope profiler stopped")
	return nil
}

// pyroscopeLogger adapts zap to the pyroscope.Logger interface.
type pyroscopeLogger struct {
	sugar *zap.SugaredLogger
}

func newPyroscopeLogger(logger *zap.Logger) pyroscope.Logger {
	return &pyroscopeLogger{sugar: logger.Named("pyroscope").Sugar()}
}

func (l *pyroscopeLogger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *pyroscopeLogger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *pyroscopeLogger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }
