package telemetry

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_DisabledIsNoOp(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop(), "Stop must be idempotent")
}

func TestNewProfiler_RequiresAddressAndName(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "lastmile"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}, zap.NewNop())
	assert.Error(t, err)
}

func TestProfilerConfig_ProfileTypes(t *testing.T) {
	cfg := ProfilerConfig{
		ProfileCPU:        true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
	}

	types := cfg.profileTypes()
	assert.ElementsMatch(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	}, types)

	assert.Empty(t, ProfilerConfig{}.profileTypes())
}
