package capability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProbe is a canned-result probe for suite tests.
type stubProbe struct {
	name   string
	passed bool
	panics bool
}

func (p *stubProbe) Name() string { return p.name }

func (p *stubProbe) Run(_ context.Context) Result {
	if p.panics {
		panic("probe exploded")
	}
	return Result{Name: p.name, Passed: p.passed, Detail: "stub"}
}

// stubBattery builds a standard-size battery with the given pass count.
func stubBattery(passing int) []Probe {
	probes := make([]Probe, 0, 8)
	for i := 0; i < 8; i++ {
		probes = append(probes, &stubProbe{
			name:   fmt.Sprintf("probe_%d", i),
			passed: i < passing,
		})
	}
	return probes
}

func TestComputeVerdict(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		passed  int
		total   int
		verdict string
	}{
		{"all passing", 8, 8, VerdictFull},
		{"seven of eight", 7, 8, VerdictPartial},
		{"six of eight is the partial boundary", 6, 8, VerdictPartial},
		{"five of eight", 5, 8, VerdictFailing},
		{"none passing", 0, 8, VerdictFailing},
		{"three of four", 3, 4, VerdictPartial},
		{"single probe passing", 1, 1, VerdictFull},
		{"single probe failing", 0, 1, VerdictFailing},
		{"empty battery", 0, 0, VerdictFailing},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.verdict, ComputeVerdict(tt.passed, tt.total))
		})
	}
}

func TestSuiteRunVerdicts(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		passing int
		verdict string
	}{
		{"full", 8, VerdictFull},
		{"partial", 6, VerdictPartial},
		{"failing", 5, VerdictFailing},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			suite := NewSuite(nil, stubBattery(tt.passing)...)
			report := suite.Run(context.Background())

			assert.Equal(t, tt.verdict, report.Verdict)
			assert.Equal(t, tt.passing, report.Passed)
			assert.Equal(t, 8, report.Total)
		})
	}
}

func TestSuiteRunPreservesProbeOrder(t *testing.T) {
	t.Parallel()
	suite := NewSuite(nil, stubBattery(8)...)
	report := suite.Run(context.Background())

	require.Len(t, report.Results, 8)
	for i, result := range report.Results {
		assert.Equal(t, fmt.Sprintf("probe_%d", i), result.Name)
	}
}

func TestSuiteRunContainsPanics(t *testing.T) {
	t.Parallel()
	suite := NewSuite(nil,
		&stubProbe{name: "healthy", passed: true},
		&stubProbe{name: "unstable", panics: true},
		&stubProbe{name: "another", passed: true},
	)
	report := suite.Run(context.Background())

	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[0].Passed)
	assert.False(t, report.Results[1].Passed)
	assert.Contains(t, report.Results[1].Detail, "panicked")
	assert.True(t, report.Results[2].Passed)
	assert.Equal(t, 2, report.Passed)
}

func TestSuiteRunReportTiming(t *testing.T) {
	t.Parallel()
	suite := NewSuite(nil, stubBattery(8)...)
	report := suite.Run(context.Background())

	assert.WithinDuration(t, time.Now(), report.StartedAt, time.Minute)
	assert.GreaterOrEqual(t, report.Elapsed.Std(), time.Duration(0))
}

func TestNewDefaultSuiteBatteryComposition(t *testing.T) {
	t.Parallel()
	suite := NewDefaultSuite(SuiteConfig{})

	want := []string{
		ProbeServiceWorker,
		ProbeTransientStore,
		ProbeKeyValue,
		ProbeNetworkStatus,
		ProbeContentCache,
		ProbeBackgroundSync,
		ProbeOfflineService,
		ProbeManifest,
	}
	probes := suite.Probes()
	require.Len(t, probes, len(want))
	for i, name := range want {
		assert.Equal(t, name, probes[i].Name())
	}
	assert.Len(t, GetSchema(), len(want), "schema catalog must cover the battery")
}
