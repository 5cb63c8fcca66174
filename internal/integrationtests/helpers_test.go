package integrationtests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/gridwalk/internal/app"
	"github.com/specialistvlad/gridwalk/internal/handlers"
	"github.com/specialistvlad/gridwalk/internal/manifest"
	"github.com/specialistvlad/gridwalk/internal/testutil"
	"github.com/specialistvlad/gridwalk/modules/fail"
	"github.com/stretchr/testify/require"
)

// executionRecord holds the start and end times of one step's execution.
type executionRecord struct {
	Start time.Time
	End   time.Time
}

// mockSleeperModule registers the "sleeper" kind: it sleeps for a fixed
// duration and records when each id ran and how many ran at once.
type mockSleeperModule struct {
	sleepDuration time.Duration

	mu             sync.Mutex
	executionTimes map[string]*executionRecord
	active         int
	maxActive      int
}

func newSleeper(d time.Duration) *mockSleeperModule {
	return &mockSleeperModule{sleepDuration: d, executionTimes: make(map[string]*executionRecord)}
}

type sleeperInput struct {
	ID string `arg:"id"`
}

func (m *mockSleeperModule) Register(h *handlers.Handlers) {
	h.RegisterHandler("sleeper", &handlers.RegisteredHandler{
		NewInput: func() any { return new(sleeperInput) },
		Fn: func(ctx context.Context, inputRaw any) error {
			input := inputRaw.(*sleeperInput)

			m.mu.Lock()
			m.active++
			if m.active > m.maxActive {
				m.maxActive = m.active
			}
			m.mu.Unlock()

			startTime := time.Now()
			select {
			case <-time.After(m.sleepDuration):
			case <-ctx.Done():
				return ctx.Err()
			}
			endTime := time.Now()

			m.mu.Lock()
			m.active--
			m.executionTimes[input.ID] = &executionRecord{Start: startTime, End: endTime}
			m.mu.Unlock()
			return nil
		},
	})
}

func (m *mockSleeperModule) record(t *testing.T, id string) *executionRecord {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.executionTimes[id]
	require.True(t, ok, "step %s never ran", id)
	return rec
}

func (m *mockSleeperModule) ran() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.executionTimes)
}

func (m *mockSleeperModule) peak() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxActive
}

// runResult is what a full application run produced.
type runResult struct {
	App      *app.App
	Manifest *manifest.Manifest
	Err      error
	Output   string
	Logs     string
}

// runGrid writes gridHCL to a temp dir and runs the whole application over
// it with the sleeper and fail modules registered.
func runGrid(t *testing.T, gridHCL string, cfg app.Config, sleeper *mockSleeperModule) runResult {
	t.Helper()
	cfg.GridPath = testutil.WriteFiles(t, map[string]string{"main.hcl": gridHCL})

	a, out, logs := app.SetupAppTest(t, cfg, sleeper, &fail.Module{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	m, err := a.Run(ctx)

	return runResult{App: a, Manifest: m, Err: err, Output: out.String(), Logs: logs.String()}
}

// states maps node id to final state name.
func states(m *manifest.Manifest) map[string]string {
	out := make(map[string]string, len(m.Nodes))
	for _, n := range m.Nodes {
		out[n.ID] = n.State
	}
	return out
}
