package watch

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/grovetools/autoread/config"
	"github.com/grovetools/autoread/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{Interval: 1000}
	cfg.SetDefaults()
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config) (*Service, *fakeHost, *timerControl) {
	t.Helper()

	host := newFakeHost()
	ctl := &timerControl{}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc, err := NewService(host, cfg,
		WithTimerFunc(ctl.timerFunc),
		WithLogger(logrus.NewEntry(logger)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.Run(ctx)

	return svc, host, ctl
}

// sync waits for every queued event to be processed.
func (s *Service) sync() {
	s.call(func() error { return nil })
}

// tick fires the poll timer and waits for the check pass to complete.
func tick(svc *Service, ctl *timerControl) {
	ctl.fire()
	svc.sync()
}

func TestEnableDisableTimerLifecycle(t *testing.T) {
	svc, host, ctl := newTestService(t, testConfig())
	host.addBuffer(1, "a.go", 101)
	host.addBuffer(2, "b.go", 102)

	// Registering a buffer then immediately unregistering it leaves the
	// registry empty and the shared timer stopped.
	require.NoError(t, svc.EnableBuffer(1, 0))
	assert.True(t, svc.Active())
	require.NoError(t, svc.DisableBuffer(1))
	assert.Equal(t, 0, svc.Count())
	assert.False(t, svc.Active())

	// Two buffers: disabling one keeps the timer running, disabling the
	// second stops it.
	require.NoError(t, svc.EnableBuffer(1, 0))
	require.NoError(t, svc.EnableBuffer(2, 0))
	require.NoError(t, svc.DisableBuffer(1))
	assert.Equal(t, 1, svc.Count())
	assert.True(t, svc.Active())
	require.NoError(t, svc.DisableBuffer(2))
	assert.False(t, svc.Active())
	assert.True(t, ctl.active.stopped)
}

func TestEnableInvalidBuffer(t *testing.T) {
	svc, _, _ := newTestService(t, testConfig())

	err := svc.EnableBuffer(42, 0)
	assert.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidBuffer, errors.GetCode(err))
	assert.False(t, svc.Active())
}

func TestSetIntervalValidation(t *testing.T) {
	svc, _, _ := newTestService(t, testConfig())

	require.NoError(t, svc.SetInterval(750*time.Millisecond))
	assert.Equal(t, 750*time.Millisecond, svc.GetInterval())

	// Invalid values fail and leave the previous interval unchanged.
	err := svc.SetInterval(0)
	assert.Equal(t, errors.ErrCodeInvalidInterval, errors.GetCode(err))
	err = svc.SetInterval(-time.Second)
	assert.Equal(t, errors.ErrCodeInvalidInterval, errors.GetCode(err))
	assert.Equal(t, 750*time.Millisecond, svc.GetInterval())
}

func TestToggle(t *testing.T) {
	svc, host, ctl := newTestService(t, testConfig())
	host.addBuffer(1, "a.go", 101)

	// Toggle while disabled enables with a temporary interval without
	// mutating the persisted default.
	enabled, err := svc.ToggleBuffer(1, 500*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, ctl.intervals)
	assert.Equal(t, time.Second, svc.GetInterval())

	// Toggling again returns the buffer to its original state.
	enabled, err = svc.ToggleBuffer(1, 0)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.False(t, svc.Active())
}

func TestUpdateIntervalRestartsImmediately(t *testing.T) {
	svc, host, ctl := newTestService(t, testConfig())
	host.addBuffer(1, "a.go", 101)
	require.NoError(t, svc.EnableBuffer(1, 0))

	require.NoError(t, svc.UpdateInterval(100*time.Millisecond))

	assert.Equal(t, []time.Duration{time.Second, 100 * time.Millisecond}, ctl.intervals)
	// The restarted timer fires once immediately.
	assert.Equal(t, []time.Duration{0, 0}, ctl.initials)
	assert.Equal(t, time.Second, svc.GetInterval(), "persisted default must not change")
}

func TestCheckPassEmitsSignalsAndDropsInvalid(t *testing.T) {
	svc, host, ctl := newTestService(t, testConfig())
	host.addBuffer(1, "a.go", 101)
	host.addBuffer(2, "b.go", 102)
	require.NoError(t, svc.EnableBuffer(1, 0))
	require.NoError(t, svc.EnableBuffer(2, 0))

	tick(svc, ctl)
	assert.Equal(t, []Buffer{1, 2}, host.checks)
	assert.Equal(t, 1, host.signalCount(SignalPreCheck))
	assert.Equal(t, 1, host.signalCount(SignalPostCheck))

	// An invalid handle only removes that buffer; the pass continues.
	host.valid[1] = false
	tick(svc, ctl)
	assert.Equal(t, []Buffer{1, 2, 2}, host.checks)
	assert.Equal(t, 1, svc.Count())
	assert.True(t, svc.Active())

	// Emptying the registry during a pass stops the timer.
	host.valid[2] = false
	tick(svc, ctl)
	assert.Equal(t, 0, svc.Count())
	assert.False(t, svc.Active())
}

func TestEmptyEventProducesNoReloadSignals(t *testing.T) {
	svc, host, _ := newTestService(t, testConfig())
	host.addBuffer(1, "a.go", 101)
	host.windows[101].pos = Position{Line: 10}
	require.NoError(t, svc.EnableBuffer(1, 0))

	svc.HandleChange(ChangeEvent{Buffer: 1, HasContent: false, File: "a.go"})
	svc.sync()

	assert.Len(t, host.notices, 1, "notify_on_change fires for the empty event")
	assert.Equal(t, 0, host.signalCount(SignalPreReload))
	assert.Equal(t, 0, host.signalCount(SignalPostReload))
	assert.True(t, svc.reconciler.HasCapture(1), "pending capture must survive the empty event")
	assert.Equal(t, 0, host.cursorMutations)
}

func TestEmptyThenRestoredPreservesCursor(t *testing.T) {
	// Spec scenario: interval 500, notify on, preserve; buffer A reported
	// empty then non-empty with the cursor originally at line 10.
	cfg := &config.Config{Interval: 500}
	cfg.SetDefaults()
	svc, host, _ := newTestService(t, cfg)

	host.addBuffer(1, "a.go", 101)
	host.windows[101].pos = Position{Line: 10}
	host.windows[101].view = View{"topline": 5}
	require.NoError(t, svc.EnableBuffer(1, 0))

	// The empty reload clobbers the window state.
	host.windows[101].pos = Position{Line: 1}
	svc.HandleChange(ChangeEvent{Buffer: 1, HasContent: false, File: "a.go"})
	svc.HandleChange(ChangeEvent{Buffer: 1, HasContent: true, File: "a.go"})
	svc.sync()

	assert.Len(t, host.notices, 2)
	assert.Equal(t, 1, host.signalCount(SignalPreReload))
	assert.Equal(t, 1, host.signalCount(SignalPostReload))
	assert.Equal(t, Position{Line: 10}, host.windows[101].pos,
		"cursor must come from the capture taken before the empty episode")
	assert.Equal(t, View{"topline": 5}, host.windows[101].view)
}

func TestPolicyChangeDoesNotAffectInFlightCapture(t *testing.T) {
	svc, host, _ := newTestService(t, testConfig())
	host.addBuffer(1, "a.go", 101)
	host.windows[101].pos = Position{Line: 10}
	require.NoError(t, svc.EnableBuffer(1, 0))

	// The pending capture was taken under preserve; switching to none now
	// must not alter it.
	require.NoError(t, svc.SetCursorBehavior(1, BehaviorNone))

	host.windows[101].pos = Position{Line: 1}
	svc.HandleChange(ChangeEvent{Buffer: 1, HasContent: true, File: "a.go"})
	svc.sync()
	assert.Equal(t, Position{Line: 10}, host.windows[101].pos)

	// The next episode runs under none: no cursor-mutating calls.
	mutations := host.cursorMutations
	host.windows[101].pos = Position{Line: 1}
	svc.HandleChange(ChangeEvent{Buffer: 1, HasContent: true, File: "a.go"})
	svc.sync()
	assert.Equal(t, mutations, host.cursorMutations)
	assert.Equal(t, Position{Line: 1}, host.windows[101].pos)
}

func TestBehaviorNoneMakesNoCursorCalls(t *testing.T) {
	cfg := testConfig()
	cfg.CursorBehavior = config.BehaviorNone
	svc, host, _ := newTestService(t, cfg)

	host.addBuffer(1, "a.go", 101)
	require.NoError(t, svc.EnableBuffer(1, 0))

	for i := 0; i < 3; i++ {
		svc.HandleChange(ChangeEvent{Buffer: 1, HasContent: false, File: "a.go"})
		svc.HandleChange(ChangeEvent{Buffer: 1, HasContent: true, File: "a.go"})
	}
	svc.sync()

	assert.Equal(t, 0, host.cursorMutations)
	assert.Equal(t, 3, host.signalCount(SignalPostReload))
}

func TestBehaviorScrollDown(t *testing.T) {
	cfg := testConfig()
	cfg.CursorBehavior = config.BehaviorScrollDown
	svc, host, _ := newTestService(t, cfg)

	host.addBuffer(1, "tail.log", 101)
	host.windows[101].pos = Position{Line: 3}
	require.NoError(t, svc.EnableBuffer(1, 0))

	svc.HandleChange(ChangeEvent{Buffer: 1, HasContent: true, File: "tail.log"})
	svc.sync()

	assert.Equal(t, Position{Line: 9999}, host.windows[101].pos,
		"scroll_down moves the cursor to the end of content")
}

func TestUnmonitoredChangeIgnored(t *testing.T) {
	svc, host, _ := newTestService(t, testConfig())
	host.addBuffer(1, "a.go", 101)
	require.NoError(t, svc.EnableBuffer(1, 0))

	svc.HandleChange(ChangeEvent{Buffer: 99, HasContent: true, File: "other.go"})
	svc.sync()

	assert.Empty(t, host.notices)
	assert.Equal(t, 0, host.signalCount(SignalPreReload))
}

func TestNotifyDisabled(t *testing.T) {
	cfg := testConfig()
	off := false
	cfg.NotifyOnChange = &off
	svc, host, _ := newTestService(t, cfg)

	host.addBuffer(1, "a.go", 101)
	require.NoError(t, svc.EnableBuffer(1, 0))

	svc.HandleChange(ChangeEvent{Buffer: 1, HasContent: true, File: "a.go"})
	svc.sync()

	assert.Empty(t, host.notices)
	assert.Equal(t, 1, host.signalCount(SignalPostReload), "reload signals are independent of notify_on_change")
}

func TestSetCursorBehaviorNotRegistered(t *testing.T) {
	svc, host, _ := newTestService(t, testConfig())
	host.addBuffer(1, "a.go", 101)

	err := svc.SetCursorBehavior(1, BehaviorScrollDown)
	assert.Equal(t, errors.ErrCodeNotRegistered, errors.GetCode(err))
}

func TestSetupReplacesSettingsWholesale(t *testing.T) {
	svc, _, _ := newTestService(t, testConfig())

	bad := &config.Config{Interval: -5}
	bad.SetDefaults()
	err := svc.Setup(bad)
	assert.Equal(t, errors.ErrCodeInvalidInterval, errors.GetCode(err))
	assert.Equal(t, time.Second, svc.GetInterval(), "invalid config must not displace the last valid one")

	good := &config.Config{Interval: 2000}
	good.SetDefaults()
	require.NoError(t, svc.Setup(good))
	assert.Equal(t, 2*time.Second, svc.GetInterval())
}

func TestShouldMonitorExcludes(t *testing.T) {
	cfg := testConfig()
	cfg.Exclude = []string{"*.log", "node_modules"}
	svc, _, _ := newTestService(t, cfg)

	assert.False(t, svc.ShouldMonitor("debug.log"))
	assert.False(t, svc.ShouldMonitor("node_modules/left-pad/index.js"))
	assert.True(t, svc.ShouldMonitor("main.go"))
	assert.False(t, svc.ShouldMonitor(""), "unnamed buffers are never auto-monitored")
}

func TestAccessorsAfterShutdown(t *testing.T) {
	host := newFakeHost()
	ctl := &timerControl{}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc, err := NewService(host, testConfig(),
		WithTimerFunc(ctl.timerFunc),
		WithLogger(logrus.NewEntry(logger)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Run(ctx)

	host.addBuffer(1, "a.go", 101)
	require.NoError(t, svc.EnableBuffer(1, 0))
	assert.True(t, svc.IsEnabled(1))

	cancel()
	<-svc.done

	// The read-only accessors degrade to zero values once the loop is gone.
	assert.False(t, svc.IsEnabled(1))
	assert.False(t, svc.Active())
	assert.Equal(t, 0, svc.Count())
	assert.Equal(t, time.Duration(0), svc.GetInterval())
	assert.False(t, svc.AutoEnable())
	assert.False(t, svc.ShouldMonitor("main.go"))

	// Mutating operations surface the failure instead.
	err = svc.DisableBuffer(1)
	assert.Equal(t, errors.ErrCodeInternal, errors.GetCode(err))
}

func TestStaleNotificationAfterDisable(t *testing.T) {
	svc, host, _ := newTestService(t, testConfig())
	host.addBuffer(1, "a.go", 101)
	require.NoError(t, svc.EnableBuffer(1, 0))
	require.NoError(t, svc.DisableBuffer(1))

	// A notification that raced with the disable is dropped entirely.
	svc.HandleChange(ChangeEvent{Buffer: 1, HasContent: true, File: "a.go"})
	svc.sync()

	assert.Empty(t, host.notices)
	assert.Equal(t, 0, host.signalCount(SignalPreReload))
}
