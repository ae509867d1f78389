package watch

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Timer is a handle to a running recurring timer.
type Timer interface {
	Stop()
}

// TimerFunc creates a recurring timer that calls fire after initialDelay and
// then every interval until stopped. Tests substitute a manual
// implementation; production uses newTickerTimer.
type TimerFunc func(initialDelay, interval time.Duration, fire func()) Timer

type tickerTimer struct {
	stop chan struct{}
}

func (t *tickerTimer) Stop() {
	close(t.stop)
}

// newTickerTimer is the production TimerFunc. The fire callback is expected
// to hand off onto the service run loop, so it never blocks for long.
func newTickerTimer(initialDelay, interval time.Duration, fire func()) Timer {
	t := &tickerTimer{stop: make(chan struct{})}
	go func() {
		timer := time.NewTimer(initialDelay)
		defer timer.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-timer.C:
				fire()
				timer.Reset(interval)
			}
		}
	}()
	return t
}

// Scheduler owns the single shared poll timer: Stopped (no timer) or Running
// (timer firing every effective interval). It is lazily started on the first
// registration and stopped on the last deregistration; the Service owns that
// link. All methods run on the service loop.
type Scheduler struct {
	log      *logrus.Entry
	newTimer TimerFunc
	onFire   func()

	interval time.Duration // persisted default
	override time.Duration // temporary override while Running, 0 = none
	timer    Timer         // nil when Stopped
}

// NewScheduler creates a stopped scheduler. onFire runs on every timer fire
// and must post the check pass onto the service loop.
func NewScheduler(interval time.Duration, newTimer TimerFunc, onFire func(), log *logrus.Entry) *Scheduler {
	if newTimer == nil {
		newTimer = newTickerTimer
	}
	return &Scheduler{
		log:      log,
		newTimer: newTimer,
		onFire:   onFire,
		interval: interval,
	}
}

// Running reports whether the shared timer exists.
func (s *Scheduler) Running() bool {
	return s.timer != nil
}

// EffectiveInterval returns the interval the timer is (or would be) using:
// the temporary override when set, the persisted default otherwise.
func (s *Scheduler) EffectiveInterval() time.Duration {
	if s.override > 0 {
		return s.override
	}
	return s.interval
}

// EnsureRunning creates the timer if Stopped, firing immediately and then on
// the effective cadence. override 0 means the persisted default. Already
// Running is a no-op: the override is not applied retroactively.
func (s *Scheduler) EnsureRunning(override time.Duration) {
	if s.timer != nil {
		return
	}
	s.override = override
	interval := s.EffectiveInterval()
	s.log.WithField("interval", interval).Debug("Starting poll timer")
	s.timer = s.newTimer(0, interval, s.onFire)
}

// UpdateInterval stops and restarts the timer with a new effective interval,
// firing once immediately as part of the restart. Only meaningful while
// Running; a no-op when Stopped.
func (s *Scheduler) UpdateInterval(override time.Duration) {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	s.override = override
	interval := s.EffectiveInterval()
	s.log.WithField("interval", interval).Debug("Restarting poll timer")
	s.timer = s.newTimer(0, interval, s.onFire)
}

// Stop cancels the timer. A check pass already handed to the loop still
// runs; only future ticks are cancelled. Safe to call when already Stopped.
func (s *Scheduler) Stop() {
	if s.timer == nil {
		return
	}
	s.log.Debug("Stopping poll timer")
	s.timer.Stop()
	s.timer = nil
	s.override = 0
}

// SetInterval updates the persisted default interval. A Running timer keeps
// its current cadence until restarted via UpdateInterval.
func (s *Scheduler) SetInterval(interval time.Duration) {
	s.interval = interval
}

// Interval returns the persisted default interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}
