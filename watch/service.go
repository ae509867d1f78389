package watch

import (
	"context"
	"time"

	"github.com/grovetools/autoread/config"
	"github.com/grovetools/autoread/errors"
	"github.com/grovetools/autoread/logging"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"
)

// Settings are the validated runtime settings built from a config.Config.
// They are installed wholesale: an invalid candidate never displaces the
// settings currently in effect.
type Settings struct {
	Interval       time.Duration
	NotifyOnChange bool
	CursorBehavior Behavior
	AutoEnable     bool

	exclude *patternmatcher.PatternMatcher
}

// settingsFromConfig validates cfg and converts it into Settings.
func settingsFromConfig(cfg *config.Config) (Settings, error) {
	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	behavior, err := ParseBehavior(cfg.CursorBehavior)
	if err != nil {
		return Settings{}, err
	}
	matcher, err := cfg.ExcludeMatcher()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Interval:       time.Duration(cfg.Interval) * time.Millisecond,
		NotifyOnChange: cfg.Notify(),
		CursorBehavior: behavior,
		AutoEnable:     cfg.Auto(),
		exclude:        matcher,
	}, nil
}

// Service owns the monitoring state: settings, registry, scheduler and
// reconciler. All state is mutated exclusively on the run loop (Run); the
// timer goroutine and the host's notification callbacks only post onto the
// loop, so the core needs no locks. Multiple independent Services can
// coexist, which the tests rely on.
type Service struct {
	log        *logrus.Entry
	host       Host
	settings   Settings
	registry   *Registry
	scheduler  *Scheduler
	reconciler *Reconciler

	queue chan func()
	done  chan struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithTimerFunc substitutes the timer implementation. Tests use this to
// drive check passes manually.
func WithTimerFunc(tf TimerFunc) Option {
	return func(s *Service) {
		s.scheduler.newTimer = tf
	}
}

// WithLogger substitutes the service logger.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Service) {
		s.log = log
		s.scheduler.log = log
		s.reconciler.log = log
	}
}

// NewService validates cfg and builds a stopped service around the host.
// Run must be started before any other method is used.
func NewService(host Host, cfg *config.Config, opts ...Option) (*Service, error) {
	settings, err := settingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	log := logging.NewLogger("autoread")
	s := &Service{
		log:      log,
		host:     host,
		settings: settings,
		registry: NewRegistry(settings.CursorBehavior),
		queue:    make(chan func(), 64),
		done:     make(chan struct{}),
	}
	s.scheduler = NewScheduler(settings.Interval, nil, func() {
		s.dispatch(s.checkPass)
	}, log)
	s.reconciler = NewReconciler(host, s.registry, log)

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run consumes the event queue until ctx is cancelled. It is the single
// goroutine on which all core state is touched.
func (s *Service) Run(ctx context.Context) {
	defer close(s.done)
	defer s.scheduler.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-s.queue:
			fn()
		}
	}
}

// dispatch posts fn onto the run loop without waiting.
func (s *Service) dispatch(fn func()) {
	select {
	case s.queue <- fn:
	case <-s.done:
	}
}

// call posts fn onto the run loop and waits for its result. Once the loop
// has stopped it fails with INTERNAL_ERROR; the read-only accessors built on
// it swallow that error and report zero values, which is the documented
// post-shutdown behavior.
func (s *Service) call(fn func() error) error {
	errc := make(chan error, 1)
	select {
	case s.queue <- func() { errc <- fn() }:
	case <-s.done:
		return errors.New(errors.ErrCodeInternal, "service loop is not running")
	}
	select {
	case err := <-errc:
		return err
	case <-s.done:
		return errors.New(errors.ErrCodeInternal, "service loop stopped")
	}
}

// checkPass runs one poll iteration: ask the host to re-check every
// monitored buffer. Buffers whose handles have gone invalid are dropped and
// the pass continues; no failure stops the timer except the registry
// reaching zero.
func (s *Service) checkPass() {
	if s.registry.Count() == 0 {
		// A tick can land after the last deregistration if it was already
		// queued; there is nothing to check.
		s.scheduler.Stop()
		return
	}

	s.host.EmitSignal(SignalPreCheck, map[string]interface{}{
		"buffers": s.registry.Count(),
	})

	checked := 0
	for _, b := range s.registry.Buffers() {
		if !s.host.BufferValid(b) {
			s.log.WithField("buffer", b).Debug("Dropping invalid buffer from monitoring")
			s.drop(b)
			continue
		}
		if err := s.host.CheckBuffer(b); err != nil {
			if errors.Is(err, errors.ErrCodeInvalidBuffer) {
				s.drop(b)
				continue
			}
			s.log.WithField("buffer", b).WithError(err).Debug("Re-check failed")
			continue
		}
		checked++
	}

	s.host.EmitSignal(SignalPostCheck, map[string]interface{}{
		"checked": checked,
	})

	if s.registry.Count() == 0 {
		s.scheduler.Stop()
	}
}

// drop removes a buffer and its pending capture.
func (s *Service) drop(b Buffer) {
	s.registry.Unregister(b)
	s.reconciler.Discard(b)
}

// HandleChange feeds a host change notification into the run loop. Safe to
// call from any goroutine; processing happens asynchronously.
func (s *Service) HandleChange(ev ChangeEvent) {
	s.dispatch(func() {
		if !s.scheduler.Running() {
			// Monitoring is globally off; stale notifications are ignored.
			return
		}
		s.reconciler.HandleChange(ev, s.settings.NotifyOnChange)
	})
}

// EnableBuffer starts monitoring a buffer. interval > 0 is a temporary
// override for the shared timer, used only if this registration starts it;
// the persisted default interval is not mutated.
func (s *Service) EnableBuffer(b Buffer, interval time.Duration) error {
	return s.call(func() error {
		if interval < 0 {
			return errors.InvalidInterval(interval.Milliseconds())
		}
		if !s.host.BufferValid(b) {
			return errors.InvalidBuffer(int(b))
		}
		if s.registry.Register(b) {
			rec, _ := s.registry.Get(b)
			// Record the view state now so the very first reload episode
			// has something to restore.
			s.reconciler.InstallCapture(b, rec.Behavior)
			s.log.WithFields(logrus.Fields{
				"buffer":   b,
				"behavior": rec.Behavior,
			}).Info("Monitoring buffer")
		}
		s.scheduler.EnsureRunning(interval)
		return nil
	})
}

// DisableBuffer stops monitoring a buffer. Disabling an unmonitored buffer
// is a no-op. Stopping the last buffer stops the shared timer.
func (s *Service) DisableBuffer(b Buffer) error {
	return s.call(func() error {
		if s.registry.Unregister(b) {
			s.reconciler.Discard(b)
			s.log.WithField("buffer", b).Info("Stopped monitoring buffer")
		}
		if s.registry.Count() == 0 {
			s.scheduler.Stop()
		}
		return nil
	})
}

// DisableAll stops monitoring every buffer and stops the shared timer.
func (s *Service) DisableAll() error {
	return s.call(func() error {
		s.registry.UnregisterAll()
		s.reconciler.DiscardAll()
		s.scheduler.Stop()
		return nil
	})
}

// ToggleBuffer flips monitoring for a buffer and reports the new state.
// interval has the same meaning as in EnableBuffer.
func (s *Service) ToggleBuffer(b Buffer, interval time.Duration) (bool, error) {
	var enabled bool
	err := s.call(func() error {
		if s.registry.IsRegistered(b) {
			s.registry.Unregister(b)
			s.reconciler.Discard(b)
			if s.registry.Count() == 0 {
				s.scheduler.Stop()
			}
			enabled = false
			return nil
		}
		if interval < 0 {
			return errors.InvalidInterval(interval.Milliseconds())
		}
		if !s.host.BufferValid(b) {
			return errors.InvalidBuffer(int(b))
		}
		if s.registry.Register(b) {
			rec, _ := s.registry.Get(b)
			s.reconciler.InstallCapture(b, rec.Behavior)
		}
		s.scheduler.EnsureRunning(interval)
		enabled = true
		return nil
	})
	return enabled, err
}

// IsEnabled reports whether a buffer is currently monitored. Always false
// after the run loop has stopped.
func (s *Service) IsEnabled(b Buffer) bool {
	var enabled bool
	s.call(func() error {
		enabled = s.registry.IsRegistered(b)
		return nil
	})
	return enabled
}

// Active reports whether the shared timer is running. Always false after
// the run loop has stopped.
func (s *Service) Active() bool {
	var active bool
	s.call(func() error {
		active = s.scheduler.Running()
		return nil
	})
	return active
}

// Count returns the number of monitored buffers, zero after the run loop
// has stopped.
func (s *Service) Count() int {
	var n int
	s.call(func() error {
		n = s.registry.Count()
		return nil
	})
	return n
}

// SetInterval updates the persisted default poll interval. Fails with
// INVALID_INTERVAL for non-positive values, leaving the previous interval
// unchanged. A running timer keeps its cadence until UpdateInterval.
func (s *Service) SetInterval(interval time.Duration) error {
	return s.call(func() error {
		if interval <= 0 {
			return errors.InvalidInterval(interval.Milliseconds())
		}
		s.settings.Interval = interval
		s.scheduler.SetInterval(interval)
		return nil
	})
}

// GetInterval returns the persisted default poll interval, zero after the
// run loop has stopped.
func (s *Service) GetInterval() time.Duration {
	var d time.Duration
	s.call(func() error {
		d = s.settings.Interval
		return nil
	})
	return d
}

// UpdateInterval restarts the running timer with a temporary interval
// override (0 reverts to the persisted default), firing once immediately.
// The persisted default is not mutated. A no-op while stopped.
func (s *Service) UpdateInterval(interval time.Duration) error {
	return s.call(func() error {
		if interval < 0 {
			return errors.InvalidInterval(interval.Milliseconds())
		}
		s.scheduler.UpdateInterval(interval)
		return nil
	})
}

// SetCursorBehavior updates one monitored buffer's cursor policy and the
// default for future registrations. Fails with NOT_REGISTERED when the
// buffer is not monitored. A pending capture keeps the behavior it was
// created with.
func (s *Service) SetCursorBehavior(b Buffer, behavior Behavior) error {
	return s.call(func() error {
		return s.registry.SetBehavior(b, behavior)
	})
}

// SetGlobalCursorBehavior updates every monitored buffer's cursor policy and
// the default for future registrations.
func (s *Service) SetGlobalCursorBehavior(behavior Behavior) error {
	return s.call(func() error {
		s.registry.SetGlobalBehavior(behavior)
		return nil
	})
}

// Setup validates cfg and installs it wholesale. On failure the previous
// settings stay in effect and an error is returned.
func (s *Service) Setup(cfg *config.Config) error {
	return s.call(func() error {
		settings, err := settingsFromConfig(cfg)
		if err != nil {
			return err
		}
		s.settings = settings
		s.registry.SetDefaultBehavior(settings.CursorBehavior)
		s.scheduler.SetInterval(settings.Interval)
		return nil
	})
}

// AutoEnable reports whether buffers should be monitored automatically as
// they are read. Always false after the run loop has stopped.
func (s *Service) AutoEnable() bool {
	var auto bool
	s.call(func() error {
		auto = s.settings.AutoEnable
		return nil
	})
	return auto
}

// ShouldMonitor reports whether a file name passes the exclude patterns.
// Always false after the run loop has stopped.
func (s *Service) ShouldMonitor(name string) bool {
	var ok bool
	s.call(func() error {
		ok = s.shouldMonitor(name)
		return nil
	})
	return ok
}

func (s *Service) shouldMonitor(name string) bool {
	if name == "" {
		return false
	}
	if s.settings.exclude == nil {
		return true
	}
	matched, err := s.settings.exclude.MatchesOrParentMatches(name)
	if err != nil {
		s.log.WithField("file", name).WithError(err).Debug("Exclude match failed")
		return true
	}
	return !matched
}
