package watch

import (
	"github.com/grovetools/autoread/config"
	"github.com/sirupsen/logrus"
)

// Behavior is the cursor policy applied when a monitored buffer is reloaded.
// It is a closed set; ParseBehavior rejects anything else.
type Behavior string

const (
	// BehaviorPreserve restores each window's cursor and view to what was
	// captured before the reload.
	BehaviorPreserve Behavior = config.BehaviorPreserve
	// BehaviorScrollDown moves the cursor to the end of the reloaded
	// content, keeping the end visible (tail -f style).
	BehaviorScrollDown Behavior = config.BehaviorScrollDown
	// BehaviorNone leaves the host's natural post-reload placement alone.
	BehaviorNone Behavior = config.BehaviorNone
)

// ParseBehavior converts a configuration string into a Behavior.
func ParseBehavior(s string) (Behavior, error) {
	if err := config.ValidateBehavior(s); err != nil {
		return "", err
	}
	return Behavior(s), nil
}

// viewSnapshot is the recorded cursor and view state of one window.
type viewSnapshot struct {
	win  Window
	pos  Position
	view View
}

// Capture is the pending cursor/view capture for one change episode of one
// buffer. The behavior is chosen at capture time and carried here, so a
// policy change mid-episode does not retroactively alter an in-flight
// capture. At most one capture is live per buffer; a newer capture
// supersedes the older one.
type Capture struct {
	behavior  Behavior
	snapshots []viewSnapshot
}

// newCapture records the view state needed to later resolve a reload episode
// for b. Only the preserve behavior snapshots anything; scroll_down and none
// need no capture-time state and make no host calls here.
func newCapture(host Host, b Buffer, behavior Behavior, log *logrus.Entry) *Capture {
	c := &Capture{behavior: behavior}
	if behavior != BehaviorPreserve {
		return c
	}

	wins, err := host.WindowsShowing(b)
	if err != nil {
		log.WithField("buffer", b).WithError(err).Debug("Could not enumerate windows for capture")
		return c
	}
	for _, w := range wins {
		pos, err := host.Cursor(w)
		if err != nil {
			continue
		}
		view, err := host.SaveView(w)
		if err != nil {
			// Cursor position alone is still worth restoring.
			view = nil
		}
		c.snapshots = append(c.snapshots, viewSnapshot{win: w, pos: pos, view: view})
	}
	return c
}

// resolve applies the captured state once the buffer's content is confirmed
// non-empty. Every host call is best-effort: a window may have closed or
// changed since capture, and such failures are swallowed.
func (c *Capture) resolve(host Host, b Buffer, log *logrus.Entry) {
	switch c.behavior {
	case BehaviorPreserve:
		for _, snap := range c.snapshots {
			if !host.WindowValid(snap.win) {
				continue
			}
			if err := host.SetCursor(snap.win, snap.pos); err != nil {
				log.WithField("window", snap.win).WithError(err).Debug("Could not restore cursor")
				continue
			}
			if snap.view != nil {
				if err := host.RestoreView(snap.win, snap.view); err != nil {
					log.WithField("window", snap.win).WithError(err).Debug("Could not restore view")
				}
			}
		}

	case BehaviorScrollDown:
		wins, err := host.WindowsShowing(b)
		if err != nil {
			log.WithField("buffer", b).WithError(err).Debug("Could not enumerate windows for scroll_down")
			return
		}
		for _, w := range wins {
			if err := host.ScrollToEnd(w); err != nil {
				log.WithField("window", w).WithError(err).Debug("Could not scroll to end")
			}
		}

	case BehaviorNone:
		// The host's own post-reload placement stands.
	}
}
