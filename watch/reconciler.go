package watch

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Reconciler turns raw host change notifications into reload episodes. An
// external write is often observed as two discrete events: one while the
// file is truncated mid-write (empty content) and one once the write
// completes. Only the second is treated as a real reload; the transient
// empty event must not clobber the pending cursor capture.
type Reconciler struct {
	log      *logrus.Entry
	host     Host
	registry *Registry
	captures map[Buffer]*Capture
}

// NewReconciler creates a reconciler over the given registry.
func NewReconciler(host Host, registry *Registry, log *logrus.Entry) *Reconciler {
	return &Reconciler{
		log:      log,
		host:     host,
		registry: registry,
		captures: make(map[Buffer]*Capture),
	}
}

// InstallCapture records the buffer's current view state as the pending
// capture for its next reload episode, superseding any previous capture.
// Called on registration and after every resolved episode.
func (r *Reconciler) InstallCapture(b Buffer, behavior Behavior) {
	r.captures[b] = newCapture(r.host, b, behavior, r.log)
}

// Discard drops any pending capture for the buffer. An orphaned capture for
// an unregistered buffer is simply forgotten.
func (r *Reconciler) Discard(b Buffer) {
	delete(r.captures, b)
}

// DiscardAll drops every pending capture.
func (r *Reconciler) DiscardAll() {
	r.captures = make(map[Buffer]*Capture)
}

// HasCapture reports whether a capture is pending for the buffer.
func (r *Reconciler) HasCapture(b Buffer) bool {
	_, ok := r.captures[b]
	return ok
}

// HandleChange processes one change notification. notify controls whether a
// user-facing notification is emitted (the notify_on_change setting).
// Events for unmonitored buffers are ignored entirely.
func (r *Reconciler) HandleChange(ev ChangeEvent, notify bool) {
	rec, ok := r.registry.Get(ev.Buffer)
	if !ok || !rec.Active {
		return
	}

	name := ev.File
	if name == "" {
		name = r.host.BufferName(ev.Buffer)
	}

	payload := map[string]interface{}{
		"buffer": int(ev.Buffer),
		"file":   name,
	}
	for k, v := range ev.Raw {
		payload[k] = v
	}

	if ev.HasContent {
		r.host.EmitSignal(SignalPreReload, payload)
	}

	if notify {
		r.host.Notify(fmt.Sprintf("%s changed on disk. Buffer reloaded.", filepath.Base(name)), NotifyWarn)
	}

	if !ev.HasContent {
		// Transient empty-content episode: the file is mid-write. Leave the
		// pending capture untouched so the eventual restore is not taken
		// from an empty buffer.
		r.log.WithField("buffer", ev.Buffer).Debug("Ignoring empty-content change event")
		return
	}

	if capture, ok := r.captures[ev.Buffer]; ok {
		capture.resolve(r.host, ev.Buffer, r.log)
	}

	// Capture the state the editor is in now as the pending capture for the
	// next episode, with the behavior currently in effect.
	r.InstallCapture(ev.Buffer, rec.Behavior)

	r.host.EmitSignal(SignalPostReload, payload)

	r.log.WithFields(logrus.Fields{
		"buffer":   ev.Buffer,
		"file":     name,
		"behavior": rec.Behavior,
	}).Debug("Reconciled external change")
}
