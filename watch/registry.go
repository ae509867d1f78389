package watch

import (
	"sort"

	"github.com/grovetools/autoread/errors"
)

// MonitoredBuffer is the monitoring record for one buffer. Records are owned
// exclusively by the Registry; no other component holds a reference.
type MonitoredBuffer struct {
	Buffer   Buffer
	Behavior Behavior
	Active   bool
}

// Registry maps buffer handles to their monitoring records. It never touches
// the timer or the host; the Service owns the registry-scheduler link.
type Registry struct {
	defaultBehavior Behavior
	buffers         map[Buffer]*MonitoredBuffer
}

// NewRegistry creates an empty registry whose new registrations inherit
// defaultBehavior.
func NewRegistry(defaultBehavior Behavior) *Registry {
	return &Registry{
		defaultBehavior: defaultBehavior,
		buffers:         make(map[Buffer]*MonitoredBuffer),
	}
}

// Register adds a buffer with the current default behavior. Idempotent: an
// already registered buffer keeps its record, including any per-buffer
// behavior override. Reports whether the buffer was newly added.
func (r *Registry) Register(b Buffer) bool {
	if _, ok := r.buffers[b]; ok {
		return false
	}
	r.buffers[b] = &MonitoredBuffer{
		Buffer:   b,
		Behavior: r.defaultBehavior,
		Active:   true,
	}
	return true
}

// RegisterWith adds a buffer with an explicit behavior override. Unlike
// Register, an existing record's behavior is overwritten.
func (r *Registry) RegisterWith(b Buffer, behavior Behavior) bool {
	if rec, ok := r.buffers[b]; ok {
		rec.Behavior = behavior
		return false
	}
	r.buffers[b] = &MonitoredBuffer{
		Buffer:   b,
		Behavior: behavior,
		Active:   true,
	}
	return true
}

// Unregister removes a buffer. Removing a non-member is a no-op. Reports
// whether the buffer was present.
func (r *Registry) Unregister(b Buffer) bool {
	if _, ok := r.buffers[b]; !ok {
		return false
	}
	delete(r.buffers, b)
	return true
}

// UnregisterAll removes every buffer.
func (r *Registry) UnregisterAll() {
	r.buffers = make(map[Buffer]*MonitoredBuffer)
}

// IsRegistered reports whether a buffer is currently monitored.
func (r *Registry) IsRegistered(b Buffer) bool {
	_, ok := r.buffers[b]
	return ok
}

// Get returns the monitoring record for a buffer.
func (r *Registry) Get(b Buffer) (*MonitoredBuffer, bool) {
	rec, ok := r.buffers[b]
	return rec, ok
}

// SetBehavior updates the behavior of one registered buffer and makes that
// behavior the default for future registrations. Fails with NOT_REGISTERED
// and no side effects when the buffer is not monitored.
func (r *Registry) SetBehavior(b Buffer, behavior Behavior) error {
	rec, ok := r.buffers[b]
	if !ok {
		return errors.NotRegistered(int(b))
	}
	rec.Behavior = behavior
	r.defaultBehavior = behavior
	return nil
}

// SetGlobalBehavior updates every registered buffer's behavior and the
// default used for future registrations.
func (r *Registry) SetGlobalBehavior(behavior Behavior) {
	r.defaultBehavior = behavior
	for _, rec := range r.buffers {
		rec.Behavior = behavior
	}
}

// SetDefaultBehavior updates only the default used for future registrations.
func (r *Registry) SetDefaultBehavior(behavior Behavior) {
	r.defaultBehavior = behavior
}

// DefaultBehavior returns the behavior newly registered buffers inherit.
func (r *Registry) DefaultBehavior() Behavior {
	return r.defaultBehavior
}

// Count returns the number of monitored buffers. The Service uses this to
// decide whether the shared timer should exist.
func (r *Registry) Count() int {
	return len(r.buffers)
}

// Buffers returns the monitored buffer handles in ascending order, so check
// passes visit buffers deterministically.
func (r *Registry) Buffers() []Buffer {
	out := make([]Buffer, 0, len(r.buffers))
	for b := range r.buffers {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
