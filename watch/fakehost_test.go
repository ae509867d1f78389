package watch

import "time"

// fakeHost implements Host with controllable buffers and windows. Check
// requests, notifications and signals are recorded so tests can assert on
// the exact host traffic. cursorMutations counts every cursor-mutating call
// (SetCursor, RestoreView, ScrollToEnd); with cursor behavior "none" it must
// stay zero across any number of change episodes.
type fakeHost struct {
	valid    map[Buffer]bool
	names    map[Buffer]string
	showing  map[Buffer][]Window
	windows  map[Window]*fakeWindow
	checkErr map[Buffer]error

	checks          []Buffer
	notices         []string
	signals         []signalRecord
	cursorMutations int
}

type fakeWindow struct {
	valid bool
	pos   Position
	view  View
}

type signalRecord struct {
	name    string
	payload map[string]interface{}
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		valid:    make(map[Buffer]bool),
		names:    make(map[Buffer]string),
		showing:  make(map[Buffer][]Window),
		windows:  make(map[Window]*fakeWindow),
		checkErr: make(map[Buffer]error),
	}
}

// addBuffer registers a buffer with one window showing it.
func (h *fakeHost) addBuffer(b Buffer, name string, w Window) {
	h.valid[b] = true
	h.names[b] = name
	h.showing[b] = []Window{w}
	h.windows[w] = &fakeWindow{valid: true, pos: Position{Line: 1}}
}

func (h *fakeHost) signalCount(name string) int {
	n := 0
	for _, s := range h.signals {
		if s.name == name {
			n++
		}
	}
	return n
}

func (h *fakeHost) CheckBuffer(b Buffer) error {
	h.checks = append(h.checks, b)
	return h.checkErr[b]
}

func (h *fakeHost) BufferValid(b Buffer) bool {
	return h.valid[b]
}

func (h *fakeHost) BufferName(b Buffer) string {
	return h.names[b]
}

func (h *fakeHost) WindowsShowing(b Buffer) ([]Window, error) {
	return h.showing[b], nil
}

func (h *fakeHost) WindowValid(w Window) bool {
	win, ok := h.windows[w]
	return ok && win.valid
}

func (h *fakeHost) Cursor(w Window) (Position, error) {
	return h.windows[w].pos, nil
}

func (h *fakeHost) SetCursor(w Window, p Position) error {
	h.cursorMutations++
	h.windows[w].pos = p
	return nil
}

func (h *fakeHost) SaveView(w Window) (View, error) {
	return h.windows[w].view, nil
}

func (h *fakeHost) RestoreView(w Window, v View) error {
	h.cursorMutations++
	h.windows[w].view = v
	return nil
}

func (h *fakeHost) ScrollToEnd(w Window) error {
	h.cursorMutations++
	h.windows[w].pos = Position{Line: 9999}
	return nil
}

func (h *fakeHost) Notify(msg string, level NotifyLevel) {
	h.notices = append(h.notices, msg)
}

func (h *fakeHost) EmitSignal(name string, payload map[string]interface{}) {
	h.signals = append(h.signals, signalRecord{name: name, payload: payload})
}

// timerControl is a TimerFunc whose fires are driven by the test instead of
// wall-clock time.
type timerControl struct {
	fire      func()
	initials  []time.Duration // every initial delay a timer was started with
	intervals []time.Duration // every interval a timer was started with
	active    *manualTimer
}

type manualTimer struct {
	stopped bool
}

func (t *manualTimer) Stop() {
	t.stopped = true
}

func (c *timerControl) timerFunc(initialDelay, interval time.Duration, fire func()) Timer {
	c.fire = fire
	c.initials = append(c.initials, initialDelay)
	c.intervals = append(c.intervals, interval)
	c.active = &manualTimer{}
	return c.active
}
