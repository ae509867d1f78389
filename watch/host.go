// Package watch keeps monitored buffers synchronized with their on-disk
// files. A single shared poll timer drives re-check passes over every
// monitored buffer; change notifications from the host are reconciled with
// cursor/view restoration. All mutable state is confined to one run loop
// (see Service), so the package uses no locks.
package watch

// Buffer is an opaque handle to a document tracked by the host. For the
// Neovim host this is the buffer number.
type Buffer int

// Window is an opaque handle to a window displaying a buffer.
type Window int

// Position is a cursor position within a window: 1-based line and 0-based
// column, matching nvim_win_get_cursor.
type Position struct {
	Line int
	Col  int
}

// View is the host's opaque scroll/viewport state for a window, as returned
// by winsaveview(). It is round-tripped back to the host untouched.
type View map[string]interface{}

// NotifyLevel is the severity of a user-facing notification.
type NotifyLevel int

const (
	NotifyInfo NotifyLevel = iota
	NotifyWarn
	NotifyError
)

// Lifecycle signal names, emitted as User autocmds for external subscribers.
// They carry a payload but are never used for control flow inside this
// package.
const (
	SignalPreCheck   = "AutoreadPreCheck"
	SignalPostCheck  = "AutoreadPostCheck"
	SignalPreReload  = "AutoreadPreReload"
	SignalPostReload = "AutoreadPostReload"
)

// Host is the collaborator surface the core depends on. The Neovim
// implementation lives in the nvimhost package; tests substitute a fake.
type Host interface {
	// CheckBuffer asks the host to re-check one buffer for external
	// modification (:checktime). Fire-and-forget: any resulting change
	// notification arrives asynchronously, possibly after the enclosing
	// check pass has finished.
	CheckBuffer(b Buffer) error

	// BufferValid reports whether the handle still refers to a live buffer.
	BufferValid(b Buffer) bool

	// BufferName returns the file name backing the buffer, for
	// notifications and signal payloads.
	BufferName(b Buffer) string

	// WindowsShowing enumerates every window currently displaying the buffer.
	WindowsShowing(b Buffer) ([]Window, error)

	// WindowValid reports whether the handle still refers to a live window.
	WindowValid(w Window) bool

	Cursor(w Window) (Position, error)
	SetCursor(w Window, p Position) error

	SaveView(w Window) (View, error)
	RestoreView(w Window, v View) error

	// ScrollToEnd moves the cursor in w to the end of its buffer and
	// scrolls so the end is visible.
	ScrollToEnd(w Window) error

	// Notify displays a short user-facing notification.
	Notify(msg string, level NotifyLevel)

	// EmitSignal emits a named lifecycle signal with a payload, observable
	// by arbitrary external subscribers.
	EmitSignal(name string, payload map[string]interface{})
}

// ChangeEvent is one host-detected external modification notification for a
// buffer. An external write is frequently observed as two discrete events:
// one while the file is truncated mid-write (HasContent false) and one after
// the write completes (HasContent true).
type ChangeEvent struct {
	Buffer     Buffer
	HasContent bool
	File       string
	Raw        map[string]interface{}
}
