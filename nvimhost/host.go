package nvimhost

import (
	"fmt"

	"github.com/grovetools/autoread/errors"
	"github.com/grovetools/autoread/watch"
	"github.com/neovim/go-client/nvim"
	"github.com/sirupsen/logrus"
)

// Host adapts a live Neovim session to the watch.Host interface over
// msgpack-rpc. Buffer and window handles are Neovim's own numbers, so they
// can go stale at any time; callers are expected to tolerate failures on
// handles that were valid a moment ago.
type Host struct {
	v   *nvim.Nvim
	log *logrus.Entry
}

// NewHost wraps an established Neovim connection.
func NewHost(v *nvim.Nvim, log *logrus.Entry) *Host {
	return &Host{v: v, log: log}
}

// CheckBuffer asks Neovim to compare one buffer against its file on disk and
// reload it if the file changed. The actual reload is reported back through
// the FileChangedShellPost autocmd, not through this call.
func (h *Host) CheckBuffer(b watch.Buffer) error {
	if err := h.v.Command(fmt.Sprintf("silent! checktime %d", int(b))); err != nil {
		return errors.RPCFailed(err, "checktime")
	}
	return nil
}

func (h *Host) BufferValid(b watch.Buffer) bool {
	ok, err := h.v.IsBufferValid(nvim.Buffer(b))
	return err == nil && ok
}

func (h *Host) BufferName(b watch.Buffer) string {
	name, err := h.v.BufferName(nvim.Buffer(b))
	if err != nil {
		return ""
	}
	return name
}

func (h *Host) WindowsShowing(b watch.Buffer) ([]watch.Window, error) {
	var ids []int
	if err := h.v.ExecLua("return vim.fn.win_findbuf(...)", &ids, int(b)); err != nil {
		return nil, errors.RPCFailed(err, "win_findbuf")
	}
	wins := make([]watch.Window, len(ids))
	for i, id := range ids {
		wins[i] = watch.Window(id)
	}
	return wins, nil
}

func (h *Host) WindowValid(w watch.Window) bool {
	ok, err := h.v.IsWindowValid(nvim.Window(w))
	return err == nil && ok
}

func (h *Host) Cursor(w watch.Window) (watch.Position, error) {
	pos, err := h.v.WindowCursor(nvim.Window(w))
	if err != nil {
		return watch.Position{}, errors.RPCFailed(err, "nvim_win_get_cursor")
	}
	return watch.Position{Line: pos[0], Col: pos[1]}, nil
}

const setCursorLua = `
local win, line, col = ...
local buf = vim.api.nvim_win_get_buf(win)
local last = vim.api.nvim_buf_line_count(buf)
if line > last then line = last end
if line < 1 then line = 1 end
vim.api.nvim_win_set_cursor(win, { line, col })
`

// SetCursor restores a saved position, clamping the line to the buffer's
// current length. The file may have shrunk since the position was captured.
func (h *Host) SetCursor(w watch.Window, p watch.Position) error {
	if err := h.v.ExecLua(setCursorLua, nil, int(w), p.Line, p.Col); err != nil {
		return errors.RPCFailed(err, "nvim_win_set_cursor")
	}
	return nil
}

func (h *Host) SaveView(w watch.Window) (watch.View, error) {
	var view watch.View
	err := h.v.ExecLua("return vim.api.nvim_win_call(..., vim.fn.winsaveview)", &view, int(w))
	if err != nil {
		return nil, errors.RPCFailed(err, "winsaveview")
	}
	return view, nil
}

const restoreViewLua = `
local win, view = ...
vim.api.nvim_win_call(win, function()
  vim.fn.winrestview(view)
end)
`

func (h *Host) RestoreView(w watch.Window, v watch.View) error {
	if err := h.v.ExecLua(restoreViewLua, nil, int(w), map[string]interface{}(v)); err != nil {
		return errors.RPCFailed(err, "winrestview")
	}
	return nil
}

const scrollToEndLua = `
local win = ...
vim.api.nvim_win_call(win, function()
  vim.cmd('normal! G')
end)
`

func (h *Host) ScrollToEnd(w watch.Window) error {
	if err := h.v.ExecLua(scrollToEndLua, nil, int(w)); err != nil {
		return errors.RPCFailed(err, "scroll to end")
	}
	return nil
}

// Notify shows a message through vim.notify. Failures are logged and
// swallowed: a missed notification must never break a reload episode.
func (h *Host) Notify(msg string, level watch.NotifyLevel) {
	err := h.v.ExecLua("vim.notify(...)", nil, msg, notifyLevel(level))
	if err != nil {
		h.log.WithError(err).Debug("vim.notify failed")
	}
}

const emitSignalLua = `
local name, data = ...
vim.api.nvim_exec_autocmds('User', { pattern = name, data = data })
`

// EmitSignal fires a User autocmd with the payload attached as event data.
// Best effort: user callbacks raising errors must not propagate back here.
func (h *Host) EmitSignal(name string, payload map[string]interface{}) {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	if err := h.v.ExecLua(emitSignalLua, nil, name, payload); err != nil {
		h.log.WithField("signal", name).WithError(err).Debug("Signal emission failed")
	}
}

// notifyLevel maps to the vim.log.levels constants.
func notifyLevel(level watch.NotifyLevel) int {
	switch level {
	case watch.NotifyError:
		return 4
	case watch.NotifyWarn:
		return 3
	default:
		return 2
	}
}
