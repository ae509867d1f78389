package nvimhost

import (
	"time"

	"github.com/grovetools/autoread/errors"
	"github.com/grovetools/autoread/watch"
	"github.com/neovim/go-client/nvim"
	"github.com/sirupsen/logrus"
)

// Plugin wires a watch.Service to a Neovim session: autocmds feed change
// events into the service, user commands expose its controls. One Plugin per
// connection.
type Plugin struct {
	v   *nvim.Nvim
	svc *watch.Service
	log *logrus.Entry
}

// NewPlugin builds the plugin around an established connection and a running
// service.
func NewPlugin(v *nvim.Nvim, svc *watch.Service, log *logrus.Entry) *Plugin {
	return &Plugin{v: v, svc: svc, log: log}
}

// setupLua installs the augroup, the event autocmds and the user commands on
// the Neovim side. The channel id is the only argument; everything the
// commands do goes back through rpcrequest/rpcnotify on that channel.
//
// FileChangedShellPost fires once per reload, including the intermediate
// reload of a truncated file mid-write, so content presence is sampled right
// here, inside the event, before the next reload can land.
const setupLua = `
local chan = ...
local group = vim.api.nvim_create_augroup('autoread', { clear = true })

vim.api.nvim_create_autocmd('FileChangedShellPost', {
  group = group,
  callback = function(ev)
    local lines = vim.api.nvim_buf_line_count(ev.buf)
    local first = vim.api.nvim_buf_get_lines(ev.buf, 0, 1, false)[1] or ''
    local has_content = lines > 1 or first ~= ''
    vim.rpcnotify(chan, 'autoread.changed', ev.buf, ev.file or '', has_content)
  end,
})

vim.api.nvim_create_autocmd('BufReadPost', {
  group = group,
  callback = function(ev)
    vim.rpcnotify(chan, 'autoread.bufread', ev.buf, ev.file or '')
  end,
})

vim.api.nvim_create_autocmd('BufDelete', {
  group = group,
  callback = function(ev)
    vim.rpcnotify(chan, 'autoread.bufwipe', ev.buf)
  end,
})

local function interval_arg(args)
  if args == '' then return 0 end
  return tonumber(args) or -1
end

vim.api.nvim_create_user_command('AutoreadEnable', function(opts)
  vim.rpcrequest(chan, 'autoread.enable',
    vim.api.nvim_get_current_buf(), interval_arg(opts.args))
end, { nargs = '?' })

vim.api.nvim_create_user_command('AutoreadDisable', function(opts)
  if opts.bang then
    vim.rpcrequest(chan, 'autoread.disable_all')
  else
    vim.rpcrequest(chan, 'autoread.disable', vim.api.nvim_get_current_buf())
  end
end, { bang = true })

vim.api.nvim_create_user_command('AutoreadToggle', function(opts)
  local on = vim.rpcrequest(chan, 'autoread.toggle',
    vim.api.nvim_get_current_buf(), interval_arg(opts.args))
  if on then
    vim.notify('autoread: monitoring buffer')
  else
    vim.notify('autoread: monitoring stopped')
  end
end, { nargs = '?' })

vim.api.nvim_create_user_command('AutoreadInterval', function(opts)
  if opts.args == '' then
    local ms = vim.rpcrequest(chan, 'autoread.get_interval')
    vim.notify(('autoread: poll interval is %dms'):format(ms))
  elseif opts.bang then
    vim.rpcrequest(chan, 'autoread.update_interval', interval_arg(opts.args))
  else
    vim.rpcrequest(chan, 'autoread.set_interval', interval_arg(opts.args))
  end
end, { nargs = '?', bang = true })

vim.api.nvim_create_user_command('AutoreadCursor', function(opts)
  if opts.bang then
    vim.rpcrequest(chan, 'autoread.cursor_global', opts.args)
  else
    vim.rpcrequest(chan, 'autoread.cursor',
      vim.api.nvim_get_current_buf(), opts.args)
  end
end, {
  nargs = 1,
  bang = true,
  complete = function()
    return { 'preserve', 'scroll_down', 'none' }
  end,
})
`

// Register installs the RPC handlers and the Neovim-side autocmds and user
// commands. Call once, before Serve.
func (p *Plugin) Register() error {
	handlers := map[string]interface{}{
		"autoread.changed":         p.handleChanged,
		"autoread.bufread":         p.handleBufRead,
		"autoread.bufwipe":         p.handleBufWipe,
		"autoread.enable":          p.handleEnable,
		"autoread.disable":         p.handleDisable,
		"autoread.disable_all":     p.handleDisableAll,
		"autoread.toggle":          p.handleToggle,
		"autoread.get_interval":    p.handleGetInterval,
		"autoread.set_interval":    p.handleSetInterval,
		"autoread.update_interval": p.handleUpdateInterval,
		"autoread.cursor":          p.handleCursor,
		"autoread.cursor_global":   p.handleCursorGlobal,
	}
	for method, fn := range handlers {
		if err := p.v.RegisterHandler(method, fn); err != nil {
			return errors.RPCFailed(err, method)
		}
	}

	if err := p.v.ExecLua(setupLua, nil, p.v.ChannelID()); err != nil {
		return errors.RPCFailed(err, "autoread setup")
	}
	return nil
}

func (p *Plugin) handleChanged(buf int, file string, hasContent bool) {
	p.svc.HandleChange(watch.ChangeEvent{
		Buffer:     watch.Buffer(buf),
		HasContent: hasContent,
		File:       file,
	})
}

// handleBufRead auto-enables freshly read buffers when the config asks for
// it, subject to the exclude patterns.
func (p *Plugin) handleBufRead(buf int, file string) {
	if !p.svc.AutoEnable() || !p.svc.ShouldMonitor(file) {
		return
	}
	if err := p.svc.EnableBuffer(watch.Buffer(buf), 0); err != nil {
		p.log.WithField("buffer", buf).WithError(err).Debug("Auto-enable failed")
	}
}

func (p *Plugin) handleBufWipe(buf int) {
	if err := p.svc.DisableBuffer(watch.Buffer(buf)); err != nil {
		p.log.WithField("buffer", buf).WithError(err).Debug("Cleanup on BufDelete failed")
	}
}

func (p *Plugin) handleEnable(buf int, intervalMs int64) error {
	return p.svc.EnableBuffer(watch.Buffer(buf), msToDuration(intervalMs))
}

func (p *Plugin) handleDisable(buf int) error {
	return p.svc.DisableBuffer(watch.Buffer(buf))
}

func (p *Plugin) handleDisableAll() error {
	return p.svc.DisableAll()
}

func (p *Plugin) handleToggle(buf int, intervalMs int64) (bool, error) {
	return p.svc.ToggleBuffer(watch.Buffer(buf), msToDuration(intervalMs))
}

func (p *Plugin) handleGetInterval() (int64, error) {
	return p.svc.GetInterval().Milliseconds(), nil
}

func (p *Plugin) handleSetInterval(intervalMs int64) error {
	return p.svc.SetInterval(msToDuration(intervalMs))
}

func (p *Plugin) handleUpdateInterval(intervalMs int64) error {
	return p.svc.UpdateInterval(msToDuration(intervalMs))
}

func (p *Plugin) handleCursor(buf int, behavior string) error {
	parsed, err := watch.ParseBehavior(behavior)
	if err != nil {
		return err
	}
	return p.svc.SetCursorBehavior(watch.Buffer(buf), parsed)
}

func (p *Plugin) handleCursorGlobal(behavior string) error {
	parsed, err := watch.ParseBehavior(behavior)
	if err != nil {
		return err
	}
	return p.svc.SetGlobalCursorBehavior(parsed)
}

// msToDuration keeps the sign so the service can reject negatives with its
// own INVALID_INTERVAL error.
func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
