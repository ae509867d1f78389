package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grovetools/autoread/cli"
	"github.com/grovetools/autoread/config"
	"github.com/grovetools/autoread/logging"
	"github.com/grovetools/autoread/nvimhost"
	"github.com/grovetools/autoread/util/pathutil"
	"github.com/grovetools/autoread/watch"
)

// NewServeCmd creates the `serve` command: the long-running plugin process
// that attaches to a Neovim instance and monitors its buffers.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Attach to a Neovim instance and monitor buffers for external changes",
		Long: `Connects to a running Neovim over msgpack-rpc, installs the autoread
autocmds and user commands, and serves until the editor goes away.

Normally started from inside Neovim with jobstart, in which case the
address is taken from $NVIM.

Examples:
  # From inside nvim
  :call jobstart(['autoread', 'serve'])

  # Against an explicit socket
  autoread serve --addr /tmp/nvim.sock`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Neovim listen address (defaults to $NVIM)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	opts := cli.GetOptions(cmd)
	handler := cli.NewErrorHandler(opts.Verbose)
	log := logging.NewLogger("autoread")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return handler.Handle(err)
	}

	addr, _ := cmd.Flags().GetString("addr")
	v, err := nvimhost.Connect(addr)
	if err != nil {
		return handler.Handle(err)
	}
	defer v.Close()

	host := nvimhost.NewHost(v, log)
	svc, err := watch.NewService(host, cfg)
	if err != nil {
		return handler.Handle(err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go svc.Run(ctx)

	plugin := nvimhost.NewPlugin(v, svc, log)
	if err := plugin.Register(); err != nil {
		return handler.Handle(err)
	}
	log.Info("Attached to nvim, monitoring ready")

	// Shut down on signal or when the editor closes the channel.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	serveDone := make(chan error, 1)
	go func() { serveDone <- v.Serve() }()

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig).Info("Shutting down")
		return nil
	case err := <-serveDone:
		if err != nil {
			return handler.Handle(err)
		}
		return nil
	}
}

// loadConfig resolves the layered configuration: an explicit --config path
// wins, otherwise the discovered project config and its override layers are
// merged, otherwise defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := cli.GetOptions(cmd)
	if opts.ConfigFile != "" {
		expanded, err := pathutil.Expand(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		return config.Load(expanded)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return config.LoadDefault()
	}
	return config.LoadFromWithLogger(cwd, cli.GetLogger(cmd))
}
