package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/autoread/cli"
	"github.com/grovetools/autoread/config"
	"github.com/grovetools/autoread/errors"
)

// NewConfigCmd creates the `config` command group for inspecting the layered
// configuration.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate the autoread configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the final merged configuration",
		Long: `Shows the configuration after merging all layers:
1. Global config (~/.config/autoread/autoread.yml)
2. Project config (autoread.yml)
3. Override files (autoread.override.yml)
This is useful for debugging configuration issues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			var cfg *config.Config
			var err error
			if opts.ConfigFile != "" {
				cfg, err = loadConfig(cmd)
			} else {
				// The merge log goes to stderr so the YAML on stdout stays
				// pipeable.
				logOpts := []cli.LoggerOption{cli.WithOutput(os.Stderr)}
				if opts.Verbose {
					logOpts = append(logOpts, cli.WithLevel(logrus.DebugLevel))
				}
				if opts.JSONOutput {
					logOpts = append(logOpts, cli.WithFormatter(&logrus.JSONFormatter{}))
				}
				logger := cli.NewLogger(logOpts...)

				var cwd string
				cwd, err = os.Getwd()
				if err != nil {
					return err
				}
				cfg, err = config.LoadFromWithLogger(cwd, logger)
			}
			if err != nil {
				return handler.Handle(err)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a configuration file against the schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			explicit := opts.ConfigFile
			if len(args) > 0 {
				explicit = args[0]
			}
			path, err := cli.InitConfig(explicit)
			if err != nil {
				return err
			}
			if path == "" {
				cwd, _ := os.Getwd()
				return handler.Handle(errors.ConfigNotFound(cwd))
			}

			if _, err := config.Load(path); err != nil {
				return handler.Handle(err)
			}
			fmt.Printf("✓ %s is valid\n", path)
			return nil
		},
	}
}
