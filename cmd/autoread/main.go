package main

import (
	"os"
	"runtime"

	"github.com/grovetools/autoread/cli"
	"github.com/grovetools/autoread/cmd"
	"github.com/grovetools/autoread/version"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"autoread",
		"Reload Neovim buffers automatically when their files change on disk",
	)

	info := version.GetInfo()
	rootCmd.Version = info.Version
	cli.SetVersionTemplate(rootCmd, cli.VersionInfo{
		Version:   info.Version,
		Commit:    info.Commit,
		BuildDate: info.BuildDate,
		BuildArch: runtime.GOARCH,
	})

	rootCmd.AddCommand(cmd.NewServeCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())
	rootCmd.AddCommand(cmd.NewDocsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
