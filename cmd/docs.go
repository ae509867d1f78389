package cmd

import (
	_ "embed"

	"github.com/spf13/cobra"

	"github.com/grovetools/autoread/cli"
)

//go:embed docs.json
var docsJSON []byte

// NewDocsCmd creates the `docs` command from the embedded documentation.
func NewDocsCmd() *cobra.Command {
	return cli.NewDocsCommand(docsJSON)
}
