// Lazykit CLI - project tooling for deferred-import manifests
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	flagDir string
	flagDB  string
)

func newRootCmd() *cobra.Command {
	var noColor bool

	root := &cobra.Command{
		Use:   "lzk",
		Short: "Lazykit deferred-import toolkit",
		Long: `lzk manages Lazykit projects: .li import manifests, the index image,
and the module usage store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().StringVarP(&flagDir, "dir", "C", ".", "project directory (searched upward for lazykit.toml)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "usage store path (default .lazykit/usage.db under the project)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(checkCmd())
	root.AddCommand(indexCmd())
	root.AddCommand(verifyCmd())
	root.AddCommand(usagesCmd())
	root.AddCommand(modulesCmd())
	root.AddCommand(lspCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
