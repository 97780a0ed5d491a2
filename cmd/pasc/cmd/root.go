package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var evalExpr string

var rootCmd = &cobra.Command{
	Use:   "pasc",
	Short: "A compiler for a Pascal subset, targeting a simple stack VM",
	Long: `pasc compiles a single Pascal-subset program - one program block,
no units - into assembly for a small stack-based virtual machine.

It is a single-pass compiler: the parser performs scope resolution, type
checking, and code generation in one walk over the token stream, with no
intermediate syntax tree.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
