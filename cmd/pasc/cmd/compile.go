package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pasc-lang/pasc/internal/compiler"
	"github.com/pasc-lang/pasc/internal/errors"
	"github.com/spf13/cobra"
)

var (
	outputFile     string
	compileVerbose bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a Pascal-subset program to stack-VM assembly",
	Long: `Compile a single Pascal program block into stack-VM assembly text.

Examples:
  # Compile a program file, print assembly to stdout
  pasc compile program.pas

  # Compile an inline program
  pasc compile -e "program p; begin writeln(1) end."

  # Compile from stdin
  cat program.pas | pasc compile

  # Compile to a file
  pasc compile program.pas -o program.asm`,
	Args: cobra.MaximumNArgs(1),
	RunE: compileProgram,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "compile inline source instead of reading from file")
	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func compileProgram(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(args)
	if err != nil {
		return err
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	asm, err := compiler.Compile(input)
	if err != nil {
		if ce, ok := err.(*errors.CompilerError); ok {
			return fmt.Errorf("%s", ce.Format())
		}
		return err
	}

	if outputFile == "" {
		fmt.Print(asm)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(asm), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outputFile, err)
	}
	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Assembly written to %s (%d bytes)\n", outputFile, len(asm))
	}
	return nil
}

// readSource resolves the -e flag, a file argument, or stdin (in that
// order of precedence) into source text and a display name for it.
func readSource(args []string) (input, filename string, err error) {
	switch {
	case evalExpr != "":
		return evalExpr, "<eval>", nil
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	default:
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), "<stdin>", nil
	}
}
