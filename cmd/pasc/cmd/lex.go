package cmd

import (
	"fmt"

	"github.com/pasc-lang/pasc/internal/lexer"
	"github.com/spf13/cobra"
)

var (
	showPos    bool
	showType   bool
	onlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Pascal-subset file or expression",
	Long: `Tokenize a program and print the resulting tokens, one per line.

This is useful for debugging the lexer and understanding how source text
is broken into tokens.

Examples:
  # Tokenize a program file
  pasc lex program.pas

  # Tokenize inline source
  pasc lex -e "var x: integer;"

  # Show token types and positions
  pasc lex --show-type --show-pos program.pas

  # Stop at the first illegal character
  pasc lex --only-errors program.pas`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexProgram,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline source instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token type names")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "stop and report only the first illegal character")
}

func lexProgram(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	l := lexer.New(input)
	tokenCount := 0

	for {
		tok, err := l.NextToken()
		if err != nil {
			if le, ok := err.(*lexer.LexError); ok {
				return fmt.Errorf("lexical error at %d:%d: %s", le.Pos.Line, le.Pos.Column, le.Message)
			}
			return err
		}

		if !onlyErrors {
			printToken(tok)
		}
		tokenCount++
		if tok.Type == lexer.EOF {
			break
		}
	}

	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", tokenCount)
	}
	return nil
}

func printToken(tok lexer.Token) {
	var output string

	if showType {
		output = fmt.Sprintf("[%-12s]", tok.Type)
	}

	if tok.Type == lexer.EOF {
		output += " EOF"
	} else if tok.Literal == "" {
		output += fmt.Sprintf(" %s", tok.Type)
	} else {
		output += fmt.Sprintf(" %q", tok.Literal)
	}

	if showPos {
		output += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}

	fmt.Println(output)
}
