package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oxide/internal/diagfmt"
	"oxide/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <file.rs|->",
	Short: "Tokenize a Rust source file",
	Long:  `Tokenize breaks a source file into tokens with their leading trivia; "-" reads stdin`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	var result *driver.TokenizeResult
	if filePath == "-" {
		src, rerr := readStdin()
		if rerr != nil {
			return rerr
		}
		result = driver.TokenizeSource("<stdin>", src, sess.options())
	} else if result, err = driver.Tokenize(filePath, sess.options()); err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Выводим диагностику в stderr, если есть
	if result.Bag.Len() > 0 {
		diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, sess.prettyOpts())
	}

	switch format {
	case "json":
		err = diagfmt.FormatTokensJSON(os.Stdout, result.Tokens)
	default:
		err = diagfmt.FormatTokensPretty(os.Stdout, result.Tokens, result.FileSet)
	}
	if err != nil {
		return err
	}
	sess.printTimings("tokenize", filePath)
	if result.Bag.HasErrors() {
		return exitError{code: 1}
	}
	return nil
}
