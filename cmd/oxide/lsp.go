package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"oxide/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the oxide language server over stdio",
	Long: `lsp publishes parse diagnostics, folding ranges and document symbols
for open .rs files. Parse limits come from oxide.toml in the workspace root
and from the "oxide" section of the client settings`,
	Args: cobra.NoArgs,
	RunE: runLSP,
}

func init() {
	lspCmd.Flags().Duration("debounce", 0, "delay before re-parsing a changed document (0=default)")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	opts := sess.options()
	// --timings не имеет смысла для долгоживущего сервера
	opts.Timer = nil
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce: debounce,
		Driver:   opts,
		Log:      os.Stderr,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return exitError{code: 1}
		}
		return err
	}
	return nil
}
