package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"oxide/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "oxide",
	Short: "Error-tolerant Rust parser and diagnostics toolkit",
	Long: `oxide lexes and parses Rust source files, always producing a complete
syntax tree together with every diagnostic it could collect`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: startSession,
	PersistentPostRun: func(*cobra.Command, []string) { endSession() },
}

// exitError carries a process exit code without a message: the command has
// already printed everything it wanted to.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// main registers subcommands and persistent flags, then executes the root
// command. Diagnostics with errors exit with status 1, CLI errors with 2.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "", "colorize output (auto|on|off), overrides [output].color")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Bool("timings-json", false, "print timings as one JSON line")
	flags.Uint("max-diagnostics", 0, "maximum number of diagnostics per file, overrides [parse].max_diagnostics")
	flags.Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	flags.String("config", "", "path to oxide.toml (default: searched upwards from the working directory)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson|chrome)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0=off)")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")

	if err := rootCmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			endSession()
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "oxide: %v\n", err)
		endSession()
		os.Exit(2)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth: ширина терминала или 0, если вывод не в терминал
func terminalWidth(f *os.File) int {
	if !isTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
