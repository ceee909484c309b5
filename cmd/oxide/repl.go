package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"oxide/internal/diagfmt"
	"oxide/internal/driver"
	"oxide/internal/token"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Parse Rust snippets interactively",
	Long: `repl reads items line by line, keeps reading while brackets are open,
then prints the diagnostics and the syntax tree of what was entered`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

const replHelp = `:tree    print syntax trees (default)
:tokens  print tokens instead of trees
:help    show this help
:quit    leave the repl`

// replState: режим вывода между вводами
type replState struct {
	tokens bool
	out    io.Writer
	errOut io.Writer
}

func runREPL(cmd *cobra.Command, _ []string) error {
	history := filepath.Join(xdg.DataHome, "oxide", "history")

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer func() {
		if err := os.MkdirAll(filepath.Dir(history), 0o755); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if f, err := os.Create(history); err == nil {
			defer f.Close()
			if _, err := line.WriteHistory(f); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
		line.Close()
	}()

	if f, err := os.Open(history); err == nil {
		defer f.Close()
		if _, err := line.ReadHistory(f); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	st := &replState{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	var buf strings.Builder
	for {
		prompt := "oxide> "
		if buf.Len() > 0 {
			prompt = "...> "
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return err
		}

		if buf.Len() == 0 && strings.HasPrefix(strings.TrimSpace(input), ":") {
			line.AppendHistory(input)
			if st.command(strings.TrimSpace(input)) {
				return nil
			}
			continue
		}

		buf.WriteString(input)
		buf.WriteByte('\n')
		src := buf.String()
		if strings.TrimSpace(src) == "" {
			buf.Reset()
			continue
		}
		if openDelimiters(src) > 0 {
			continue
		}
		buf.Reset()
		line.AppendHistory(strings.TrimRight(src, "\n"))
		st.eval(cmd, src)
	}
}

// command выполняет :команду; true - выйти из repl.
func (st *replState) command(input string) bool {
	switch input {
	case ":quit", ":q", ":exit":
		return true
	case ":tokens":
		st.tokens = true
	case ":tree":
		st.tokens = false
	case ":help", ":h":
		fmt.Fprintln(st.out, replHelp)
	default:
		fmt.Fprintf(st.errOut, "unknown command %s (try :help)\n", input)
	}
	return false
}

func (st *replState) eval(cmd *cobra.Command, src string) {
	opts := sess.options()
	popts := sess.prettyOpts()
	if st.tokens {
		res := driver.TokenizeSource("<repl>", []byte(src), opts)
		if res.Bag.Len() > 0 {
			diagfmt.Pretty(st.errOut, res.Bag, res.FileSet, popts)
		}
		if err := diagfmt.FormatTokensPretty(st.out, res.Tokens, res.FileSet); err != nil {
			fmt.Fprintln(st.errOut, err)
		}
		return
	}
	res := driver.ParseSource(cmd.Context(), "<repl>", []byte(src), opts)
	if res.Bag.Len() > 0 {
		diagfmt.Pretty(st.errOut, res.Bag, res.FileSet, popts)
	}
	if err := diagfmt.FormatASTPretty(st.out, res.Tree, res.FileSet); err != nil {
		fmt.Fprintln(st.errOut, err)
	}
}

// openDelimiters: сколько скобок ещё не закрыто. Считает по токенам,
// так что скобки в строках и комментариях не мешают.
func openDelimiters(src string) int {
	res := driver.TokenizeSource("<repl>", []byte(src), driver.Options{})
	depth := 0
	for _, tok := range res.Tokens {
		switch tok.Kind {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBrace, token.RBracket:
			depth--
		}
	}
	return depth
}
