package driver

import (
	"fmt"

	"oxide/internal/diag"
	"oxide/internal/lexer"
	"oxide/internal/source"
	"oxide/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

func Tokenize(path string, opts Options) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	var (
		id  source.FileID
		err error
	)
	opts.phase("load", func() { id, err = fs.Load(path) })
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return tokenizeLoaded(fs, fs.Get(id), opts), nil
}

func TokenizeSource(name string, content []byte, opts Options) *TokenizeResult {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, content)
	return tokenizeLoaded(fs, fs.Get(id), opts)
}

func tokenizeLoaded(fs *source.FileSet, file *source.File, opts Options) *TokenizeResult {
	bag := diag.NewBag(opts.maxDiagnostics())
	lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})

	// все токены до EOF включительно
	var tokens []token.Token
	opts.phase("lex", func() {
		for tok := range lx.All() {
			tokens = append(tokens, tok)
		}
	})

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}
}
