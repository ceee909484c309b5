package driver

import (
	"context"
	"fmt"

	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/lexer"
	"oxide/internal/parser"
	"oxide/internal/source"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tree    *ast.Tree
	Bag     *diag.Bag
	// Halted: разбор остановлен лимитом токенов или ошибок
	Halted bool
}

// Parse загружает файл с диска и разбирает его.
func Parse(ctx context.Context, path string, opts Options) (*ParseResult, error) {
	fs := source.NewFileSet()
	var (
		id  source.FileID
		err error
	)
	opts.phase("load", func() { id, err = fs.Load(path) })
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return parseLoaded(ctx, fs, fs.Get(id), opts), nil
}

// ParseSource разбирает содержимое из памяти (stdin, repl, тесты).
func ParseSource(ctx context.Context, name string, content []byte, opts Options) *ParseResult {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, content)
	return parseLoaded(ctx, fs, fs.Get(id), opts)
}

func parseLoaded(ctx context.Context, fs *source.FileSet, file *source.File, opts Options) *ParseResult {
	bag := diag.NewBag(opts.maxDiagnostics())
	rep := diag.BagReporter{Bag: bag}

	popts := opts.parserOptions()
	popts.Reporter = rep
	lx := lexer.New(file, lexer.Options{Reporter: rep})

	var res parser.Result
	opts.phase("parse", func() { res = parser.ParseFile(ctx, fs, lx, popts) })
	bag.Sort()

	return &ParseResult{
		FileSet: fs,
		File:    file,
		Tree:    res.Tree,
		Bag:     bag,
		Halted:  res.Halted,
	}
}
