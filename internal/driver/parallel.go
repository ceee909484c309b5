package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/project"
	"oxide/internal/source"
	"oxide/internal/token"
	"oxide/internal/trace"
)

// TokenizeDirResult содержит результат токенизации одного файла
type TokenizeDirResult struct {
	Path   string        // путь к файлу
	FileID source.FileID // ID файла в FileSet
	Tokens []token.Token
	Bag    *diag.Bag
	Err    error // файл не прочитан
}

// ParseDirResult содержит результат парсинга одного файла
type ParseDirResult struct {
	Path   string
	FileID source.FileID
	Tree   *ast.Tree
	Bag    *diag.Bag
	Halted bool
	Err    error
}

// DiagnoseDirResult: только диагностики, дерево не хранится (может прийти из кеша)
type DiagnoseDirResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	Halted bool
	Cached bool
	Err    error
}

// ListSourceFiles возвращает отсортированный список исходников в каталоге.
// Скрытые каталоги и target/ пропускаются.
func ListSourceFiles(dir string, exts []string) ([]string, error) {
	proj := project.ProjectConfig{Extensions: exts}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "target") {
				return filepath.SkipDir
			}
			return nil
		}
		if proj.MatchesExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// dirBatch: файлы каталога, загруженные заранее в один FileSet.
// FileSet не потокобезопасен, поэтому воркеры только читают его.
type dirBatch struct {
	fs      *source.FileSet
	paths   []string
	ids     []source.FileID
	loadErr []error
}

func loadDir(dir string, opts *Options) (*dirBatch, error) {
	files, err := ListSourceFiles(dir, opts.Extensions)
	if err != nil {
		return nil, err
	}
	b := &dirBatch{
		fs:      source.NewFileSetWithBase(dir),
		paths:   files,
		ids:     make([]source.FileID, len(files)),
		loadErr: make([]error, len(files)),
	}
	opts.phase("load", func() {
		for i, path := range files {
			id, err := b.fs.Load(path)
			if err != nil {
				b.loadErr[i] = err
				continue
			}
			b.ids[i] = id
		}
	})
	return b, nil
}

func (b *dirBatch) name(i int) string {
	if b.loadErr[i] != nil {
		return b.paths[i]
	}
	return b.fs.Get(b.ids[i]).FormatPath("relative", b.fs.BaseDir())
}

// outcome: что воркер сообщает о файле для события прогресса
type outcome struct {
	diagnostics int
	failed      bool
	cached      bool
	err         error
}

// runFiles обрабатывает n файлов не более чем в opts.Jobs горутинах.
// fn пишет результат по своему индексу, так что мьютекс не нужен.
func runFiles(ctx context.Context, opts *Options, stage Stage, names []string, fn func(ctx context.Context, i int) outcome) error {
	if len(names) == 0 {
		return nil
	}
	for _, name := range names {
		emit(opts.Progress, Event{File: name, Stage: stage, Status: StatusQueued})
	}

	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(len(names)))
	for i, name := range names {
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(opts.Progress, Event{File: name, Stage: stage, Status: StatusWorking})
			span := trace.Begin(tracer, trace.ScopePass, string(stage)+":"+name, parent)
			started := time.Now()

			res := fn(trace.WithSpan(gctx, span), i)

			status := StatusDone
			if res.failed || res.err != nil {
				status = StatusError
			}
			span.End(fmt.Sprintf("diagnostics=%d", res.diagnostics))
			emit(opts.Progress, Event{
				File:        name,
				Stage:       stage,
				Status:      status,
				Err:         res.err,
				Elapsed:     time.Since(started),
				Diagnostics: res.diagnostics,
				Cached:      res.cached,
			})
			return nil
		})
	}
	return g.Wait()
}

func (b *dirBatch) names() []string {
	out := make([]string, len(b.paths))
	for i := range b.paths {
		out[i] = b.name(i)
	}
	return out
}

// TokenizeDir токенизирует все исходники каталога параллельно
func TokenizeDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []TokenizeDirResult, error) {
	b, err := loadDir(dir, &opts)
	if err != nil {
		return nil, nil, err
	}
	results := make([]TokenizeDirResult, len(b.paths))
	err = runFiles(ctx, &opts, StageLex, b.names(), func(_ context.Context, i int) outcome {
		results[i] = TokenizeDirResult{Path: b.paths[i], FileID: b.ids[i], Err: b.loadErr[i]}
		if b.loadErr[i] != nil {
			return outcome{err: b.loadErr[i]}
		}
		res := tokenizeLoaded(b.fs, b.fs.Get(b.ids[i]), opts)
		results[i].Tokens = res.Tokens
		results[i].Bag = res.Bag
		return outcome{diagnostics: res.Bag.Len(), failed: res.Bag.HasErrors()}
	})
	if err != nil {
		return nil, nil, err
	}
	return b.fs, results, nil
}

// ParseDir разбирает все исходники каталога параллельно
func ParseDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []ParseDirResult, error) {
	b, err := loadDir(dir, &opts)
	if err != nil {
		return nil, nil, err
	}
	results := make([]ParseDirResult, len(b.paths))
	err = runFiles(ctx, &opts, StageParse, b.names(), func(ctx context.Context, i int) outcome {
		results[i] = ParseDirResult{Path: b.paths[i], FileID: b.ids[i], Err: b.loadErr[i]}
		if b.loadErr[i] != nil {
			return outcome{err: b.loadErr[i]}
		}
		res := parseLoaded(ctx, b.fs, b.fs.Get(b.ids[i]), opts)
		results[i].Tree = res.Tree
		results[i].Bag = res.Bag
		results[i].Halted = res.Halted
		return outcome{diagnostics: res.Bag.Len(), failed: res.Bag.HasErrors()}
	})
	if err != nil {
		return nil, nil, err
	}
	return b.fs, results, nil
}

// DiagnoseDir как ParseDir, но через кеш: деревья не сохраняются.
func DiagnoseDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []DiagnoseDirResult, error) {
	b, err := loadDir(dir, &opts)
	if err != nil {
		return nil, nil, err
	}
	results := make([]DiagnoseDirResult, len(b.paths))
	err = runFiles(ctx, &opts, StageParse, b.names(), func(ctx context.Context, i int) outcome {
		results[i] = DiagnoseDirResult{Path: b.paths[i], FileID: b.ids[i], Err: b.loadErr[i]}
		if b.loadErr[i] != nil {
			return outcome{err: b.loadErr[i]}
		}
		res, cerr := diagnoseLoaded(ctx, b.fs, b.fs.Get(b.ids[i]), opts)
		results[i].Bag = res.Bag
		results[i].Halted = res.Halted
		results[i].Cached = res.Cached
		return outcome{diagnostics: res.Bag.Len(), failed: res.Bag.HasErrors(), cached: res.Cached, err: cerr}
	})
	if err != nil {
		return nil, nil, err
	}
	return b.fs, results, nil
}
