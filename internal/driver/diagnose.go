package driver

import (
	"context"
	"errors"
	"fmt"

	"oxide/internal/diag"
	"oxide/internal/source"
)

type DiagnoseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Bag     *diag.Bag
	Halted  bool
	// Cached: диагностики взяты из Memo или Cache, разбора не было
	Cached bool
}

// Diagnose собирает диагностики файла, по возможности без разбора.
func Diagnose(ctx context.Context, path string, opts Options) (*DiagnoseResult, error) {
	fs := source.NewFileSet()
	var (
		id  source.FileID
		err error
	)
	opts.phase("load", func() { id, err = fs.Load(path) })
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	res, cerr := diagnoseLoaded(ctx, fs, fs.Get(id), opts)
	if cerr != nil {
		// испорченный кеш не мешает результату
		return res, fmt.Errorf("cache: %w", cerr)
	}
	return res, nil
}

// diagnoseLoaded всегда возвращает результат; ошибка относится только к кешу.
func diagnoseLoaded(ctx context.Context, fs *source.FileSet, file *source.File, opts Options) (*DiagnoseResult, error) {
	if opts.Cache == nil && opts.Memo == nil {
		res := parseLoaded(ctx, fs, file, opts)
		return &DiagnoseResult{FileSet: fs, File: file, Bag: res.Bag, Halted: res.Halted}, nil
	}

	key := cacheKey(file, opts.Parse)
	var cacheErr error

	if payload, ok := opts.Memo.Get(key); ok {
		return fromPayload(fs, file, payload, opts), nil
	}

	var (
		payload DiskPayload
		hit     bool
	)
	opts.phase("cache", func() { hit, cacheErr = opts.Cache.Get(key, &payload) })
	if hit {
		opts.Memo.Put(key, &payload)
		return fromPayload(fs, file, &payload, opts), nil
	}

	res := parseLoaded(ctx, fs, file, opts)
	fresh := toDiskPayload(file, res.Bag, res.Halted, res.Tree.Len())
	opts.Memo.Put(key, fresh)
	if err := opts.Cache.Put(key, fresh); err != nil {
		cacheErr = errors.Join(cacheErr, err)
	}
	return &DiagnoseResult{FileSet: fs, File: file, Bag: res.Bag, Halted: res.Halted}, cacheErr
}

func fromPayload(fs *source.FileSet, file *source.File, p *DiskPayload, opts Options) *DiagnoseResult {
	return &DiagnoseResult{
		FileSet: fs,
		File:    file,
		Bag:     restoreBag(p, file.ID, opts.maxDiagnostics()),
		Halted:  p.Halted,
		Cached:  true,
	}
}
