package driver

import (
	"runtime"

	"fortio.org/safecast"

	"oxide/internal/observ"
	"oxide/internal/parser"
	"oxide/internal/project"
)

// Options управляет одним запуском драйвера (файл, каталог или крейт).
type Options struct {
	Parse project.ParseConfig
	// Jobs: 0 - по числу GOMAXPROCS
	Jobs       int
	Extensions []string

	// Cache: результаты diag по ключу содержимого; nil отключает кеш.
	Cache *DiskCache
	// Memo: кеш в памяти перед Cache, общий для одного процесса.
	Memo *ModuleCache

	Progress ProgressSink
	Timer    *observ.Timer
	OnPhase  PhaseObserver
}

// OptionsFromConfig переносит настройки манифеста в Options.
func OptionsFromConfig(cfg project.Config) Options {
	return Options{
		Parse:      cfg.Parse,
		Jobs:       cfg.Project.Jobs,
		Extensions: cfg.Project.Extensions,
	}
}

func (o *Options) jobs(n int) int {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

func (o *Options) maxDiagnostics() int {
	if o.Parse.MaxDiagnostics == 0 {
		return parser.DefaultMaxErrors
	}
	n, err := safecast.Conv[int](o.Parse.MaxDiagnostics)
	if err != nil {
		return parser.DefaultMaxErrors
	}
	return n
}

func (o *Options) parserOptions() parser.Options {
	return parser.Options{
		MaxDepth:  o.Parse.MaxDepth,
		MaxTokens: o.Parse.MaxTokens,
		MaxErrors: o.Parse.MaxDiagnostics,
	}
}
