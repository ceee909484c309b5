package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"oxide/internal/diag"
	"oxide/internal/diagfmt"
	"oxide/internal/driver"
	"oxide/internal/project"
	"oxide/internal/source"
	"oxide/internal/version"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] [file.rs|directory]",
	Short: "Run diagnostics on a Rust source file, directory or crate",
	Long: `Run diagnostics to find lexical and syntax issues in a Rust source file,
in every source file within a directory, or (with --crate) in a crate root
and every module file it declares. Without an argument the [project].include
directories of oxide.toml are checked`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiagnose,
}

// init registers CLI flags for the diag command used by runDiagnose.
func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short)")
	diagCmd.Flags().Bool("crate", false, "treat the file as a crate root and follow `mod name;` declarations")
	diagCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	diagCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	diagCmd.Flags().Bool("preview", false, "preview suggested edits in output")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	diagCmd.Flags().Bool("cache", false, "reuse diagnostics of unchanged files from the disk cache")
	diagCmd.Flags().Bool("clear-cache", false, "drop the disk cache before running")
	diagCmd.Flags().String("ui", "auto", "progress UI for directories and crates (auto|on|off)")
}

// diagFlags: флаги команды diag после разбора
type diagFlags struct {
	format           string
	crate            bool
	noWarnings       bool
	warningsAsErrors bool
	withNotes        bool
	suggest          bool
	preview          bool
	fullPath         bool
	cache            bool
	clearCache       bool
	ui               uiMode
}

func readDiagFlags(cmd *cobra.Command) (diagFlags, error) {
	var (
		f   diagFlags
		err error
	)
	flags := cmd.Flags()
	if f.format, err = flags.GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch f.format {
	case "pretty", "json", "sarif", "short":
	default:
		return f, fmt.Errorf("unknown format: %s", f.format)
	}
	bools := []struct {
		name string
		dst  *bool
	}{
		{"crate", &f.crate},
		{"no-warnings", &f.noWarnings},
		{"warnings-as-errors", &f.warningsAsErrors},
		{"with-notes", &f.withNotes},
		{"suggest", &f.suggest},
		{"preview", &f.preview},
		{"fullpath", &f.fullPath},
		{"cache", &f.cache},
		{"clear-cache", &f.clearCache},
	}
	for _, b := range bools {
		if *b.dst, err = flags.GetBool(b.name); err != nil {
			return f, fmt.Errorf("failed to get %s flag: %w", b.name, err)
		}
	}
	if f.noWarnings && f.warningsAsErrors {
		return f, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readUIMode(uiFlag); err != nil {
		return f, err
	}
	return f, nil
}

// runDiagnose executes the "diag" command and exits with status 1 when any
// diagnostic (after --no-warnings / --warnings-as-errors) is an error.
func runDiagnose(cmd *cobra.Command, args []string) error {
	// Ensure trace is dumped on panic
	defer dumpTraceOnPanic()

	f, err := readDiagFlags(cmd)
	if err != nil {
		return err
	}
	targets, err := diagTargets(args, sess.manifest)
	if err != nil {
		return err
	}

	opts := sess.options()
	if f.cache || f.clearCache {
		cache, cerr := driver.OpenDiskCache("oxide")
		if cerr != nil {
			return fmt.Errorf("failed to open cache: %w", cerr)
		}
		if f.clearCache {
			if cerr = cache.DropAll(); cerr != nil {
				return fmt.Errorf("failed to clear cache: %w", cerr)
			}
		}
		if f.cache {
			opts.Cache = cache
			opts.Memo = driver.NewModuleCache(64)
		}
	}

	exit := 0
	for _, target := range targets {
		failed, err := diagnoseTarget(cmd, target, f, opts)
		if err != nil {
			return err
		}
		if failed {
			exit = 1
		}
	}
	sess.printTimings("diag", strings.Join(targets, " "))
	if exit != 0 {
		return exitError{code: exit}
	}
	return nil
}

// diagTargets: аргумент команды или каталоги [project].include манифеста
func diagTargets(args []string, m *project.Manifest) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if m == nil {
		return nil, fmt.Errorf("no path given and no %s found", project.ManifestName)
	}
	var targets []string
	for _, inc := range m.Config.Project.Include {
		dir := inc
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(m.Root, inc)
		}
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			targets = append(targets, dir)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%s: no [project].include directory exists", m.Path)
	}
	return targets, nil
}

// diagnoseTarget печатает диагностики одного пути; failed - есть ошибки.
func diagnoseTarget(cmd *cobra.Command, filePath string, f diagFlags, opts driver.Options) (bool, error) {
	kind, err := classifyTarget(filePath)
	if err != nil {
		return false, err
	}
	if kind == targetStdin {
		return false, fmt.Errorf("diag does not read stdin; use `oxide parse -`")
	}
	if f.crate && kind != targetFile {
		return false, fmt.Errorf("--crate expects the crate root file, got %s", filePath)
	}

	ctx := cmd.Context()
	var (
		fs      *source.FileSet
		bag     *diag.Bag
		loadErr bool
	)
	switch {
	case f.crate:
		res, perr := withProgress("diag crate", f.ui, opts, func(o driver.Options) (*driver.CrateResult, error) {
			return driver.ParseCrate(ctx, filePath, o)
		})
		if perr != nil {
			return false, fmt.Errorf("diagnosis failed: %w", perr)
		}
		fs, bag = res.FileSet, res.Bag()

	case kind == targetFile:
		res, derr := driver.Diagnose(ctx, filePath, opts)
		if res == nil {
			return false, fmt.Errorf("diagnosis failed: %w", derr)
		}
		if derr != nil && !sess.quiet {
			fmt.Fprintf(os.Stderr, "warning: %v\n", derr)
		}
		fs, bag = res.FileSet, res.Bag

	default:
		type dirOutcome struct {
			fs      *source.FileSet
			results []driver.DiagnoseDirResult
		}
		out, derr := withProgress("diag "+filePath, f.ui, opts, func(o driver.Options) (dirOutcome, error) {
			dfs, results, err := driver.DiagnoseDir(ctx, filePath, o)
			return dirOutcome{dfs, results}, err
		})
		if derr != nil {
			return false, fmt.Errorf("diagnosis failed: %w", derr)
		}
		fs = out.fs
		bag = mergeDirBags(out.results, func(r driver.DiagnoseDirResult) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
			loadErr = true
		})
	}

	bag = applyWarningPolicy(bag, f)
	if err := printDiagnostics(bag, fs, f, []string{filePath}); err != nil {
		return false, err
	}
	return loadErr || bag.HasErrors(), nil
}

// mergeDirBags сливает диагностики файлов каталога; onErr получает файлы,
// которые не удалось прочитать.
func mergeDirBags(results []driver.DiagnoseDirResult, onErr func(driver.DiagnoseDirResult)) *diag.Bag {
	total := 0
	for _, r := range results {
		if r.Err == nil {
			total += r.Bag.Len()
		}
	}
	bag := diag.NewBag(max(total, 1))
	for _, r := range results {
		if r.Err != nil {
			onErr(r)
			continue
		}
		bag.Merge(r.Bag)
	}
	bag.Sort()
	return bag
}

func applyWarningPolicy(bag *diag.Bag, f diagFlags) *diag.Bag {
	switch {
	case f.noWarnings:
		return bag.Filter(func(d diag.Diagnostic) bool { return d.Severity >= diag.SevError })
	case f.warningsAsErrors:
		out := diag.NewBag(max(bag.Cap(), 1))
		for _, d := range bag.Items() {
			if d.Severity < diag.SevError {
				d.Severity = diag.SevError
			}
			out.Add(d)
		}
		return out
	default:
		return bag
	}
}

func printDiagnostics(bag *diag.Bag, fs *source.FileSet, f diagFlags, args []string) error {
	pathMode := sess.pathMode()
	if f.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	showFixes := f.suggest || f.preview

	switch f.format {
	case "short":
		if output := diag.FormatShort(bag.Items(), fs, f.withNotes); output != "" {
			fmt.Fprintln(os.Stdout, output)
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     f.withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  f.preview,
		}
		if err := diagfmt.JSON(os.Stdout, bag, fs, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:       "oxide",
			ToolVersion:    version.Version,
			InvocationArgs: append([]string{filepath.Base(os.Args[0]), "diag"}, args...),
		}
		if err := diagfmt.Sarif(os.Stdout, bag, fs, meta); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		opts := sess.prettyOpts()
		opts.PathMode = pathMode
		opts.Width = terminalWidth(os.Stdout)
		opts.ShowNotes = f.withNotes
		opts.ShowFixes = showFixes
		opts.ShowPreview = f.preview
		opts.Color = resolveColor(sess.cfg.Output.Color, os.Stdout)
		diagfmt.Pretty(os.Stdout, bag, fs, opts)
	}
	return nil
}
