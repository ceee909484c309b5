package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/diagfmt"
	"oxide/internal/driver"
	"oxide/internal/source"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <file.rs|directory|->",
	Short: "Parse Rust sources and print the syntax tree",
	Long: `Parse builds the syntax tree of a file, of every source file in a directory,
or (with --crate) of a crate root and all module files it declares`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json|none)")
	parseCmd.Flags().Bool("crate", false, "treat the file as a crate root and follow `mod name;` declarations")
	parseCmd.Flags().String("ui", "auto", "progress UI for directories and crates (auto|on|off)")
}

// parsedFile: общий вид результата для вывода
type parsedFile struct {
	name string
	tree *ast.Tree
}

func runParse(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" && format != "none" {
		return fmt.Errorf("unknown format: %s", format)
	}
	crate, err := cmd.Flags().GetBool("crate")
	if err != nil {
		return fmt.Errorf("failed to get crate flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	kind, err := classifyTarget(filePath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	opts := sess.options()
	var (
		fs      *source.FileSet
		files   []parsedFile
		bag     *diag.Bag
		failed  bool
		display = func(f *source.File) string { return f.FormatPath("auto", fs.BaseDir()) }
	)

	switch {
	case kind == targetStdin:
		src, rerr := readStdin()
		if rerr != nil {
			return rerr
		}
		res := driver.ParseSource(ctx, "<stdin>", src, opts)
		fs, bag = res.FileSet, res.Bag
		files = append(files, parsedFile{name: res.File.Path, tree: res.Tree})

	case kind == targetFile && crate:
		res, perr := withProgress("parse crate", mode, opts, func(o driver.Options) (*driver.CrateResult, error) {
			return driver.ParseCrate(ctx, filePath, o)
		})
		if perr != nil {
			return fmt.Errorf("parsing failed: %w", perr)
		}
		fs, bag = res.FileSet, res.Bag()
		for _, m := range res.Modules {
			files = append(files, parsedFile{name: m.Path + " (" + m.Name + ")", tree: m.Tree})
		}

	case kind == targetFile:
		res, perr := driver.Parse(ctx, filePath, opts)
		if perr != nil {
			return fmt.Errorf("parsing failed: %w", perr)
		}
		fs, bag = res.FileSet, res.Bag
		files = append(files, parsedFile{name: display(res.File), tree: res.Tree})

	default:
		type dirOutcome struct {
			fs      *source.FileSet
			results []driver.ParseDirResult
		}
		out, perr := withProgress("parse "+filePath, mode, opts, func(o driver.Options) (dirOutcome, error) {
			dfs, results, err := driver.ParseDir(ctx, filePath, o)
			return dirOutcome{dfs, results}, err
		})
		if perr != nil {
			return fmt.Errorf("parsing failed: %w", perr)
		}
		fs = out.fs
		bag = diag.NewBag(1)
		for _, r := range out.results {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
				failed = true
				continue
			}
			bag.Merge(r.Bag)
			files = append(files, parsedFile{name: display(fs.Get(r.FileID)), tree: r.Tree})
		}
	}

	if bag.Len() > 0 {
		diagfmt.Pretty(os.Stderr, bag, fs, sess.prettyOpts())
	}
	if err := printTrees(files, format, fs); err != nil {
		return err
	}
	sess.printTimings("parse", filePath)
	if failed || bag.HasErrors() {
		return exitError{code: 1}
	}
	return nil
}

func printTrees(files []parsedFile, format string, fs *source.FileSet) error {
	switch format {
	case "none":
		return nil
	case "json":
		if len(files) == 1 {
			return diagfmt.FormatASTJSON(os.Stdout, files[0].tree)
		}
		output := make(map[string]diagfmt.ASTNodeOutput, len(files))
		for _, f := range files {
			output[f.name] = diagfmt.BuildASTOutput(f.tree, f.tree.Root)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	default:
		for idx, f := range files {
			if len(files) > 1 && !sess.quiet {
				if _, err := fmt.Fprintf(os.Stdout, "== %s ==\n", f.name); err != nil {
					return err
				}
			}
			if err := diagfmt.FormatASTPretty(os.Stdout, f.tree, fs); err != nil {
				return err
			}
			if len(files) > 1 && idx < len(files)-1 {
				if _, err := fmt.Fprintln(os.Stdout); err != nil {
					return err
				}
			}
		}
		return nil
	}
}
