package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"oxide/internal/diag"
	"oxide/internal/driver"
	"oxide/internal/fix"
	"oxide/internal/source"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.rs|directory>",
	Short: "Apply suggested fixes to a source file or directory",
	Long:  "Parse the input, surface the fixes attached to its diagnostics, and apply them according to the chosen strategy.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply every non-conflicting fix")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply fix with a specific identifier")
	fixCmd.Flags().Bool("list", false, "list available fixes and their identifiers")
	fixCmd.Flags().Bool("dry-run", false, "report what would change without writing files")
}

func readFixOptions(cmd *cobra.Command) (fix.ApplyOptions, error) {
	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	applyOnce, err := cmd.Flags().GetBool("once")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	if targetID != "" && (applyAll || applyOnce) {
		return fix.ApplyOptions{}, fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnce {
		return fix.ApplyOptions{}, fmt.Errorf("--all and --once are mutually exclusive")
	}

	mode := fix.ApplyModeOnce
	if targetID != "" {
		mode = fix.ApplyModeID
	} else if applyAll {
		mode = fix.ApplyModeAll
	}
	return fix.ApplyOptions{Mode: mode, TargetID: targetID}, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	targetPath := args[0]
	opts, err := readFixOptions(cmd)
	if err != nil {
		return err
	}
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}

	kind, err := classifyTarget(targetPath)
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}
	if kind == targetStdin {
		return fmt.Errorf("fix: stdin has no file to rewrite")
	}

	fs, diagnostics, err := collectFixable(cmd, targetPath, kind)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if list {
		return printCandidates(out, fs, diagnostics)
	}

	res, applyErr := fix.Apply(fs, diagnostics, opts)
	if applyErr == nil && !dryRun {
		if err := fix.Write(fs, res.FileChanges); err != nil {
			return fmt.Errorf("fix: %w", err)
		}
	}
	return handleApplyResult(out, res, applyErr, dryRun)
}

// collectFixable разбирает файл или каталог в один FileSet и возвращает все диагностики.
func collectFixable(cmd *cobra.Command, path string, kind targetKind) (*source.FileSet, []diag.Diagnostic, error) {
	opts := sess.options()
	if kind == targetFile {
		res, err := driver.Parse(cmd.Context(), path, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("fix: %w", err)
		}
		return res.FileSet, res.Bag.Items(), nil
	}

	fs, results, err := driver.ParseDir(cmd.Context(), path, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("fix: %w", err)
	}
	var all []diag.Diagnostic
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
			continue
		}
		all = append(all, r.Bag.Items()...)
	}
	return fs, all, nil
}

func printCandidates(out io.Writer, fs *source.FileSet, diagnostics []diag.Diagnostic) error {
	cands, _ := fix.Candidates(diagnostics)
	if len(cands) == 0 {
		_, err := fmt.Fprintln(out, "No fixes available.")
		return err
	}
	for _, c := range cands {
		file := fs.Get(c.Diag.Primary.File)
		pos := file.LineCol(c.Diag.Primary.Start)
		if _, err := fmt.Fprintf(out, "%s  %s:%d:%d  %s\n", c.ID, file.FormatPath("auto", fs.BaseDir()), pos.Line, pos.Col, c.Fix.Title); err != nil {
			return err
		}
	}
	return nil
}

func handleApplyResult(out io.Writer, res *fix.ApplyResult, applyErr error, dryRun bool) error {
	if res == nil {
		return applyErr
	}
	verb := "Applied"
	if dryRun {
		verb = "Would apply"
	}

	if len(res.Applied) > 0 {
		fmt.Fprintf(out, "%s %d fix(es):\n", verb, len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(out, "  %s [%s]: %s (%d edits)\n", item.Title, item.ID, location, item.EditCount)
		}
	}
	if len(res.FileChanges) > 0 {
		if dryRun {
			fmt.Fprintln(out, "Files that would change:")
		} else {
			fmt.Fprintln(out, "Updated files:")
		}
		for _, change := range res.FileChanges {
			fmt.Fprintf(out, "  %s (%d edits)\n", change.Path, change.EditCount)
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintln(out, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(out, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(out, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) {
			_, err := fmt.Fprintln(out, "No applicable fixes found.")
			return err
		}
		return applyErr
	}
	return nil
}
