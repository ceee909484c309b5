// Package fix applies the edits suggested by diagnostics to source files.
package fix

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"oxide/internal/diag"
	"oxide/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	// ApplyModeOnce: первый fix по порядку файлов и позиций
	ApplyModeOnce ApplyMode = iota
	ApplyModeAll
	ApplyModeID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID          string
	Title       string
	Code        diag.Code
	Message     string
	PrimaryPath string
	EditCount   int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange is the new content of one file. Content is what Write puts on disk.
type FileChange struct {
	FileID    source.FileID
	Path      string
	EditCount int
	Content   []byte
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

// Candidate is one fix of one diagnostic, with a stable id.
type Candidate struct {
	ID    string
	Diag  diag.Diagnostic
	Fix   diag.Fix
	order int
}

// Candidates lists every fix in diagnostics in apply order. The id has the form
// CODE-file-offset-index and is stable for unchanged input.
func Candidates(diagnostics []diag.Diagnostic) ([]Candidate, []SkippedFix) {
	var (
		cands []Candidate
		skips []SkippedFix
	)
	order := 0
	for _, d := range diagnostics {
		for idx, f := range d.Fixes {
			id := fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx)
			if len(f.Edits) == 0 {
				skips = append(skips, SkippedFix{ID: id, Title: f.Title, Reason: "fix has no edits"})
				continue
			}
			cands = append(cands, Candidate{ID: id, Diag: d, Fix: f, order: order})
			order++
		}
	}
	sortCandidates(cands)
	return cands, skips
}

// Apply selects fixes according to opts and computes the new file contents.
// Nothing is written; see Write.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates, buildSkips := Candidates(diagnostics)
	result.Skipped = append(result.Skipped, buildSkips...)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}

	selected, selectionSkips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)
	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	applied, skipped, changes := applyCandidates(fs, selected)
	result.Applied = applied
	result.Skipped = append(result.Skipped, skipped...)
	result.FileChanges = changes
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

// Write stores every changed file, keeping its mode and byte order mark.
func Write(fs *source.FileSet, changes []FileChange) error {
	for _, ch := range changes {
		file := fs.Get(ch.FileID)
		mode := os.FileMode(0o644)
		if info, err := os.Stat(file.Path); err == nil {
			mode = info.Mode()
		}
		content := ch.Content
		if file.Flags&source.FileHadBOM != 0 {
			content = append([]byte{0xEF, 0xBB, 0xBF}, content...)
		}
		if err := os.WriteFile(file.Path, content, mode); err != nil {
			return fmt.Errorf("write %s: %w", file.Path, err)
		}
	}
	return nil
}

// sortCandidates: по файлу, началу и концу primary-спана, затем по порядку появления
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].Diag, candidates[j].Diag
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		return candidates[i].order < candidates[j].order
	})
}

func selectCandidates(candidates []Candidate, opts ApplyOptions) ([]Candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		for _, cand := range candidates {
			if cand.ID == opts.TargetID {
				return []Candidate{cand}, nil
			}
		}
		return nil, []SkippedFix{{
			ID:     opts.TargetID,
			Reason: "fix id not found",
		}}
	case ApplyModeAll:
		// из нескольких вариантов для одной диагностики берём первый
		var (
			selected []Candidate
			skipped  []SkippedFix
		)
		seen := make(map[source.Span]diag.Code)
		for _, cand := range candidates {
			if code, ok := seen[cand.Diag.Primary]; ok && code == cand.Diag.Code {
				skipped = append(skipped, SkippedFix{
					ID:     cand.ID,
					Title:  cand.Fix.Title,
					Reason: "alternative to an earlier fix",
				})
				continue
			}
			seen[cand.Diag.Primary] = cand.Diag.Code
			selected = append(selected, cand)
		}
		return selected, skipped
	case ApplyModeOnce:
		return candidates[:1], nil
	default:
		return nil, nil
	}
}

// stagedEdit: правка в координатах исходного файла
type stagedEdit struct {
	start, end uint32
	text       string
}

func applyCandidates(fs *source.FileSet, selected []Candidate) ([]AppliedFix, []SkippedFix, []FileChange) {
	accepted := make(map[source.FileID][]stagedEdit)
	var (
		applied []AppliedFix
		skipped []SkippedFix
	)
	baseDir := fs.BaseDir()

	for _, cand := range selected {
		edits, reason := stageFix(fs, cand.Fix, accepted)
		if reason != "" {
			skipped = append(skipped, SkippedFix{ID: cand.ID, Title: cand.Fix.Title, Reason: reason})
			continue
		}
		for fileID, es := range edits {
			accepted[fileID] = append(accepted[fileID], es...)
		}
		path := ""
		if f := fs.Get(cand.Diag.Primary.File); f != nil {
			path = f.FormatPath("auto", baseDir)
		}
		applied = append(applied, AppliedFix{
			ID:          cand.ID,
			Title:       cand.Fix.Title,
			Code:        cand.Diag.Code,
			Message:     cand.Diag.Message,
			PrimaryPath: path,
			EditCount:   len(cand.Fix.Edits),
		})
	}

	changes := make([]FileChange, 0, len(accepted))
	for fileID, edits := range accepted {
		file := fs.Get(fileID)
		changes = append(changes, FileChange{
			FileID:    fileID,
			Path:      file.FormatPath("relative", baseDir),
			EditCount: len(edits),
			Content:   rewrite(file.Content, edits),
		})
	}
	slices.SortFunc(changes, func(a, b FileChange) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		}
		return 0
	})
	return applied, skipped, changes
}

// stageFix проверяет правки одного fix; непустая причина - fix пропускается целиком.
func stageFix(fs *source.FileSet, f diag.Fix, accepted map[source.FileID][]stagedEdit) (map[source.FileID][]stagedEdit, string) {
	out := make(map[source.FileID][]stagedEdit)
	for _, edit := range f.Edits {
		file := fs.Get(edit.Span.File)
		if file == nil {
			return nil, "target file is unknown"
		}
		if file.Flags&source.FileVirtual != 0 {
			return nil, "target file is virtual"
		}
		if file.Flags&source.FileNormalizedCRLF != 0 {
			return nil, "target file uses CRLF line endings"
		}
		if edit.Span.Start > edit.Span.End || edit.Span.End > file.Len() {
			return nil, "edit span out of range"
		}
		se := stagedEdit{start: edit.Span.Start, end: edit.Span.End, text: edit.NewText}
		for _, prev := range accepted[edit.Span.File] {
			if spansConflict(prev, se) {
				return nil, fmt.Sprintf("conflicts with previously applied edits in %s", file.FormatPath("auto", fs.BaseDir()))
			}
		}
		for _, prev := range out[edit.Span.File] {
			if spansConflict(prev, se) {
				return nil, "fix edits overlap"
			}
		}
		out[edit.Span.File] = append(out[edit.Span.File], se)
	}
	return out, ""
}

// rewrite применяет правки с конца файла, чтобы смещения не съезжали.
func rewrite(content []byte, edits []stagedEdit) []byte {
	sorted := slices.Clone(edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start == sorted[j].start {
			return sorted[i].end > sorted[j].end
		}
		return sorted[i].start > sorted[j].start
	})
	out := slices.Clone(content)
	for _, e := range sorted {
		out = slices.Concat(out[:e.start], []byte(e.text), out[e.end:])
	}
	return out
}

// spansConflict reports whether two edits overlap. Spans are half-open; two
// insertions at the same point conflict because their order is ambiguous.
func spansConflict(a, b stagedEdit) bool {
	if a.start == a.end && b.start == b.end {
		return a.start == b.start
	}
	if a.start == a.end {
		return b.start < a.start && a.start < b.end
	}
	if b.start == b.end {
		return a.start < b.start && b.start < a.end
	}
	return a.start < b.end && b.start < a.end
}
