package fix

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"oxide/internal/diag"
	"oxide/internal/source"
)

// semicolonDiag: ошибка с fix "insert `;`" в позиции at
func semicolonDiag(file source.FileID, at uint32) diag.Diagnostic {
	span := source.Span{File: file, Start: at, End: at}
	return diag.NewError(diag.SynExpectSemicolon, span, "expected `;`").
		WithFix("insert `;`", diag.FixEdit{Span: span, NewText: ";"})
}

func loadFile(t *testing.T, content string) (*source.FileSet, source.FileID, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.rs")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return fs, id, path
}

func TestApplyAllRewritesFromTheEnd(t *testing.T) {
	src := "let a = 1\nlet b = 2\n"
	fs, id, path := loadFile(t, src)
	diags := []diag.Diagnostic{semicolonDiag(id, 19), semicolonDiag(id, 9)}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 2 || len(res.FileChanges) != 1 {
		t.Fatalf("applied=%d changes=%d", len(res.Applied), len(res.FileChanges))
	}
	want := "let a = 1;\nlet b = 2;\n"
	if got := string(res.FileChanges[0].Content); got != want {
		t.Errorf("content = %q, want %q", got, want)
	}

	// Apply ничего не пишет сам
	if data, _ := os.ReadFile(path); string(data) != src {
		t.Fatalf("file changed before Write: %q", data)
	}
	if err := Write(fs, res.FileChanges); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != want {
		t.Errorf("written = %q", data)
	}
}

func TestApplyOnceTakesFirstInFileOrder(t *testing.T) {
	fs, id, _ := loadFile(t, "let a = 1\nlet b = 2\n")
	diags := []diag.Diagnostic{semicolonDiag(id, 19), semicolonDiag(id, 9)}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeOnce})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := string(res.FileChanges[0].Content); got != "let a = 1;\nlet b = 2\n" {
		t.Errorf("content = %q", got)
	}
}

func TestApplyByID(t *testing.T) {
	fs, id, _ := loadFile(t, "let a = 1\nlet b = 2\n")
	diags := []diag.Diagnostic{semicolonDiag(id, 9), semicolonDiag(id, 19)}
	cands, _ := Candidates(diags)
	if len(cands) != 2 {
		t.Fatalf("candidates = %d", len(cands))
	}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeID, TargetID: cands[1].ID})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Applied[0].ID != cands[1].ID {
		t.Errorf("applied %s", res.Applied[0].ID)
	}

	_, err = Apply(fs, diags, ApplyOptions{Mode: ApplyModeID, TargetID: "nope"})
	if !errors.Is(err, ErrNoFixes) {
		t.Errorf("unknown id err = %v", err)
	}
}

func TestApplySkipsConflictsAndVirtualFiles(t *testing.T) {
	fs, id, _ := loadFile(t, "let a = 1\n")
	span := source.Span{File: id, Start: 9, End: 9}
	other := diag.NewError(diag.SynUnexpectedToken, source.Span{File: id, Start: 8, End: 9}, "x").
		WithFix("insert `,`", diag.FixEdit{Span: span, NewText: ","})

	res, err := Apply(fs, []diag.Diagnostic{semicolonDiag(id, 9), other}, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || len(res.Skipped) != 1 {
		t.Fatalf("applied=%d skipped=%d", len(res.Applied), len(res.Skipped))
	}

	vid := fs.AddVirtual("<stdin>", []byte("let a = 1\n"))
	_, err = Apply(fs, []diag.Diagnostic{semicolonDiag(vid, 9)}, ApplyOptions{Mode: ApplyModeAll})
	if !errors.Is(err, ErrNoFixes) {
		t.Errorf("virtual file err = %v", err)
	}
}

func TestApplyWithoutFixes(t *testing.T) {
	fs, id, _ := loadFile(t, "fn f() {}\n")
	d := diag.NewError(diag.SynExpectItem, source.Span{File: id}, "no fix here")
	if _, err := Apply(fs, []diag.Diagnostic{d}, ApplyOptions{}); !errors.Is(err, ErrNoFixes) {
		t.Errorf("err = %v", err)
	}
}

func TestSpansConflict(t *testing.T) {
	tests := []struct {
		a, b stagedEdit
		want bool
	}{
		{stagedEdit{start: 1, end: 1}, stagedEdit{start: 1, end: 1}, true},
		{stagedEdit{start: 1, end: 1}, stagedEdit{start: 2, end: 2}, false},
		{stagedEdit{start: 2, end: 2}, stagedEdit{start: 1, end: 4}, true},
		{stagedEdit{start: 1, end: 1}, stagedEdit{start: 1, end: 4}, false},
		{stagedEdit{start: 0, end: 3}, stagedEdit{start: 3, end: 5}, false},
		{stagedEdit{start: 0, end: 4}, stagedEdit{start: 3, end: 5}, true},
	}
	for _, tt := range tests {
		if got := spansConflict(tt.a, tt.b); got != tt.want {
			t.Errorf("spansConflict(%+v, %+v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
