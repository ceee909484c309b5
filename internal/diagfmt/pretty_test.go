package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"oxide/internal/diag"
	"oxide/internal/source"
)

func prettyString(bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) string {
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, opts)
	return buf.String()
}

func singleBag(d diag.Diagnostic) *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(d)
	return bag
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("/home/user/project/src/test.rs", []byte("let x = \"unterminated string\n"))
	fs.SetBaseDir("/home/user/project")

	bag := singleBag(diag.New(diag.SevError, diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 8, End: 28}, "Unterminated string literal"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/test.rs:1:9"},
		{"Relative path", PathModeRelative, "src/test.rs:1:9"},
		{"Basename only", PathModeBasename, "test.rs:1:9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := prettyString(bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			for _, want := range []string{tt.contains, "ERROR", "LEX1002", "Unterminated string"} {
				if !strings.Contains(output, want) {
					t.Errorf("output lacks %q:\n%s", want, output)
				}
			}
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"test.rs", "test.rs:1:9"},
		{"/very/long/absolute/path/to/some/nested/directory/file.rs", "file.rs:1:9"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			fs := source.NewFileSet()
			fileID := fs.AddVirtual(tt.path, []byte("let x = 42\n"))
			bag := singleBag(diag.New(diag.SevWarning, diag.LexUnknownChar,
				source.Span{File: fileID, Start: 8, End: 10}, "Test warning"))
			output := prettyString(bag, fs, PrettyOpts{PathMode: PathModeAuto})
			if !strings.HasPrefix(output, tt.expected) {
				t.Errorf("output = %q, want prefix %q", output, tt.expected)
			}
		})
	}
}

func TestPrettyCaretAlignment(t *testing.T) {
	tests := []struct {
		name    string
		content string
		start   uint32
		end     uint32
		line    string
		caret   string
	}{
		{
			name:    "plain",
			content: "fn main() {\n    let x = 1 +;\n}\n",
			start:   27, end: 28,
			line:  " 2 |     let x = 1 +;",
			caret: "   | " + strings.Repeat(" ", 15) + "^",
		},
		{
			name:    "multi byte span",
			content: "let total = a + bcd;",
			start:   16, end: 19,
			line:  " 1 | let total = a + bcd;",
			caret: "   | " + strings.Repeat(" ", 16) + "^~~",
		},
		{
			name:    "wide runes before span",
			content: "let s = \"日本\"; @",
			start:   18, end: 19,
			line:  " 1 | let s = \"日本\"; @",
			caret: "   | " + strings.Repeat(" ", 16) + "^",
		},
		{
			name:    "tab expands",
			content: "\tx = @;",
			start:   5, end: 6,
			line:  " 1 |     x = @;",
			caret: "   | " + strings.Repeat(" ", 8) + "^",
		},
		{
			name:    "span past line end",
			content: "call(a,\n  b",
			start:   4, end: 11,
			line:  " 1 | call(a,",
			caret: "   |     ^~~",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual("a.rs", []byte(tt.content))
			bag := singleBag(diag.NewError(diag.SynUnexpectedToken, source.Span{File: id, Start: tt.start, End: tt.end}, "bad"))
			output := prettyString(bag, fs, PrettyOpts{})
			want := tt.line + "\n" + tt.caret + "\n"
			if !strings.Contains(output, want) {
				t.Errorf("output:\n%s\nwant snippet:\n%s", output, want)
			}
		})
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("ctx.rs", []byte("fn a() {}\nfn b() {\n    x\n}\nfn c() {}\n"))
	bag := singleBag(diag.NewError(diag.SynExpectSemicolon, source.Span{File: id, Start: 24, End: 25}, "expected `;`"))

	output := prettyString(bag, fs, PrettyOpts{Context: 1})
	for _, want := range []string{" 2 | fn b() {", " 3 |     x", " 4 | }"} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in:\n%s", want, output)
		}
	}
	if strings.Contains(output, "fn a()") || strings.Contains(output, "fn c()") {
		t.Errorf("context leaks past one line:\n%s", output)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("use core::util\n")
	fileID := fs.AddVirtual("test.rs", content)

	primary := source.Span{File: fileID, Start: 4, End: 14}
	d := diag.New(diag.SevError, diag.SynExpectSemicolon, primary, "expected `;`").
		WithNote(source.Span{File: fileID, Start: 0, End: 3}, "while parsing this `use`").
		WithFix("insert semicolon", diag.FixEdit{Span: source.Span{File: fileID, Start: 14, End: 14}, NewText: ";"})

	output := prettyString(singleBag(d), fs, PrettyOpts{
		PathMode:  PathModeBasename,
		ShowNotes: true,
		ShowFixes: true,
	})
	for _, want := range []string{
		"note: test.rs:1:1: while parsing this `use`",
		"fix #1: insert semicolon",
		"edit test.rs:1:15: apply=\";\"",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in:\n%s", want, output)
		}
	}

	hidden := prettyString(singleBag(d), fs, PrettyOpts{PathMode: PathModeBasename})
	if strings.Contains(hidden, "note:") || strings.Contains(hidden, "fix #1") {
		t.Fatalf("notes and fixes must be opt-in:\n%s", hidden)
	}
}

func TestPrettyFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("example.rs", []byte("let a = 42 // missing semicolon"))
	insertSpan := source.Span{File: fileID, Start: 10, End: 10}
	d := diag.New(diag.SevError, diag.SynExpectSemicolon, insertSpan, "missing semicolon").
		WithFix("insert semicolon", diag.FixEdit{Span: insertSpan, NewText: ";"})

	output := prettyString(singleBag(d), fs, PrettyOpts{
		PathMode:    PathModeBasename,
		ShowFixes:   true,
		ShowPreview: true,
	})
	for _, want := range []string{
		"preview:",
		"- let a = 42 // missing semicolon",
		"+ let a = 42; // missing semicolon",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in:\n%s", want, output)
		}
	}
}

func TestPrettyWidthClipsSource(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("w.rs", []byte("let value = some_function_with_a_long_name(argument_one, argument_two);"))
	bag := singleBag(diag.NewError(diag.SynUnexpectedToken, source.Span{File: id, Start: 0, End: 3}, "bad"))
	output := prettyString(bag, fs, PrettyOpts{Width: 20})
	if !strings.Contains(output, " 1 | let value = some_fu…\n") {
		t.Fatalf("line not clipped:\n%s", output)
	}
}

func TestPrettyColorWrapsSeverity(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("c.rs", []byte("x"))
	bag := singleBag(diag.NewError(diag.SynExpectItem, source.Span{File: id, Start: 0, End: 1}, "expected item"))
	colored := prettyString(bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(colored, "\x1b[") {
		t.Fatalf("expected ANSI escapes:\n%q", colored)
	}
	plain := prettyString(bag, fs, PrettyOpts{})
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("unexpected ANSI escapes:\n%q", plain)
	}
}

func TestParsePathMode(t *testing.T) {
	for _, s := range []string{"auto", "absolute", "relative", "basename"} {
		m, err := ParsePathMode(s)
		if err != nil || m.String() != s {
			t.Errorf("ParsePathMode(%q) = %v, %v", s, m, err)
		}
	}
	if _, err := ParsePathMode("full"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
