package fuzztests

import (
	"context"
	"testing"
	"time"

	"oxide/internal/parser"
	"oxide/internal/source"
	"oxide/internal/testkit"
)

// parseTimeout is the maximum time allowed for parsing a single input.
// If parsing takes longer, it indicates a potential infinite loop.
const parseTimeout = 5 * time.Second

func parseInput(ctx context.Context, input []byte) parser.Result {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("fuzz.rs", input))
	return parser.Parse(ctx, file, parser.Options{MaxErrors: 128})
}

func FuzzParserTreeInvariants(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		res := parseInput(context.Background(), input)
		if res.Tree == nil {
			t.Fatal("nil tree")
		}
		if err := testkit.CheckSpanInvariants(res.Tree); err != nil {
			t.Fatalf("%v\ninput: %q", err, truncateForLog(input, 200))
		}
	})
}

// FuzzParserNoHang tests that the parser doesn't hang on any input.
// It uses a timeout to detect infinite loops in error recovery.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)

	// Add specific edge cases for recovery
	f.Add([]byte("fn f() { let x = 1\nlet y = 2; }"))    // missing semicolon
	f.Add([]byte("fn f() { g(1, 2 }"))                   // unclosed paren
	f.Add([]byte("impl<T: Iterator<Item = u8>> X for"))  // cut off in a header
	f.Add([]byte("fn f() { { { { } } } }"))              // deeply nested blocks
	f.Add([]byte("fn f() { match x { } }"))              // empty match
	f.Add([]byte("macro_rules! m { ($($t:tt)*) => { }")) // unclosed macro rules
	f.Add([]byte("fn f() { a::<b::<c::<d>>>(); }"))      // split >>

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = parseInput(ctx, input)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("parser hang detected: parsing took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

// FuzzParserDeterministic: два разбора одного ввода дают одно и то же
func FuzzParserDeterministic(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		a := parseInput(context.Background(), input)
		b := parseInput(context.Background(), input)
		if a.Tree.Len() != b.Tree.Len() || a.Bag.Len() != b.Bag.Len() {
			t.Fatalf("nodes %d/%d, diagnostics %d/%d", a.Tree.Len(), b.Tree.Len(), a.Bag.Len(), b.Bag.Len())
		}
	})
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
