package fuzztests

import (
	"testing"

	"oxide/internal/diag"
	"oxide/internal/lexer"
	"oxide/internal/source"
	"oxide/internal/testkit"
	"oxide/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.rs", input))

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
		var toks []token.Token
		for tok := range lx.All() {
			toks = append(toks, tok)
			if len(toks) > len(file.Content)+2 {
				t.Fatalf("lexer does not advance on %q", truncateForLog(input, 200))
			}
		}
		if err := testkit.CheckTokenInvariants(toks, file.Len()); err != nil {
			t.Fatalf("%v\ninput: %q", err, truncateForLog(input, 200))
		}
	})
}
