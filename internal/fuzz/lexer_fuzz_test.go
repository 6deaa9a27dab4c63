package fuzztests

import (
	"testing"

	"fortio.org/safecast"

	"langlang/internal/diag"
	"langlang/internal/lexer"
	"langlang/internal/source"
	"langlang/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input, maxFuzzInput)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.ll", input))
		lines, err := safecast.Conv[uint32](len(file.LineIdx) + 1)
		if err != nil {
			t.Skip()
		}

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
		// каждый токен продвигает курсор, так что токенов не больше байтов
		for n := 0; ; n++ {
			if n > len(input)+1 {
				t.Fatalf("lexer produced more than %d tokens", n)
			}
			tok := lx.Next()
			if tok.Span.StartLine > lines || tok.Span.EndLine > lines {
				t.Fatalf("token %v spans past the last line %d", tok, lines)
			}
			if tok.Kind == token.EOF {
				break
			}
		}
		if tok := lx.Next(); tok.Kind != token.EOF {
			t.Fatalf("Next after EOF = %v", tok)
		}
	})
}
