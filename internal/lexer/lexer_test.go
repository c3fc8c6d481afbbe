package lexer

import (
	"testing"

	"github.com/solventlang/tsc/internal/token"
)

func collect(src string) []token.Token {
	s := New("t.sv", []byte(src))

	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)

		if tok.Kind == token.Eof {
			break
		}
	}

	return toks
}

func TestLosslessRoundTrip(t *testing.T) {
	srcs := []string{
		`function min1(){}function min2(){}`,
		"let x: i32 = 1_000 + 0x1F;\n// comment\n/* block */\"str\\n\"",
	}

	for _, src := range srcs {
		toks := collect(src)

		var rebuilt []byte
		for _, tok := range toks {
			if tok.Kind == token.Eof {
				continue
			}

			rebuilt = append(rebuilt, tok.Lexeme...)
		}

		if string(rebuilt) != src {
			t.Fatalf("lossless round trip failed:\n got: %q\nwant: %q", rebuilt, src)
		}
	}
}

func TestKeywordVsIdentifier(t *testing.T) {
	toks := collect(`function min1(){}function min2(){}`)

	var kinds []token.Kind

	var idents []string

	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)

		if tok.Kind == token.Identifier {
			idents = append(idents, tok.Lexeme)
		}
	}

	if toks[0].Kind != token.Keyword || toks[0].Keyword != token.Function {
		t.Fatalf("first token = %+v, want Keyword(function)", toks[0])
	}

	want := []string{"min1", "min2"}
	if len(idents) != 2 || idents[0] != want[0] || idents[1] != want[1] {
		t.Fatalf("identifiers = %v, want %v", idents, want)
	}
}

func TestNumberSuffixAndFloat(t *testing.T) {
	toks := collect(`42i32 3.5 0xFFu64`)

	if toks[0].Kind != token.NumericLiteral || toks[0].Lexeme != "42i32" {
		t.Fatalf("tok0 = %+v", toks[0])
	}

	if toks[2].Kind != token.FloatingNumberLiteral || toks[2].Lexeme != "3.5" {
		t.Fatalf("tok2 = %+v", toks[2])
	}

	if toks[4].Kind != token.NumericLiteral || toks[4].Lexeme != "0xFFu64" {
		t.Fatalf("tok4 = %+v", toks[4])
	}
}

func TestUnterminatedBlockCommentIsSyntaxError(t *testing.T) {
	s := New("t.sv", []byte("/* never closed"))

	for {
		tok := s.Next()
		if tok.Kind == token.Eof {
			break
		}
	}

	if !s.Diagnostics().HasErrors() {
		t.Fatal("expected a syntax error for an unterminated block comment")
	}
}

func TestMultiCharOperatorsAreAdjacentSymbols(t *testing.T) {
	toks := collect(`==`)
	if len(toks) != 3 || toks[0].Kind != token.Symbol || toks[0].Sym != '=' || toks[1].Kind != token.Symbol || toks[1].Sym != '=' {
		t.Fatalf("toks = %+v, want two adjacent '=' symbols", toks[:2])
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	s := New("t.sv", []byte(`let x`))

	first := s.Peek()
	second := s.Peek()

	if first != second {
		t.Fatalf("Peek() not idempotent: %+v != %+v", first, second)
	}

	advanced := s.Next()
	if advanced != first {
		t.Fatalf("Next() after Peek() = %+v, want %+v", advanced, first)
	}
}

func TestEuroSignIsNotIdentifierContinuation(t *testing.T) {
	// '€' is a Symbol per Unicode, not Letter/Digit, so it should NOT
	// continue an identifier; this guards against a too-permissive merge.
	toks := collect("a€")
	if toks[0].Kind != token.Identifier || toks[0].Lexeme != "a" {
		t.Fatalf("tok0 = %+v, want identifier \"a\"", toks[0])
	}
}
