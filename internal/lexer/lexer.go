// Package lexer implements the UTF-8-aware streaming tokenizer. It is
// constructed once per source buffer and reused across passes: the parser
// drives it with Next/Peek, and a second pass (e.g. a future formatter)
// can construct an independent Stream over the same bytes.
package lexer

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/unicode/rangetable"

	"github.com/solventlang/tsc/internal/diagnostic"
	"github.com/solventlang/tsc/internal/position"
	"github.com/solventlang/tsc/internal/token"
	"github.com/solventlang/tsc/internal/utf8scan"
)

// identContinue classifies "XID-continue beyond the first byte" per the
// spec: letters, digits, or underscore. golang.org/x/text/unicode/rangetable
// merges the stdlib unicode.Letter and unicode.Digit range tables with a
// single-rune table for '_', and golang.org/x/text/runes.In gives a
// Set with a Contains predicate over the merge — the ecosystem's
// table-driven way to build a custom Unicode class, used here instead of
// a hand-rolled chain of unicode.IsLetter/unicode.IsDigit calls.
var identContinue = runes.In(rangetable.Merge(unicode.Letter, unicode.Digit, rangetable.New('_')))

// KeywordFunc disambiguates an identifier lexeme into a keyword, the
// "keyword-recognition function" the tokenizer is constructed with.
type KeywordFunc func(text string) (token.Keyword, bool)

// Stream is a positioned token stream over a byte slice.
type Stream struct {
	src      []byte
	filename string
	keywords KeywordFunc

	pos     int // byte offset of the next unread byte
	tracker *position.Tracker

	lookahead  []token.Token // buffered tokens for Peek/PeekNth
	lastNonEOF token.Token

	diags diagnostic.Bag
}

// New constructs a Stream over src, using token.Lookup as the keyword
// recognizer.
func New(filename string, src []byte) *Stream {
	return NewWithKeywords(filename, src, token.Lookup)
}

// NewWithKeywords constructs a Stream with an explicit keyword-recognition
// function, letting a test or a future dialect substitute its own table.
func NewWithKeywords(filename string, src []byte, keywords KeywordFunc) *Stream {
	return &Stream{
		src:      src,
		filename: filename,
		keywords: keywords,
		tracker:  position.NewTracker(filename),
	}
}

// Diagnostics returns every syntax error recorded while scanning so far.
func (s *Stream) Diagnostics() *diagnostic.Bag { return &s.diags }

// LastNonEOF returns the last non-EOF token consumed, for diagnostics
// that need to describe "after X".
func (s *Stream) LastNonEOF() token.Token { return s.lastNonEOF }

// Eof returns the zero-length EOF token at the stream's end position.
func (s *Stream) Eof() token.Token {
	p := s.tracker.At(len(s.src))
	return token.Token{Kind: token.Eof, Span: position.Span{Start: p, End: p}}
}

// Peek returns the next token without advancing the stream.
func (s *Stream) Peek() token.Token {
	return s.PeekNth(0)
}

// PeekNth returns the token n positions ahead (0 == Peek) without
// advancing, buffering as many tokens as needed to satisfy it.
func (s *Stream) PeekNth(n int) token.Token {
	for len(s.lookahead) <= n {
		s.lookahead = append(s.lookahead, s.scanOne())
	}

	return s.lookahead[n]
}

// Next returns the next token, advancing the stream.
func (s *Stream) Next() token.Token {
	var tok token.Token

	if len(s.lookahead) > 0 {
		tok = s.lookahead[0]
		s.lookahead = s.lookahead[1:]
	} else {
		tok = s.scanOne()
	}

	if tok.Kind != token.Eof {
		s.lastNonEOF = tok
	}

	return tok
}

func (s *Stream) atEnd() bool { return s.pos >= len(s.src) }

// peekByte returns the byte at the current position, or 0 past the end.
func (s *Stream) peekByte() byte {
	if s.atEnd() {
		return 0
	}

	return s.src[s.pos]
}

func (s *Stream) peekByteAt(off int) byte {
	i := s.pos + off
	if i >= len(s.src) {
		return 0
	}

	return s.src[i]
}

// decodeRune decodes one scalar at the current position via the
// incremental UTF-8 decoder, advancing pos; callers fold the decoded rune
// into the line/column tracker themselves. It returns ok=false and
// records a SyntaxError on invalid UTF-8.
func (s *Stream) decodeRune() (r rune, startOff int, ok bool) {
	if s.atEnd() {
		return 0, s.pos, false
	}

	startOff = s.pos

	d := utf8scan.New()
	for !d.Ready() {
		if s.atEnd() {
			s.diags.Add(diagnostic.Syntax(s.tracker.At(startOff), "unexpected end of input inside UTF-8 sequence"))
			return 0, startOff, false
		}

		if err := d.Push(s.src[s.pos]); err != nil {
			s.diags.Add(diagnostic.Syntax(s.tracker.At(s.pos), "invalid UTF-8: %v", err))
			s.pos++

			return 0, startOff, false
		}

		s.pos++
	}

	r, err := d.TakeValidChar()
	if err != nil {
		s.diags.Add(diagnostic.Syntax(s.tracker.At(startOff), "invalid UTF-8: %v", err))
		return 0, startOff, false
	}

	return r, startOff, true
}

func (s *Stream) startPos() position.Position { return s.tracker.At(s.pos) }

func (s *Stream) span(start position.Position) position.Span {
	return position.Span{Start: start, End: s.tracker.At(s.pos)}
}

// scanOne scans and returns exactly one token, the core tokenizer loop.
func (s *Stream) scanOne() token.Token {
	if s.atEnd() {
		return s.Eof()
	}

	start := s.startPos()
	b := s.peekByte()

	switch {
	case b == '\n':
		s.pos++
		s.tracker.Advance(start.Offset, '\n')

		return token.Token{Kind: token.Newline, Lexeme: string(s.src[start.Offset:s.pos]), Span: s.span(start)}
	case b == '\r' && s.peekByteAt(1) == '\n':
		s.pos += 2
		s.tracker.Advance(start.Offset, ' ')
		s.tracker.Advance(start.Offset+1, '\n')

		return token.Token{Kind: token.Newline, Lexeme: string(s.src[start.Offset:s.pos]), Span: s.span(start)}
	case isASCIISpace(b):
		return s.scanWhitespace(start)
	case b == '/' && s.peekByteAt(1) == '/':
		return s.scanLineComment(start)
	case b == '/' && s.peekByteAt(1) == '*':
		return s.scanBlockComment(start)
	case b == '"' || b == '\'':
		return s.scanString(start, b)
	case isDigit(b):
		return s.scanNumber(start)
	case isXIDStart(b):
		return s.scanIdentifier(start)
	default:
		return s.scanSymbolOrUnicodeIdentifier(start)
	}
}

func isASCIISpace(b byte) bool { return b == ' ' || b == '\t' }
func isDigit(b byte) bool      { return b >= '0' && b <= '9' }

func isXIDStart(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func (s *Stream) scanWhitespace(start position.Position) token.Token {
	for isASCIISpace(s.peekByte()) {
		s.tracker.Advance(s.pos, rune(s.peekByte()))
		s.pos++
	}

	return token.Token{Kind: token.Whitespace, Lexeme: string(s.src[start.Offset:s.pos]), Span: s.span(start)}
}

func (s *Stream) scanLineComment(start position.Position) token.Token {
	for !s.atEnd() && s.peekByte() != '\n' {
		s.tracker.Advance(s.pos, rune(s.peekByte()))
		s.pos++
	}

	return token.Token{Kind: token.LineComment, Lexeme: string(s.src[start.Offset:s.pos]), Span: s.span(start)}
}

func (s *Stream) scanBlockComment(start position.Position) token.Token {
	s.tracker.Advance(s.pos, '/')
	s.pos++ // '/'
	s.tracker.Advance(s.pos, '*')
	s.pos++ // '*'

	for {
		if s.atEnd() {
			s.diags.Add(diagnostic.Syntax(start, "unterminated block comment"))
			break
		}

		if s.peekByte() == '*' && s.peekByteAt(1) == '/' {
			s.tracker.Advance(s.pos, '*')
			s.pos++
			s.tracker.Advance(s.pos, '/')
			s.pos++

			break
		}

		s.tracker.Advance(s.pos, rune(s.peekByte()))
		s.pos++
	}

	return token.Token{Kind: token.BlockComment, Lexeme: string(s.src[start.Offset:s.pos]), Span: s.span(start)}
}

// scanIdentifier scans an ASCII-led identifier, continuing into any
// byte classified as XID-continue by identContinue, including multi-byte
// Unicode scalars.
func (s *Stream) scanIdentifier(start position.Position) token.Token {
	s.tracker.Advance(s.pos, rune(s.peekByte()))
	s.pos++

	s.consumeIdentContinuation()

	lexeme := string(s.src[start.Offset:s.pos])

	if kw, ok := s.keywords(lexeme); ok {
		return token.Token{Kind: token.Keyword, Keyword: kw, Lexeme: lexeme, Span: s.span(start)}
	}

	return token.Token{Kind: token.Identifier, Lexeme: lexeme, Span: s.span(start)}
}

func (s *Stream) consumeIdentContinuation() {
	for !s.atEnd() {
		b := s.peekByte()
		if b < 0x80 {
			if !identContinue.Contains(rune(b)) {
				return
			}

			s.tracker.Advance(s.pos, rune(b))
			s.pos++

			continue
		}

		save := s.pos
		r, _, ok := s.decodeRune()

		if !ok || !identContinue.Contains(r) {
			s.pos = save
			return
		}

		s.tracker.Advance(save, r)
	}
}

// scanSymbolOrUnicodeIdentifier handles every lead byte the other cases
// of scanOne did not claim: an ASCII byte becomes a single-byte Symbol, a
// non-ASCII scalar that unicode.IsLetter accepts begins an identifier,
// and any other scalar is lexed as a single-scalar Symbol.
func (s *Stream) scanSymbolOrUnicodeIdentifier(start position.Position) token.Token {
	b := s.peekByte()

	if b < 0x80 {
		s.tracker.Advance(s.pos, rune(b))
		s.pos++

		return token.Token{Kind: token.Symbol, Sym: rune(b), Lexeme: string(b), Span: s.span(start)}
	}

	r, off, ok := s.decodeRune()
	if !ok {
		return token.Token{Kind: token.Invalid, Lexeme: string(s.src[off:s.pos]), Span: s.span(start)}
	}

	if unicode.IsLetter(r) {
		s.tracker.Advance(off, r)
		s.consumeIdentContinuation()

		lexeme := string(s.src[start.Offset:s.pos])

		return token.Token{Kind: token.Identifier, Lexeme: lexeme, Span: s.span(start)}
	}

	s.tracker.Advance(off, r)

	return token.Token{Kind: token.Symbol, Sym: r, Lexeme: string(r), Span: s.span(start)}
}

// scanNumber scans decimal digits with an optional 0x/0o/0b base prefix,
// promoting to FloatingNumberLiteral on a following '.' or 'e'/'E', and
// capturing a trailing type suffix (i32, u64, f32, ...) as part of the
// lexeme. Underscores inside digits are accepted and kept in the lexeme;
// the phases that read the value drop them.
func (s *Stream) scanNumber(start position.Position) token.Token {
	isFloat := false

	if s.peekByte() == '0' && (s.peekByteAt(1) == 'x' || s.peekByteAt(1) == 'o' || s.peekByteAt(1) == 'b') {
		s.advanceByte() // '0'
		s.advanceByte() // base letter
		s.consumeDigitsAndUnderscores(baseDigitSet(s.src[s.pos-1]))
	} else {
		s.consumeDigitsAndUnderscores(isDigit)

		if s.peekByte() == '.' && isDigit(s.peekByteAt(1)) {
			isFloat = true

			s.advanceByte() // '.'
			s.consumeDigitsAndUnderscores(isDigit)
		}

		if s.peekByte() == 'e' || s.peekByte() == 'E' {
			save := s.pos
			s.advanceByte()

			if s.peekByte() == '+' || s.peekByte() == '-' {
				s.advanceByte()
			}

			if isDigit(s.peekByte()) {
				isFloat = true
				s.consumeDigitsAndUnderscores(isDigit)
			} else {
				s.pos = save
			}
		}
	}

	// Trailing type suffix: a run of ASCII letters/digits immediately
	// following the numeric body, e.g. i32, u64, f32.
	for isXIDStart(s.peekByte()) || isDigit(s.peekByte()) {
		s.advanceByte()
	}

	lexeme := string(s.src[start.Offset:s.pos])
	kind := token.NumericLiteral

	if isFloat {
		kind = token.FloatingNumberLiteral
	}

	return token.Token{Kind: kind, Lexeme: lexeme, Span: s.span(start)}
}

func baseDigitSet(baseLetter byte) func(byte) bool {
	switch baseLetter {
	case 'x':
		return func(b byte) bool {
			return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
		}
	case 'o':
		return func(b byte) bool { return b >= '0' && b <= '7' }
	case 'b':
		return func(b byte) bool { return b == '0' || b == '1' }
	default:
		return isDigit
	}
}

func (s *Stream) consumeDigitsAndUnderscores(isDigitLike func(byte) bool) {
	for isDigitLike(s.peekByte()) || s.peekByte() == '_' {
		s.advanceByte()
	}
}

func (s *Stream) advanceByte() {
	s.tracker.Advance(s.pos, rune(s.peekByte()))
	s.pos++
}

// scanString scans a quoted string literal, preserving the quote
// character in the token so the parser can distinguish single- from
// double-quoted forms. The escape letters \\ \n \r \t \" \' \0 \x and \u
// are accepted and any other escape letter is reported as a syntax error;
// the hex digits following \x and \u are not checked.
func (s *Stream) scanString(start position.Position, quote byte) token.Token {
	s.advanceByte() // opening quote

	terminated := false

	for !s.atEnd() {
		b := s.peekByte()

		if b == quote {
			s.advanceByte()

			terminated = true

			break
		}

		if b == '\\' {
			s.advanceByte()

			if !s.atEnd() {
				switch s.peekByte() {
				case '\\', 'n', 'r', 't', '"', '\'', '0', 'x', 'u':
				default:
					s.diags.Add(diagnostic.Syntax(s.startPos(), "invalid escape sequence \\%c", s.peekByte()))
				}

				s.advanceByte() // escaped character
			}

			continue
		}

		if b == '\n' {
			break // a bare newline never continues a string literal
		}

		s.advanceByte()
	}

	if !terminated {
		s.diags.Add(diagnostic.Syntax(start, "unterminated string literal"))
	}

	return token.Token{Kind: token.StringLiteral, Quote: quote, Lexeme: string(s.src[start.Offset:s.pos]), Span: s.span(start)}
}
