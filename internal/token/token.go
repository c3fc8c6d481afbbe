// Package token defines the closed token vocabulary shared by the
// tokenizer and the parser. The keyword enumeration is hand-written
// rather than machine-generated (see keywords.txt, the canonical
// source-of-truth list a TestKeywordTableMatchesSourceList keeps in
// sync), following the project convention of checking in generated-style
// enums instead of running a code generator at build time.
package token

import (
	"fmt"

	"github.com/solventlang/tsc/internal/position"
)

// Kind classifies a Token. Multi-character operators (==, &&, ...) are
// deliberately NOT members of this enum: the tokenizer emits adjacent
// Symbol tokens and the parser recombines them, preserving a known
// simplification from the language this compiler was modeled on.
type Kind int

const (
	Eof Kind = iota
	Symbol
	Identifier
	Keyword
	NumericLiteral
	FloatingNumberLiteral
	StringLiteral
	Whitespace
	Newline
	LineComment
	BlockComment
	Invalid
)

var kindNames = [...]string{
	Eof:                   "Eof",
	Symbol:                "Symbol",
	Identifier:            "Identifier",
	Keyword:               "Keyword",
	NumericLiteral:        "NumericLiteral",
	FloatingNumberLiteral: "FloatingNumberLiteral",
	StringLiteral:         "StringLiteral",
	Whitespace:            "Whitespace",
	Newline:               "Newline",
	LineComment:           "LineComment",
	BlockComment:          "BlockComment",
	Invalid:               "Invalid",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsBlank reports whether a token of this kind carries no grammatical
// meaning and should be skipped by the parser's next/peek helpers.
func (k Kind) IsBlank() bool {
	switch k {
	case Whitespace, Newline, LineComment, BlockComment:
		return true
	default:
		return false
	}
}

// Keyword enumerates the closed reserved-word set. Order matches
// keywords.txt line for line.
type Keyword int

const (
	Function Keyword = iota
	Return
	If
	Else
	While
	For
	Break
	Continue
	Let
	Const
	Var
	Class
	Extends
	Import
	From
	As
	True
	False
	Null
	New
	This
)

var keywordText = [...]string{
	Function: "function",
	Return:   "return",
	If:       "if",
	Else:     "else",
	While:    "while",
	For:      "for",
	Break:    "break",
	Continue: "continue",
	Let:      "let",
	Const:    "const",
	Var:      "var",
	Class:    "class",
	Extends:  "extends",
	Import:   "import",
	From:     "from",
	As:       "as",
	True:     "true",
	False:    "false",
	Null:     "null",
	New:      "new",
	This:     "this",
}

func (k Keyword) String() string {
	if int(k) >= 0 && int(k) < len(keywordText) {
		return keywordText[k]
	}

	return fmt.Sprintf("Keyword(%d)", int(k))
}

var keywordByText map[string]Keyword

func init() {
	keywordByText = make(map[string]Keyword, len(keywordText))
	for k, text := range keywordText {
		keywordByText[text] = Keyword(k)
	}
}

// Lookup disambiguates an already-scanned identifier lexeme from a
// keyword by exact string match, the contract the tokenizer is
// constructed with (spec: "a keyword-recognition function").
func Lookup(text string) (Keyword, bool) {
	kw, ok := keywordByText[text]

	return kw, ok
}

// Token is a tagged value carrying its lexeme and its source span. The
// lexer builds each Lexeme by converting the spanned source bytes to a
// string, so it is a copy and does not share the source buffer.
type Token struct {
	Kind    Kind
	Lexeme  string // the source text the token spans
	Keyword Keyword       // valid iff Kind == Keyword
	Sym     rune          // valid iff Kind == Symbol
	Quote   byte          // valid iff Kind == StringLiteral: '\'' or '"'
	Span    position.Span
}

// IsEof reports whether t is the zero-length end-of-file token.
func (t Token) IsEof() bool { return t.Kind == Eof }
