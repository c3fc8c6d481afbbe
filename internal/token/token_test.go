package token

import (
	"bufio"
	"os"
	"strings"
	"testing"
)

// TestKeywordTableMatchesSourceList keeps the hand-written Keyword enum in
// sync with keywords.txt, the canonical reserved-word list, the way the
// project checks in generated-style enums instead of running a code
// generator at build time.
func TestKeywordTableMatchesSourceList(t *testing.T) {
	f, err := os.Open("keywords.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []string

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		lines = append(lines, line)
	}

	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}

	if len(lines) != len(keywordText) {
		t.Fatalf("keywords.txt has %d entries, Keyword enum has %d", len(lines), len(keywordText))
	}

	for i, word := range lines {
		if keywordText[i] != word {
			t.Errorf("keywordText[%d] = %q, keywords.txt line %d = %q", i, keywordText[i], i+1, word)
		}

		if kw, ok := Lookup(word); !ok || kw != Keyword(i) {
			t.Errorf("Lookup(%q) = %v, %v; want %v, true", word, kw, ok, Keyword(i))
		}
	}
}

func TestLookupRejectsNonKeyword(t *testing.T) {
	if _, ok := Lookup("notAKeyword"); ok {
		t.Fatal("Lookup should reject an identifier that is not a keyword")
	}
}

func TestKindIsBlank(t *testing.T) {
	blank := []Kind{Whitespace, Newline, LineComment, BlockComment}
	for _, k := range blank {
		if !k.IsBlank() {
			t.Errorf("%v.IsBlank() = false, want true", k)
		}
	}

	notBlank := []Kind{Eof, Symbol, Identifier, Keyword, NumericLiteral, StringLiteral}
	for _, k := range notBlank {
		if k.IsBlank() {
			t.Errorf("%v.IsBlank() = true, want false", k)
		}
	}
}
