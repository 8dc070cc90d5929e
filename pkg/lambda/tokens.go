package lambda

import (
	"strconv"
	"unicode"

	"github.com/vic/skjnet/pkg/term"
)

// word is a whitespace or paren delimited token of the polish and
// s-expression notations.
type word struct {
	text   string
	offset int
}

// splitWords tokenizes input. When parens is set, '(' and ')' are tokens of
// their own.
func splitWords(input string, parens bool) []word {
	var words []word
	start := -1
	flush := func(end int) {
		if start >= 0 {
			words = append(words, word{text: input[start:end], offset: start})
			start = -1
		}
	}
	for i := 0; i < len(input); i++ {
		ch := input[i]
		switch {
		case unicode.IsSpace(rune(ch)):
			flush(i)
		case parens && (ch == '(' || ch == ')'):
			flush(i)
			words = append(words, word{text: input[i : i+1], offset: i})
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(input))
	return words
}

func isKeyword(s string) bool {
	switch s {
	case term.KeywordApp, term.KeywordJoin, term.KeywordAbs,
		term.KeywordQuote, term.KeywordFun, term.KeywordLet:
		return true
	}
	return false
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdent(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isLetter(s[i]) && !isDigit(s[i]) && s[i] != '.' {
			return false
		}
	}
	return true
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// leaf interprets a single token as an atom, a de Bruijn index or a name.
func leaf(s string) (*term.Term, string) {
	switch {
	case term.IsAtomName(s):
		return term.Atom(s), ""
	case isNumber(s):
		rank, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, "index out of range: " + s
		}
		return term.IVar(uint32(rank)), ""
	case isKeyword(s):
		return nil, "unexpected keyword " + s
	case isIdent(s):
		return term.NVar(s), ""
	}
	return nil, "invalid token " + strconv.Quote(s)
}
