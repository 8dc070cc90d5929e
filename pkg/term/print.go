package term

import (
	"strconv"
	"strings"
)

// Polish keywords.
const (
	KeywordApp   = "APP"
	KeywordJoin  = "JOIN"
	KeywordAbs   = "ABS"
	KeywordQuote = "QUOTE"
	KeywordFun   = "FUN"
	KeywordLet   = "LET"
)

// String prints t in polish notation.
func (t *Term) String() string {
	var sb strings.Builder
	t.writePolish(&sb)
	return sb.String()
}

func (t *Term) writePolish(sb *strings.Builder) {
	switch t.kind {
	case KindAtom, KindNVar:
		sb.WriteString(t.name)
		return
	case KindIVar:
		sb.WriteString(strconv.FormatUint(uint64(t.rank), 10))
		return
	case KindApp:
		sb.WriteString(KeywordApp)
	case KindJoin:
		sb.WriteString(KeywordJoin)
	case KindAbs:
		sb.WriteString(KeywordAbs)
	case KindQuote:
		sb.WriteString(KeywordQuote)
	case KindFun:
		sb.WriteString(KeywordFun)
	case KindLet:
		sb.WriteString(KeywordLet)
	}
	for _, child := range []*Term{t.a, t.b, t.c} {
		if child == nil {
			break
		}
		sb.WriteByte(' ')
		child.writePolish(sb)
	}
}
