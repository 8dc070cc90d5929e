package term

// Atom names.
const (
	NameTop    = "TOP"
	NameBot    = "BOT"
	NameI      = "I"
	NameK      = "K"
	NameB      = "B"
	NameC      = "C"
	NameS      = "S"
	NameJ      = "J"
	NameEval   = "EVAL"
	NameQApp   = "QAPP"
	NameQQuote = "QQUOTE"
	NameLess   = "LESS"
	NameEqual  = "EQUAL"

	// Type atoms are inert constants naming the data types.
	NameV     = "V"
	NameA     = "A"
	NameUnit  = "UNIT"
	NameBool  = "BOOL"
	NameMaybe = "MAYBE"
	NameProd  = "PROD"
	NameSum   = "SUM"
	NameNum   = "NUM"
)

type atomInfo struct {
	arity      int
	complexity int
	reflective bool
}

var atoms = map[string]atomInfo{
	NameTop:    {arity: 0, complexity: 0},
	NameBot:    {arity: 0, complexity: 0},
	NameI:      {arity: 1, complexity: 1},
	NameK:      {arity: 2, complexity: 2},
	NameB:      {arity: 3, complexity: 3},
	NameC:      {arity: 3, complexity: 3},
	NameS:      {arity: 3, complexity: 3},
	NameJ:      {arity: 2, complexity: 2},
	NameEval:   {arity: 1, complexity: 2, reflective: true},
	NameQApp:   {arity: 2, complexity: 2, reflective: true},
	NameQQuote: {arity: 1, complexity: 2, reflective: true},
	NameLess:   {arity: 2, complexity: 2, reflective: true},
	NameEqual:  {arity: 2, complexity: 2, reflective: true},
	NameV:      {complexity: 1},
	NameA:      {complexity: 1},
	NameUnit:   {complexity: 1},
	NameBool:   {complexity: 1},
	NameMaybe:  {complexity: 1},
	NameProd:   {complexity: 1},
	NameSum:    {complexity: 1},
	NameNum:    {complexity: 1},
}

// Predefined atoms.
var (
	TOP    = Atom(NameTop)
	BOT    = Atom(NameBot)
	I      = Atom(NameI)
	K      = Atom(NameK)
	B      = Atom(NameB)
	C      = Atom(NameC)
	S      = Atom(NameS)
	J      = Atom(NameJ)
	EVAL   = Atom(NameEval)
	QAPP   = Atom(NameQApp)
	QQUOTE = Atom(NameQQuote)
	LESS   = Atom(NameLess)
	EQUAL  = Atom(NameEqual)
)

// IsAtomName reports whether name denotes an atom.
func IsAtomName(name string) bool {
	_, ok := atoms[name]
	return ok
}

// AtomNames lists every atom in a fixed order. The binary format indexes
// atoms by their position here, so only append.
var AtomNames = []string{
	NameTop, NameBot, NameI, NameK, NameB, NameC, NameS, NameJ,
	NameEval, NameQApp, NameQQuote, NameLess, NameEqual,
	NameV, NameA, NameUnit, NameBool, NameMaybe, NameProd, NameSum, NameNum,
}

// Arity is the number of arguments an atom consumes when it fires. Inert
// atoms and TOP/BOT have arity 0.
func (t *Term) Arity() int {
	if t.kind != KindAtom {
		return 0
	}
	return atoms[t.name].arity
}

// IsReflective reports whether t is one of the quote-inspecting atoms.
func (t *Term) IsReflective() bool {
	return t.kind == KindAtom && atoms[t.name].reflective
}

// IsCombinator reports whether t is one of I, K, B, C, S, J.
func (t *Term) IsCombinator() bool {
	if t.kind != KindAtom {
		return false
	}
	switch t.name {
	case NameI, NameK, NameB, NameC, NameS, NameJ:
		return true
	}
	return false
}

// IsInert reports whether t is a type atom.
func (t *Term) IsInert() bool {
	return t.kind == KindAtom && atoms[t.name].arity == 0 && t != TOP && t != BOT
}
