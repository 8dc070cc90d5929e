package engine

// Truth is the answer of a decision that may be undecided. Unknown is a
// legitimate result, never a synonym for False.
type Truth int8

const (
	Unknown Truth = iota
	True
	False
)

func (t Truth) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// FromBool converts a decided answer.
func FromBool(b bool) Truth {
	if b {
		return True
	}
	return False
}

// Bool returns the decided value and whether there is one.
func (t Truth) Bool() (value bool, ok bool) {
	return t == True, t != Unknown
}

// Not swaps True and False.
func (t Truth) Not() Truth {
	switch t {
	case True:
		return False
	case False:
		return True
	}
	return Unknown
}

// And is the three-valued conjunction: False wins over Unknown.
func (t Truth) And(o Truth) Truth {
	switch {
	case t == False || o == False:
		return False
	case t == True && o == True:
		return True
	}
	return Unknown
}

// Or is the three-valued disjunction: True wins over Unknown.
func (t Truth) Or(o Truth) Truth {
	switch {
	case t == True || o == True:
		return True
	case t == False && o == False:
		return False
	}
	return Unknown
}
