package codec

import (
	"fmt"
	"strings"

	errwrap "github.com/pkg/errors"

	"github.com/vic/skjnet/pkg/lambda"
	"github.com/vic/skjnet/pkg/term"
)

type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindByte
	KindNum
	KindBytes
	KindProd
	KindSum
	KindMaybe
	KindList
)

var kindNames = [...]string{
	KindUnit:  "unit",
	KindBool:  "bool",
	KindByte:  "byte",
	KindNum:   "num",
	KindBytes: "bytes",
	KindProd:  "prod",
	KindSum:   "sum",
	KindMaybe: "maybe",
	KindList:  "list",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// arity is the number of type parameters of a kind.
func (k Kind) arity() int {
	switch k {
	case KindProd, KindSum:
		return 2
	case KindMaybe, KindList:
		return 1
	}
	return 0
}

// Type describes a data type: a kind applied to its parameters.
type Type struct {
	Kind Kind
	Args []Type
}

var (
	Unit  = Type{Kind: KindUnit}
	Bool  = Type{Kind: KindBool}
	Byte  = Type{Kind: KindByte}
	Num   = Type{Kind: KindNum}
	Bytes = Type{Kind: KindBytes}
)

func Prod(a, b Type) Type { return Type{Kind: KindProd, Args: []Type{a, b}} }
func Sum(a, b Type) Type  { return Type{Kind: KindSum, Args: []Type{a, b}} }
func Maybe(a Type) Type   { return Type{Kind: KindMaybe, Args: []Type{a}} }
func List(a Type) Type    { return Type{Kind: KindList, Args: []Type{a}} }

// String prints t the way ParseType reads it, e.g. (prod bool num).
func (t Type) String() string {
	if len(t.Args) == 0 {
		return t.Kind.String()
	}
	parts := []string{t.Kind.String()}
	for _, a := range t.Args {
		parts = append(parts, a.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// ParseType reads a type descriptor in s-expression notation:
// unit, bool, byte, num, bytes, (maybe T), (list T), (prod T1 T2) and
// (sum T1 T2).
func ParseType(s string) (Type, error) {
	t, err := lambda.ParseSexpr(s)
	if err != nil {
		return Type{}, errwrap.Wrapf(err, "parse type %q", s)
	}
	return typeOf(t)
}

func typeOf(t *term.Term) (Type, error) {
	head, args := t.Spine()
	if head.Kind() != term.KindNVar {
		return Type{}, errwrap.Errorf("unknown type %s", t)
	}
	for k, name := range kindNames {
		if name != head.Name() {
			continue
		}
		kind := Kind(k)
		if len(args) != kind.arity() {
			return Type{}, errwrap.Errorf("%s takes %d parameters, got %d", kind, kind.arity(), len(args))
		}
		ty := Type{Kind: kind}
		for _, a := range args {
			at, err := typeOf(a)
			if err != nil {
				return Type{}, err
			}
			ty.Args = append(ty.Args, at)
		}
		return ty, nil
	}
	return Type{}, errwrap.Errorf("unknown type %s", head.Name())
}

// TypeError reports a value or a term that does not inhabit a type.
type TypeError struct {
	Type   Type
	Reason string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type %s: %s", e.Type, e.Reason)
}

func typeErrorf(ty Type, format string, args ...interface{}) *TypeError {
	return &TypeError{Type: ty, Reason: fmt.Sprintf(format, args...)}
}

// Host values of the composite types. Lists decode to []any, numbers to
// int, bytes to []byte and unit to struct{}.
type (
	Tuple struct {
		Fst, Snd any
	}
	Either struct {
		Right bool
		Value any
	}
	Option struct {
		Some  bool
		Value any
	}
)
