// Package bohm presents regular Böhm trees by finite systems of equations
//
//	Y f = f (Y f)
//
// and decides their equality coinductively. Every right hand side is a head
// normal form whose head is a parameter and whose arguments are defined
// names applied to parameters, so a tree is eventually periodic.
package bohm

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	errwrap "github.com/pkg/errors"

	"github.com/vic/skjnet/pkg/compiler"
	"github.com/vic/skjnet/pkg/lambda"
	"github.com/vic/skjnet/pkg/term"
)

// ErrNotImplemented is returned for presentations the search cannot handle.
var ErrNotImplemented = compiler.ErrNotImplemented

// ErrNondeterministic marks a name with more than one equation. Deciding
// such presentations needs a backtracking search over the alternatives.
var ErrNondeterministic = errwrap.Wrap(ErrNotImplemented, "nondeterministic presentation")

// Bot is the head of an undefined tree.
const Bot = -1

// Identity is the builtin name of I x = x. Identity(i) stands for the bare
// parameter i wherever a pattern is expected.
const Identity = term.NameI

// Pattern is a defined name applied to parameters of the enclosing equation.
type Pattern struct {
	Head string
	Args []int
}

func (p Pattern) String() string {
	var sb strings.Builder
	sb.WriteString(p.Head)
	for _, a := range p.Args {
		fmt.Fprintf(&sb, " %d", a)
	}
	return sb.String()
}

// Headex is a head normal form: parameter Head applied to Args, or Bot.
type Headex struct {
	Head int
	Args []Pattern
}

// Combinator is one equation: name x0 .. x(Bound-1) = Body.
type Combinator struct {
	Bound int
	Body  Headex
}

// IsClosed reports that the body mentions only the bound parameters.
func (c Combinator) IsClosed() bool {
	if c.Body.Head != Bot && (c.Body.Head < 0 || c.Body.Head >= c.Bound) {
		return false
	}
	for _, p := range c.Body.Args {
		for _, a := range p.Args {
			if a < 0 || a >= c.Bound {
				return false
			}
		}
	}
	return true
}

var identity = Combinator{Bound: 1, Body: Headex{Head: 0}}

// Options configure a Presentation.
type Options struct {
	Logger *slog.Logger
}

// Presentation is a system of mutually recursive equations.
type Presentation struct {
	defs map[string][]Combinator
	log  *slog.Logger
}

// New returns an empty presentation. Only the identity is predefined.
func New(opts Options) *Presentation {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Presentation{
		defs: make(map[string][]Combinator),
		log:  log.With("component", "bohm"),
	}
}

// Define adds an equation for name. A second equation for the same name
// makes the presentation nondeterministic.
func (p *Presentation) Define(name string, c Combinator) {
	p.defs[name] = append(p.defs[name], c)
}

// DefineTerm parses an equation body in lambda notation, for example
// "f: f (Y f)", and adds it for name.
func (p *Presentation) DefineTerm(name, src string) error {
	t, err := lambda.Parse(src)
	if err != nil {
		return errwrap.Wrapf(err, "define %s", name)
	}
	c, err := FromTerm(t)
	if err != nil {
		return errwrap.Wrapf(err, "define %s", name)
	}
	p.Define(name, c)
	return nil
}

// Names returns the defined names in order.
func (p *Presentation) Names() []string {
	names := make([]string, 0, len(p.defs))
	for name := range p.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equations returns the equations of name.
func (p *Presentation) Equations(name string) []Combinator {
	if name == Identity {
		return []Combinator{identity}
	}
	return p.defs[name]
}

// equation returns the single equation of a deterministic name.
func (p *Presentation) equation(name string) (Combinator, error) {
	eqs := p.Equations(name)
	switch len(eqs) {
	case 0:
		return Combinator{}, errwrap.Errorf("undefined name %q", name)
	case 1:
		return eqs[0], nil
	}
	return Combinator{}, errwrap.Wrapf(ErrNondeterministic, "%s has %d equations", name, len(eqs))
}

// Validate reports every equation that is not closed or refers to an
// undefined name or applies a name to too many parameters.
func (p *Presentation) Validate() error {
	var result *multierror.Error
	for _, name := range p.Names() {
		if name == Identity || term.IsAtomName(name) {
			result = multierror.Append(result, errwrap.Errorf("%s: reserved name", name))
		}
		for i, c := range p.defs[name] {
			if !c.IsClosed() {
				result = multierror.Append(result, errwrap.Errorf("%s equation %d: not closed", name, i))
			}
			for _, arg := range c.Body.Args {
				eqs := p.Equations(arg.Head)
				if len(eqs) == 0 {
					result = multierror.Append(result, errwrap.Errorf("%s equation %d: undefined name %q", name, i, arg.Head))
					continue
				}
				for _, e := range eqs {
					if len(arg.Args) > e.Bound {
						result = multierror.Append(result, errwrap.Errorf("%s equation %d: %s applied to %d arguments, takes %d", name, i, arg.Head, len(arg.Args), e.Bound))
						break
					}
				}
			}
		}
	}
	return result.ErrorOrNil()
}

// FromTerm reads an equation body written as binders around a head normal
// form, x0: .. xn: xi (N1 ..) .., where each argument is a bare parameter
// or a name applied to parameters. A body of BOT is the undefined tree.
func FromTerm(t *term.Term) (Combinator, error) {
	var params []string
	for t.Kind() == term.KindFun {
		params = append(params, t.Var().Name())
		t = t.Body()
	}
	index := func(v *term.Term) (int, bool) {
		if v.Kind() != term.KindNVar {
			return 0, false
		}
		for i := len(params) - 1; i >= 0; i-- {
			if params[i] == v.Name() {
				return i, true
			}
		}
		return 0, false
	}

	c := Combinator{Bound: len(params)}
	if t == term.BOT {
		c.Body.Head = Bot
		return c, nil
	}
	head, args := t.Spine()
	h, ok := index(head)
	if !ok {
		return Combinator{}, errwrap.Errorf("head %s is not a parameter", head)
	}
	c.Body.Head = h
	for _, a := range args {
		if i, ok := index(a); ok {
			c.Body.Args = append(c.Body.Args, Pattern{Head: Identity, Args: []int{i}})
			continue
		}
		ah, aargs := a.Spine()
		if _, ok := index(ah); ok {
			return Combinator{}, errwrap.Errorf("argument %s applies a parameter", a)
		}
		var name string
		switch {
		case ah.Kind() == term.KindNVar:
			name = ah.Name()
		case ah == term.I:
			name = Identity
		default:
			return Combinator{}, errwrap.Errorf("argument %s is not a pattern", a)
		}
		pat := Pattern{Head: name}
		for _, v := range aargs {
			i, ok := index(v)
			if !ok {
				return Combinator{}, errwrap.Errorf("argument %s applies %s to a non-parameter", a, name)
			}
			pat.Args = append(pat.Args, i)
		}
		c.Body.Args = append(c.Body.Args, pat)
	}
	return c, nil
}

// Approximant unfolds name depth times into a combinator term, with BOT
// where the unfolding stops.
func (p *Presentation) Approximant(name string, depth int) (*term.Term, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	a := approximator{p: p}
	t, err := a.unfold(Pattern{Head: name}, nil, depth)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(t)
}

type approximator struct {
	p    *Presentation
	next int
}

func (a *approximator) unfold(pat Pattern, env []*term.Term, depth int) (*term.Term, error) {
	if pat.Head == Identity && len(pat.Args) == 1 {
		return env[pat.Args[0]], nil
	}
	if depth <= 0 {
		return term.BOT, nil
	}
	c, err := a.p.equation(pat.Head)
	if err != nil {
		return nil, err
	}
	params := make([]*term.Term, 0, c.Bound)
	for _, i := range pat.Args {
		params = append(params, env[i])
	}
	var binders []*term.Term
	for len(params) < c.Bound {
		v := term.NVar(fmt.Sprintf("x%d", a.next))
		a.next++
		binders = append(binders, v)
		params = append(params, v)
	}
	t := term.BOT
	if c.Body.Head != Bot {
		args := make([]*term.Term, len(c.Body.Args))
		for i, arg := range c.Body.Args {
			if args[i], err = a.unfold(arg, params, depth-1); err != nil {
				return nil, err
			}
		}
		t = term.Apply(params[c.Body.Head], args...)
	}
	for i := len(binders) - 1; i >= 0; i-- {
		t = term.Fun(binders[i], t)
	}
	return t, nil
}
