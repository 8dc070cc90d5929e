package engine

import "github.com/vic/skjnet/pkg/term"

// Stack is a persistent list of pending arguments, first argument on top.
// Tails are shared between reduction states, so a Stack is never modified
// after construction. Each entry remembers the binder rank at which it was
// pushed; its free indices are shifted lazily when it is popped deeper.
type Stack struct {
	arg  *term.Term
	rank int
	next *Stack
	size int
}

// Push returns a stack with arg on top. A nil *Stack is the empty stack.
func (s *Stack) Push(arg *term.Term, rank int) *Stack {
	return &Stack{arg: arg, rank: rank, next: s, size: s.Len() + 1}
}

// Len is the number of entries.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return s.size
}

// Peek returns the top entry shifted to rank.
func (s *Stack) Peek(rank int) *term.Term {
	return term.ShiftRank(s.arg, uint32(rank-s.rank))
}

// Pop returns the top entry shifted to rank, and the rest of the stack.
func (s *Stack) Pop(rank int) (*term.Term, *Stack) {
	return s.Peek(rank), s.next
}

// Args returns every entry shifted to rank, top first.
func (s *Stack) Args(rank int) []*term.Term {
	out := make([]*term.Term, 0, s.Len())
	for ; s != nil; s = s.next {
		out = append(out, s.Peek(rank))
	}
	return out
}

// Append returns a stack with arg added below every existing entry.
func (s *Stack) Append(arg *term.Term, rank int) *Stack {
	if s == nil {
		return (*Stack)(nil).Push(arg, rank)
	}
	return s.next.Append(arg, rank).Push(s.arg, s.rank)
}
