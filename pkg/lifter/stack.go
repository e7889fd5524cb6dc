package lifter

import "github.com/nspcc-dev/neo-decompiler/pkg/ir"

// abstractStack is the stack lifter's working evaluation stack. Popping
// from an empty stack never fails — it synthesizes a recovered_N
// placeholder and lets the caller record a warning (§4.4 stack underflow
// recovery).
type abstractStack struct {
	items []*ir.Expr
}

func (s *abstractStack) push(e *ir.Expr) {
	s.items = append(s.items, e)
}

func (s *abstractStack) len() int { return len(s.items) }

// pop removes and returns the top item, or (nil, false) if empty.
func (s *abstractStack) pop() (*ir.Expr, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	n := len(s.items) - 1
	e := s.items[n]
	s.items = s.items[:n]
	return e, true
}

// peek returns the item at depth d from the top (0 = top) without
// removing it, or (nil, false) if d is out of range.
func (s *abstractStack) peek(d int) (*ir.Expr, bool) {
	idx := len(s.items) - 1 - d
	if idx < 0 || idx >= len(s.items) {
		return nil, false
	}
	return s.items[idx], true
}

// removeAt deletes the item at depth d from the top, or is a no-op if out
// of range.
func (s *abstractStack) removeAt(d int) (*ir.Expr, bool) {
	idx := len(s.items) - 1 - d
	if idx < 0 || idx >= len(s.items) {
		return nil, false
	}
	e := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return e, true
}

// insertAt inserts e at depth d from the top (0 = becomes new top).
func (s *abstractStack) insertAt(d int, e *ir.Expr) {
	idx := len(s.items) - d
	if idx < 0 {
		idx = 0
	}
	if idx > len(s.items) {
		idx = len(s.items)
	}
	s.items = append(s.items, nil)
	copy(s.items[idx+1:], s.items[idx:])
	s.items[idx] = e
}

func (s *abstractStack) clear() { s.items = nil }
