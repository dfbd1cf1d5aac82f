package cpu

import "errors"

// StackDepth is the number of return addresses the call stack can hold.
const StackDepth = 16

var (
	ErrStackOverflow  = errors.New("call stack overflow")
	ErrStackUnderflow = errors.New("return with empty call stack")
)

// Stack is the bounded subroutine return stack.
type Stack struct {
	entries [StackDepth]uint16
	sp      int
}

func (s *Stack) Push(addr uint16) error {
	if s.sp == StackDepth {
		return ErrStackOverflow
	}
	s.entries[s.sp] = addr
	s.sp++
	return nil
}

func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.entries[s.sp], nil
}

// Len returns the number of addresses on the stack.
func (s *Stack) Len() int {
	return s.sp
}

func (s *Stack) Reset() {
	*s = Stack{}
}
