package cpu

import "github.com/beanboi7/chyp8/emu/memory"

// VF is the index of the flag register.
const VF = 0xF

// Registers is the register file. VF doubles as the carry/borrow/collision
// flag.
type Registers struct {
	V  [16]uint8
	I  uint16 // address register, not masked
	PC uint16
	DT uint8 // delay timer, counts down at 60Hz
	ST uint8 // sound timer, same as above
}

func (r *Registers) reset() {
	*r = Registers{PC: memory.ProgramStart}
}

// tick decrements both timers toward zero.
func (r *Registers) tick() {
	if r.DT > 0 {
		r.DT--
	}
	if r.ST > 0 {
		r.ST--
	}
}
