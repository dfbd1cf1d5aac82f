package cpu

type handler func(emu *EMU, in Instruction) error

// handlers maps every Op to its effect. Handlers own the program counter:
// they either branch or call next/skip.
var handlers = [opCount]handler{
	OpUnknown: (*EMU).opUnknown,
	OpSYS:     (*EMU).opUnknown,
	OpCLS:     (*EMU).opCLS,
	OpRET:     (*EMU).opRET,
	OpJP:      (*EMU).opJP,
	OpCALL:    (*EMU).opCALL,
	OpSEByte:  (*EMU).opSEByte,
	OpSNEByte: (*EMU).opSNEByte,
	OpSEReg:   (*EMU).opSEReg,
	OpLDByte:  (*EMU).opLDByte,
	OpADDByte: (*EMU).opADDByte,
	OpLDReg:   (*EMU).opLDReg,
	OpOR:      (*EMU).opOR,
	OpAND:     (*EMU).opAND,
	OpXOR:     (*EMU).opXOR,
	OpADDReg:  (*EMU).opADDReg,
	OpSUB:     (*EMU).opSUB,
	OpSHR:     (*EMU).opSHR,
	OpSUBN:    (*EMU).opSUBN,
	OpSHL:     (*EMU).opSHL,
	OpSNEReg:  (*EMU).opSNEReg,
	OpLDI:     (*EMU).opLDI,
	OpJPV0:    (*EMU).opJPV0,
	OpRND:     (*EMU).opRND,
	OpDRW:     (*EMU).opDRW,
	OpSKP:     (*EMU).opSKP,
	OpSKNP:    (*EMU).opSKNP,
	OpLDVxDT:  (*EMU).opLDVxDT,
	OpLDVxK:   (*EMU).opLDVxK,
	OpLDDTVx:  (*EMU).opLDDTVx,
	OpLDSTVx:  (*EMU).opLDSTVx,
	OpADDI:    (*EMU).opADDI,
	OpLDF:     (*EMU).opLDF,
	OpLDB:     (*EMU).opLDB,
	OpStore:   (*EMU).opStore,
	OpLoad:    (*EMU).opLoad,
}

func (emu *EMU) next() {
	emu.regs.PC += 2
}

// skipIf advances past the following instruction when cond holds.
func (emu *EMU) skipIf(cond bool) {
	if cond {
		emu.regs.PC += 4
		return
	}
	emu.regs.PC += 2
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func (emu *EMU) opUnknown(in Instruction) error {
	emu.unknown++
	emu.log.WARN.Printf("unknown opcode %04X at 0x%03X, skipped", in.Raw, emu.regs.PC&addressMask)
	emu.next()
	return nil
}

func (emu *EMU) opCLS(Instruction) error {
	emu.display.Clear()
	emu.next()
	return nil
}

func (emu *EMU) opRET(Instruction) error {
	addr, err := emu.stack.Pop()
	if err != nil {
		return err
	}
	emu.regs.PC = addr
	emu.next()
	return nil
}

func (emu *EMU) opJP(in Instruction) error {
	emu.regs.PC = in.NNN
	return nil
}

func (emu *EMU) opCALL(in Instruction) error {
	if err := emu.stack.Push(emu.regs.PC); err != nil {
		return err
	}
	emu.regs.PC = in.NNN
	return nil
}

func (emu *EMU) opSEByte(in Instruction) error {
	emu.skipIf(emu.regs.V[in.X] == in.NN)
	return nil
}

func (emu *EMU) opSNEByte(in Instruction) error {
	emu.skipIf(emu.regs.V[in.X] != in.NN)
	return nil
}

func (emu *EMU) opSEReg(in Instruction) error {
	emu.skipIf(emu.regs.V[in.X] == emu.regs.V[in.Y])
	return nil
}

func (emu *EMU) opSNEReg(in Instruction) error {
	emu.skipIf(emu.regs.V[in.X] != emu.regs.V[in.Y])
	return nil
}

func (emu *EMU) opLDByte(in Instruction) error {
	emu.regs.V[in.X] = in.NN
	emu.next()
	return nil
}

// opADDByte wraps at 256 and leaves VF alone.
func (emu *EMU) opADDByte(in Instruction) error {
	emu.regs.V[in.X] += in.NN
	emu.next()
	return nil
}

func (emu *EMU) opLDReg(in Instruction) error {
	emu.regs.V[in.X] = emu.regs.V[in.Y]
	emu.next()
	return nil
}

func (emu *EMU) opOR(in Instruction) error {
	emu.regs.V[in.X] |= emu.regs.V[in.Y]
	emu.next()
	return nil
}

func (emu *EMU) opAND(in Instruction) error {
	emu.regs.V[in.X] &= emu.regs.V[in.Y]
	emu.next()
	return nil
}

func (emu *EMU) opXOR(in Instruction) error {
	emu.regs.V[in.X] ^= emu.regs.V[in.Y]
	emu.next()
	return nil
}

// The ALU ops below read both operands first and write VF last, so X or Y
// being F still sees the original value and ends up holding the flag.

func (emu *EMU) opADDReg(in Instruction) error {
	vx, vy := emu.regs.V[in.X], emu.regs.V[in.Y]
	sum := uint16(vx) + uint16(vy)
	emu.regs.V[in.X] = uint8(sum)
	emu.regs.V[VF] = flag(sum > 0xFF)
	emu.next()
	return nil
}

// opSUB sets VF to 1 when there is no borrow, VX >= VY.
func (emu *EMU) opSUB(in Instruction) error {
	vx, vy := emu.regs.V[in.X], emu.regs.V[in.Y]
	emu.regs.V[in.X] = vx - vy
	emu.regs.V[VF] = flag(vx >= vy)
	emu.next()
	return nil
}

func (emu *EMU) opSHR(in Instruction) error {
	vx := emu.regs.V[in.X]
	emu.regs.V[in.X] = vx >> 1
	emu.regs.V[VF] = vx & 0x01
	emu.next()
	return nil
}

// opSUBN is VY - VX, VF is 1 when VY >= VX.
func (emu *EMU) opSUBN(in Instruction) error {
	vx, vy := emu.regs.V[in.X], emu.regs.V[in.Y]
	emu.regs.V[in.X] = vy - vx
	emu.regs.V[VF] = flag(vy >= vx)
	emu.next()
	return nil
}

func (emu *EMU) opSHL(in Instruction) error {
	vx := emu.regs.V[in.X]
	emu.regs.V[in.X] = vx << 1
	emu.regs.V[VF] = vx >> 7
	emu.next()
	return nil
}

func (emu *EMU) opLDI(in Instruction) error {
	emu.regs.I = in.NNN
	emu.next()
	return nil
}

func (emu *EMU) opJPV0(in Instruction) error {
	emu.regs.PC = in.NNN + uint16(emu.regs.V[0])
	return nil
}

func (emu *EMU) opRND(in Instruction) error {
	emu.regs.V[in.X] = uint8(emu.rng.Intn(256)) & in.NN
	emu.next()
	return nil
}

func (emu *EMU) opDRW(in Instruction) error {
	rows := make([]uint8, in.N)
	for i := range rows {
		rows[i] = emu.read(emu.regs.I + uint16(i))
	}
	x, y := emu.regs.V[in.X], emu.regs.V[in.Y]
	collision := emu.display.DrawSprite(x, y, rows)
	emu.regs.V[VF] = flag(collision)
	emu.next()
	return nil
}

func (emu *EMU) opSKP(in Instruction) error {
	emu.skipIf(emu.keys.Pressed(emu.regs.V[in.X]))
	return nil
}

func (emu *EMU) opSKNP(in Instruction) error {
	emu.skipIf(!emu.keys.Pressed(emu.regs.V[in.X]))
	return nil
}

func (emu *EMU) opLDVxDT(in Instruction) error {
	emu.regs.V[in.X] = emu.regs.DT
	emu.next()
	return nil
}

// opLDVxK leaves the program counter in place until a key is down, so the
// same instruction is fetched again on the next cycle.
func (emu *EMU) opLDVxK(in Instruction) error {
	key, ok := emu.keys.FirstPressed()
	if !ok {
		emu.state = Blocked
		return nil
	}
	emu.regs.V[in.X] = key
	emu.state = Running
	emu.next()
	return nil
}

func (emu *EMU) opLDDTVx(in Instruction) error {
	emu.regs.DT = emu.regs.V[in.X]
	emu.next()
	return nil
}

func (emu *EMU) opLDSTVx(in Instruction) error {
	emu.regs.ST = emu.regs.V[in.X]
	emu.next()
	return nil
}

func (emu *EMU) opADDI(in Instruction) error {
	emu.regs.I += uint16(emu.regs.V[in.X])
	emu.next()
	return nil
}

func (emu *EMU) opLDF(in Instruction) error {
	emu.regs.I = uint16(emu.regs.V[in.X]) * glyphSize
	emu.next()
	return nil
}

func (emu *EMU) opLDB(in Instruction) error {
	vx := emu.regs.V[in.X]
	emu.write(emu.regs.I, vx/100)
	emu.write(emu.regs.I+1, vx/10%10)
	emu.write(emu.regs.I+2, vx%10)
	emu.next()
	return nil
}

func (emu *EMU) opStore(in Instruction) error {
	for i := uint16(0); i <= uint16(in.X); i++ {
		emu.write(emu.regs.I+i, emu.regs.V[i])
	}
	emu.regs.I += uint16(in.X) + 1
	emu.next()
	return nil
}

func (emu *EMU) opLoad(in Instruction) error {
	for i := uint16(0); i <= uint16(in.X); i++ {
		emu.regs.V[i] = emu.read(emu.regs.I + i)
	}
	emu.regs.I += uint16(in.X) + 1
	emu.next()
	return nil
}
