package cpu

import "fmt"

// Op identifies one CHIP-8 operation.
type Op uint8

const (
	OpUnknown Op = iota
	OpSYS        // 0NNN
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1NNN
	OpCALL       // 2NNN
	OpSEByte     // 3XNN
	OpSNEByte    // 4XNN
	OpSEReg      // 5XY0
	OpLDByte     // 6XNN
	OpADDByte    // 7XNN
	OpLDReg      // 8XY0
	OpOR         // 8XY1
	OpAND        // 8XY2
	OpXOR        // 8XY3
	OpADDReg     // 8XY4
	OpSUB        // 8XY5
	OpSHR        // 8XY6
	OpSUBN       // 8XY7
	OpSHL        // 8XYE
	OpSNEReg     // 9XY0
	OpLDI        // ANNN
	OpJPV0       // BNNN
	OpRND        // CXNN
	OpDRW        // DXYN
	OpSKP        // EX9E
	OpSKNP       // EXA1
	OpLDVxDT     // FX07
	OpLDVxK      // FX0A
	OpLDDTVx     // FX15
	OpLDSTVx     // FX18
	OpADDI       // FX1E
	OpLDF        // FX29
	OpLDB        // FX33
	OpStore      // FX55
	OpLoad       // FX65

	opCount
)

var opNames = [opCount]string{
	OpUnknown: "???",
	OpSYS:     "SYS",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpJP:      "JP",
	OpCALL:    "CALL",
	OpSEByte:  "SE",
	OpSNEByte: "SNE",
	OpSEReg:   "SE",
	OpLDByte:  "LD",
	OpADDByte: "ADD",
	OpLDReg:   "LD",
	OpOR:      "OR",
	OpAND:     "AND",
	OpXOR:     "XOR",
	OpADDReg:  "ADD",
	OpSUB:     "SUB",
	OpSHR:     "SHR",
	OpSUBN:    "SUBN",
	OpSHL:     "SHL",
	OpSNEReg:  "SNE",
	OpLDI:     "LD",
	OpJPV0:    "JP",
	OpRND:     "RND",
	OpDRW:     "DRW",
	OpSKP:     "SKP",
	OpSKNP:    "SKNP",
	OpLDVxDT:  "LD",
	OpLDVxK:   "LD",
	OpLDDTVx:  "LD",
	OpLDSTVx:  "LD",
	OpADDI:    "ADD",
	OpLDF:     "LD",
	OpLDB:     "LD",
	OpStore:   "LD",
	OpLoad:    "LD",
}

// Name returns the assembler mnemonic.
func (o Op) Name() string {
	if o >= opCount {
		return opNames[OpUnknown]
	}
	return opNames[o]
}

// pattern matches an opcode when opcode&mask == value.
type pattern struct {
	mask  uint16
	value uint16
	op    Op
}

// patterns is scanned in order, so the fixed 00E0/00EE words come before 0NNN.
var patterns = []pattern{
	{0xFFFF, 0x00E0, OpCLS},
	{0xFFFF, 0x00EE, OpRET},
	{0xF000, 0x0000, OpSYS},
	{0xF000, 0x1000, OpJP},
	{0xF000, 0x2000, OpCALL},
	{0xF000, 0x3000, OpSEByte},
	{0xF000, 0x4000, OpSNEByte},
	{0xF00F, 0x5000, OpSEReg},
	{0xF000, 0x6000, OpLDByte},
	{0xF000, 0x7000, OpADDByte},
	{0xF00F, 0x8000, OpLDReg},
	{0xF00F, 0x8001, OpOR},
	{0xF00F, 0x8002, OpAND},
	{0xF00F, 0x8003, OpXOR},
	{0xF00F, 0x8004, OpADDReg},
	{0xF00F, 0x8005, OpSUB},
	{0xF00F, 0x8006, OpSHR},
	{0xF00F, 0x8007, OpSUBN},
	{0xF00F, 0x800E, OpSHL},
	{0xF00F, 0x9000, OpSNEReg},
	{0xF000, 0xA000, OpLDI},
	{0xF000, 0xB000, OpJPV0},
	{0xF000, 0xC000, OpRND},
	{0xF000, 0xD000, OpDRW},
	{0xF0FF, 0xE09E, OpSKP},
	{0xF0FF, 0xE0A1, OpSKNP},
	{0xF0FF, 0xF007, OpLDVxDT},
	{0xF0FF, 0xF00A, OpLDVxK},
	{0xF0FF, 0xF015, OpLDDTVx},
	{0xF0FF, 0xF018, OpLDSTVx},
	{0xF0FF, 0xF01E, OpADDI},
	{0xF0FF, 0xF029, OpLDF},
	{0xF0FF, 0xF033, OpLDB},
	{0xF0FF, 0xF055, OpStore},
	{0xF0FF, 0xF065, OpLoad},
}

// Instruction is a decoded opcode. All operand fields are filled regardless
// of the operation, handlers pick the ones they need.
type Instruction struct {
	Op  Op
	Raw uint16
	X   uint8  // bits 8-11
	Y   uint8  // bits 4-7
	N   uint8  // bits 0-3
	NN  uint8  // bits 0-7
	NNN uint16 // bits 0-11
}

// Decode splits a 16 bit opcode into its operation and operands.
func Decode(opcode uint16) Instruction {
	in := Instruction{
		Raw: opcode,
		X:   uint8(opcode >> 8 & 0x0F),
		Y:   uint8(opcode >> 4 & 0x0F),
		N:   uint8(opcode & 0x000F),
		NN:  uint8(opcode & 0x00FF),
		NNN: opcode & 0x0FFF,
	}
	for _, p := range patterns {
		if opcode&p.mask == p.value {
			in.Op = p.op
			break
		}
	}
	return in
}

// String renders the instruction in assembler syntax.
func (in Instruction) String() string {
	name := in.Op.Name()
	switch in.Op {
	case OpCLS, OpRET:
		return name
	case OpSYS, OpJP, OpCALL:
		return fmt.Sprintf("%s $%03X", name, in.NNN)
	case OpSEByte, OpSNEByte, OpLDByte, OpADDByte, OpRND:
		return fmt.Sprintf("%s V%X, $%02X", name, in.X, in.NN)
	case OpSEReg, OpSNEReg, OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSUBN:
		return fmt.Sprintf("%s V%X, V%X", name, in.X, in.Y)
	case OpSHR, OpSHL, OpSKP, OpSKNP:
		return fmt.Sprintf("%s V%X", name, in.X)
	case OpLDI:
		return fmt.Sprintf("%s I, $%03X", name, in.NNN)
	case OpJPV0:
		return fmt.Sprintf("%s V0, $%03X", name, in.NNN)
	case OpDRW:
		return fmt.Sprintf("%s V%X, V%X, %d", name, in.X, in.Y, in.N)
	case OpLDVxDT:
		return fmt.Sprintf("%s V%X, DT", name, in.X)
	case OpLDVxK:
		return fmt.Sprintf("%s V%X, K", name, in.X)
	case OpLDDTVx:
		return fmt.Sprintf("%s DT, V%X", name, in.X)
	case OpLDSTVx:
		return fmt.Sprintf("%s ST, V%X", name, in.X)
	case OpADDI:
		return fmt.Sprintf("%s I, V%X", name, in.X)
	case OpLDF:
		return fmt.Sprintf("%s F, V%X", name, in.X)
	case OpLDB:
		return fmt.Sprintf("%s B, V%X", name, in.X)
	case OpStore:
		return fmt.Sprintf("%s [I], V%X", name, in.X)
	case OpLoad:
		return fmt.Sprintf("%s V%X, [I]", name, in.X)
	}
	return fmt.Sprintf(".word $%04X", in.Raw)
}

// Line is one row of a disassembly listing.
type Line struct {
	Address uint16
	Bytes   []byte
	Text    string
}

func (l Line) String() string {
	hex := fmt.Sprintf("%02X", l.Bytes[0])
	if len(l.Bytes) > 1 {
		hex = fmt.Sprintf("%02X%02X", l.Bytes[0], l.Bytes[1])
	}
	return fmt.Sprintf("%03X  %-4s  %s", l.Address, hex, l.Text)
}

// Disassemble decodes program word by word as if it was loaded at origin. A
// trailing odd byte is listed as data.
func Disassemble(program []byte, origin uint16) []Line {
	lines := make([]Line, 0, (len(program)+1)/2)
	for i := 0; i < len(program); i += 2 {
		addr := origin + uint16(i)
		if i+1 == len(program) {
			lines = append(lines, Line{
				Address: addr,
				Bytes:   program[i : i+1],
				Text:    fmt.Sprintf(".byte $%02X", program[i]),
			})
			break
		}
		opcode := uint16(program[i])<<8 | uint16(program[i+1])
		lines = append(lines, Line{
			Address: addr,
			Bytes:   program[i : i+2],
			Text:    Decode(opcode).String(),
		})
	}
	return lines
}
