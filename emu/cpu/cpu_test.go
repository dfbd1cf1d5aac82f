package cpu

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beanboi7/chyp8/emu/memory"
	"github.com/beanboi7/chyp8/insides/logging"
	"github.com/retroenv/retrogolib/assert"
)

// newTestEMU returns a running machine with the given opcodes loaded at 0x200.
func newTestEMU(t *testing.T, opcodes ...uint16) *EMU {
	t.Helper()
	program := make([]byte, 0, len(opcodes)*2)
	for _, op := range opcodes {
		program = append(program, byte(op>>8), byte(op))
	}
	emu := NewEMU(WithRand(rand.New(rand.NewSource(1))))
	assert.NoError(t, emu.LoadProgram(program))
	return emu
}

func step(t *testing.T, emu *EMU, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		assert.NoError(t, emu.Cycle())
	}
}

func TestNewEMU(t *testing.T) {
	emu := NewEMU()
	assert.Equal(t, Idle, emu.State())
	assert.Equal(t, uint16(memory.ProgramStart), emu.PC())

	for i, b := range FontSet {
		v, err := emu.Memory().Read(uint16(i))
		assert.NoError(t, err)
		assert.Equal(t, b, v)
	}

	err := emu.Cycle()
	assert.True(t, errors.Is(err, ErrNotRunning))
}

func TestLoadProgramTooLarge(t *testing.T) {
	emu := NewEMU()
	err := emu.LoadProgram(make([]byte, memory.MaxProgramLen+1))
	assert.True(t, errors.Is(err, memory.ErrProgramTooLarge))
	assert.Equal(t, Idle, emu.State())
	assert.True(t, errors.Is(emu.Cycle(), ErrNotRunning))
}

func TestLoadROM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.ch8")
	assert.NoError(t, os.WriteFile(path, []byte{0x60, 0x2A}, 0o644))

	emu := NewEMU()
	assert.NoError(t, emu.LoadROM(path))
	assert.Equal(t, Running, emu.State())
	step(t, emu, 1)
	assert.Equal(t, uint8(0x2A), emu.Registers().V[0])

	err := emu.LoadROM(filepath.Join(dir, "missing.ch8"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReset(t *testing.T) {
	emu := newTestEMU(t, 0x6105, 0xF115, 0x2300)
	step(t, emu, 3)
	emu.Reset()

	assert.Equal(t, Idle, emu.State())
	assert.Equal(t, Registers{PC: memory.ProgramStart}, emu.Registers())
	assert.Equal(t, 0, emu.StackDepth())
	v, _ := emu.Memory().Read(memory.ProgramStart)
	assert.Equal(t, uint8(0), v)
	v, _ = emu.Memory().Read(0)
	assert.Equal(t, FontSet[0], v)
}

func TestJumpAndCall(t *testing.T) {
	emu := newTestEMU(t, 0x1206)
	step(t, emu, 1)
	assert.Equal(t, uint16(0x206), emu.PC())

	// CALL 0x206 from 0x200, RET lands on 0x202
	emu = newTestEMU(t, 0x2206, 0x0000, 0x0000, 0x00EE)
	step(t, emu, 1)
	assert.Equal(t, uint16(0x206), emu.PC())
	assert.Equal(t, 1, emu.StackDepth())
	step(t, emu, 1)
	assert.Equal(t, uint16(0x202), emu.PC())
	assert.Equal(t, 0, emu.StackDepth())
}

func TestJumpV0(t *testing.T) {
	emu := newTestEMU(t, 0x6010, 0xB300)
	step(t, emu, 2)
	assert.Equal(t, uint16(0x310), emu.PC())
}

func TestReturnWithEmptyStack(t *testing.T) {
	emu := newTestEMU(t, 0x00EE)
	err := emu.Cycle()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, Idle, emu.State())
	assert.True(t, errors.Is(emu.Cycle(), ErrNotRunning))
}

func TestCallStackOverflow(t *testing.T) {
	// calls itself forever
	emu := newTestEMU(t, 0x2200)
	step(t, emu, StackDepth)
	err := emu.Cycle()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, Idle, emu.State())
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name  string
		setup []uint16
		op    uint16
		skip  bool
	}{
		{"SE byte equal", []uint16{0x6342}, 0x3342, true},
		{"SE byte differ", []uint16{0x6342}, 0x3343, false},
		{"SNE byte equal", []uint16{0x6342}, 0x4342, false},
		{"SNE byte differ", []uint16{0x6342}, 0x4343, true},
		{"SE reg equal", []uint16{0x6107, 0x6207}, 0x5120, true},
		{"SE reg differ", []uint16{0x6107, 0x6208}, 0x5120, false},
		{"SNE reg equal", []uint16{0x6107, 0x6207}, 0x9120, false},
		{"SNE reg differ", []uint16{0x6107, 0x6208}, 0x9120, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu := newTestEMU(t, append(tt.setup, tt.op)...)
			step(t, emu, len(tt.setup)+1)
			next := uint16(memory.ProgramStart + 2*(len(tt.setup)+1))
			if tt.skip {
				next += 2
			}
			assert.Equal(t, next, emu.PC())
		})
	}
}

func TestAddByteWrapsWithoutFlag(t *testing.T) {
	emu := newTestEMU(t, 0x60FF, 0x6F07, 0x7002)
	step(t, emu, 3)
	regs := emu.Registers()
	assert.Equal(t, uint8(0x01), regs.V[0])
	assert.Equal(t, uint8(0x07), regs.V[VF])
}

func TestALU(t *testing.T) {
	tests := []struct {
		name   string
		vx, vy uint8
		op     uint16 // 8XYn with X=1, Y=2
		want   uint8
		flag   uint8
		setsVF bool
	}{
		{"LD", 0x11, 0x22, 0x8120, 0x22, 0, false},
		{"OR", 0xF0, 0x0F, 0x8121, 0xFF, 0, false},
		{"AND", 0xF0, 0x3C, 0x8122, 0x30, 0, false},
		{"XOR", 0xFF, 0x0F, 0x8123, 0xF0, 0, false},
		{"ADD no carry", 0x10, 0x20, 0x8124, 0x30, 0, true},
		{"ADD exactly 255", 0xF0, 0x0F, 0x8124, 0xFF, 0, true},
		{"ADD carry", 0xFF, 0x02, 0x8124, 0x01, 1, true},
		{"ADD carry both max", 0xFF, 0xFF, 0x8124, 0xFE, 1, true},
		{"SUB no borrow", 0x30, 0x10, 0x8125, 0x20, 1, true},
		{"SUB equal", 0x42, 0x42, 0x8125, 0x00, 1, true},
		{"SUB borrow", 0x10, 0x30, 0x8125, 0xE0, 0, true},
		{"SUB from zero", 0x00, 0xFF, 0x8125, 0x01, 0, true},
		{"SHR lsb set", 0x05, 0x00, 0x8126, 0x02, 1, true},
		{"SHR lsb clear", 0x04, 0xFF, 0x8126, 0x02, 0, true},
		{"SUBN no borrow", 0x10, 0x30, 0x8127, 0x20, 1, true},
		{"SUBN equal", 0x42, 0x42, 0x8127, 0x00, 1, true},
		{"SUBN borrow", 0x30, 0x10, 0x8127, 0xE0, 0, true},
		{"SHL msb set", 0x81, 0x00, 0x812E, 0x02, 1, true},
		{"SHL msb clear", 0x41, 0xFF, 0x812E, 0x82, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu := newTestEMU(t,
				0x6100|uint16(tt.vx),
				0x6200|uint16(tt.vy),
				0x6FAA,
				tt.op,
			)
			step(t, emu, 4)

			regs := emu.Registers()
			assert.Equal(t, tt.want, regs.V[1])
			if tt.setsVF {
				assert.Equal(t, tt.flag, regs.V[VF])
			} else {
				assert.Equal(t, uint8(0xAA), regs.V[VF])
			}
			assert.Equal(t, uint16(0x208), emu.PC())
		})
	}
}

func TestALUWithVFOperand(t *testing.T) {
	tests := []struct {
		name  string
		setup []uint16
		op    uint16
		vf    uint8
	}{
		// X is F: the flag overwrites the result
		{"ADD VF, V1 with carry", []uint16{0x6FFF, 0x6102}, 0x8F14, 1},
		{"ADD VF, V1 without carry", []uint16{0x6F01, 0x6102}, 0x8F14, 0},
		{"SUB VF, V1", []uint16{0x6F05, 0x6103}, 0x8F15, 1},
		{"SHR VF", []uint16{0x6F02}, 0x8F06, 0},
		{"SHL VF", []uint16{0x6F80}, 0x8F0E, 1},
		// Y is F: the source is read before the flag is written
		{"ADD V1, VF", []uint16{0x6101, 0x6FFF}, 0x81F4, 1},
		{"SUBN V1, VF", []uint16{0x6102, 0x6F01}, 0x81F7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu := newTestEMU(t, append(tt.setup, tt.op)...)
			step(t, emu, len(tt.setup)+1)
			assert.Equal(t, tt.vf, emu.Registers().V[VF])
		})
	}

	// Y aliasing VF: ADD V1, VF keeps the pre-flag operand in the result
	emu := newTestEMU(t, 0x6101, 0x6FFF, 0x81F4)
	step(t, emu, 3)
	assert.Equal(t, uint8(0x00), emu.Registers().V[1])
}

func TestIndexOps(t *testing.T) {
	emu := newTestEMU(t, 0xA123, 0x6005, 0xF01E)
	step(t, emu, 3)
	assert.Equal(t, uint16(0x128), emu.Index())

	emu = newTestEMU(t, 0x600A, 0xF029)
	step(t, emu, 2)
	assert.Equal(t, uint16(0x0A*5), emu.Index())
}

func TestRandom(t *testing.T) {
	emu := newTestEMU(t, 0xC00F, 0xC100)
	step(t, emu, 2)
	regs := emu.Registers()
	assert.Equal(t, uint8(0), regs.V[0]&0xF0)
	assert.Equal(t, uint8(0), regs.V[1])
}

func TestBCD(t *testing.T) {
	tests := []struct {
		value uint8
		want  [3]uint8
	}{
		{255, [3]uint8{2, 5, 5}},
		{100, [3]uint8{1, 0, 0}},
		{42, [3]uint8{0, 4, 2}},
		{0, [3]uint8{0, 0, 0}},
	}

	for _, tt := range tests {
		emu := newTestEMU(t, 0x6300|uint16(tt.value), 0xA300, 0xF333)
		step(t, emu, 3)
		for i, want := range tt.want {
			v, err := emu.Memory().Read(0x300 + uint16(i))
			assert.NoError(t, err)
			assert.Equal(t, want, v)
		}
		assert.Equal(t, uint16(0x300), emu.Index())
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	emu := newTestEMU(t,
		0x6011, 0x6122, 0x6233, 0x6344, 0x6455, 0x6566, 0x6699,
		0xA400,
		0xF555, // store V0..V5
		0x6000, 0x6100, 0x6200, 0x6300, 0x6400, 0x6500,
		0xA400,
		0xF565, // load V0..V5
	)

	step(t, emu, 9)
	assert.Equal(t, uint16(0x406), emu.Index())
	v, _ := emu.Memory().Read(0x406)
	assert.Equal(t, uint8(0), v)

	step(t, emu, 8)
	regs := emu.Registers()
	assert.Equal(t, [6]uint8{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}, [6]uint8{
		regs.V[0], regs.V[1], regs.V[2], regs.V[3], regs.V[4], regs.V[5],
	})
	assert.Equal(t, uint8(0x99), regs.V[6])
	assert.Equal(t, uint16(0x406), emu.Index())
}

func TestTimers(t *testing.T) {
	emu := newTestEMU(t, 0x6005, 0xF015, 0xF018, 0xF107)
	step(t, emu, 4)
	assert.Equal(t, uint8(5), emu.Registers().V[1])
	assert.Equal(t, uint8(5), emu.SoundTimer())

	for i := 0; i < 5; i++ {
		emu.TickTimers()
	}
	assert.Equal(t, uint8(0), emu.DelayTimer())
	assert.Equal(t, uint8(0), emu.SoundTimer())

	emu.TickTimers()
	assert.Equal(t, uint8(0), emu.DelayTimer())
	assert.Equal(t, uint8(0), emu.SoundTimer())
}

func TestTimersIndependentOfCycles(t *testing.T) {
	emu := newTestEMU(t, 0x6003, 0xF015, 0x1204)
	step(t, emu, 50)
	assert.Equal(t, uint8(3), emu.DelayTimer())
}

func TestDraw(t *testing.T) {
	// draw the "0" glyph twice at the same spot
	emu := newTestEMU(t, 0x6000, 0xF029, 0x6105, 0x6203, 0xD125, 0xD125)
	step(t, emu, 5)

	fb := emu.Framebuffer()
	assert.True(t, fb.ConsumeRedraw())
	assert.Equal(t, uint8(0), emu.Registers().V[VF])
	assert.Equal(t, uint8(1), fb.Pixel(5, 3))
	assert.Equal(t, uint8(0), fb.Pixel(6, 4))

	step(t, emu, 1)
	assert.Equal(t, uint8(1), emu.Registers().V[VF])
	assert.True(t, fb.NeedsRedraw())
	for _, p := range fb.Pixels() {
		assert.Equal(t, uint8(0), p)
	}
}

func TestDrawWraps(t *testing.T) {
	emu := newTestEMU(t, 0x603C, 0x6100, 0xA20A, 0xD011, 0x1208, 0xFF00)
	step(t, emu, 4)

	fb := emu.Framebuffer()
	for x := 0; x < 4; x++ {
		assert.Equal(t, uint8(1), fb.Pixel(x, 0))
		assert.Equal(t, uint8(1), fb.Pixel(60+x, 0))
	}
	assert.Equal(t, uint8(0), fb.Pixel(4, 0))
}

func TestClearScreen(t *testing.T) {
	emu := newTestEMU(t, 0xD005, 0x00E0)
	step(t, emu, 1)
	emu.Framebuffer().ConsumeRedraw()
	step(t, emu, 1)
	assert.True(t, emu.Framebuffer().NeedsRedraw())
	for _, p := range emu.Framebuffer().Pixels() {
		assert.Equal(t, uint8(0), p)
	}
}

func TestKeySkips(t *testing.T) {
	emu := newTestEMU(t, 0x6007, 0xE09E, 0x0000, 0xE0A1)
	emu.Keypad().Set(0x7, true)
	step(t, emu, 2)
	assert.Equal(t, uint16(0x206), emu.PC())

	step(t, emu, 1)
	assert.Equal(t, uint16(0x208), emu.PC())
}

func TestWaitForKey(t *testing.T) {
	emu := newTestEMU(t, 0xF30A)

	for i := 0; i < 3; i++ {
		step(t, emu, 1)
		assert.Equal(t, Blocked, emu.State())
		assert.Equal(t, uint16(0x200), emu.PC())
	}

	// timers keep running while blocked
	emu.regs.DT = 2
	emu.TickTimers()
	assert.Equal(t, uint8(1), emu.DelayTimer())

	emu.Keypad().Set(0xB, true)
	emu.Keypad().Set(0x4, true)
	step(t, emu, 1)
	assert.Equal(t, Running, emu.State())
	assert.Equal(t, uint16(0x202), emu.PC())
	assert.Equal(t, uint8(0x4), emu.Registers().V[3])
}

func TestUnknownOpcode(t *testing.T) {
	var buf bytes.Buffer
	emu := NewEMU(WithLogger(logging.New(&buf, false, false)))
	assert.NoError(t, emu.LoadProgram([]byte{0x5A, 0xB1, 0x01, 0x23, 0x61, 0x01}))

	step(t, emu, 3)
	assert.Equal(t, uint16(0x206), emu.PC())
	assert.Equal(t, 2, emu.UnknownOpcodes())
	assert.Equal(t, uint8(1), emu.Registers().V[1])
	assert.Equal(t, uint16(0x6101), emu.Opcode())
	assert.True(t, strings.Contains(buf.String(), "unknown opcode 5AB1 at 0x200"))
	assert.True(t, strings.Contains(buf.String(), "unknown opcode 0123 at 0x202"))
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	emu := NewEMU(WithLogger(logging.New(&buf, true, false)))
	assert.NoError(t, emu.LoadProgram([]byte{0x61, 0x01}))
	step(t, emu, 1)
	assert.True(t, strings.Contains(buf.String(), "200  6101  LD V1, $01"))
}

func TestAddressMasking(t *testing.T) {
	// I beyond 0xFFF wraps into the low addresses
	emu := newTestEMU(t, 0xAFFF, 0x6001, 0xF01E, 0x6163, 0xF133)
	step(t, emu, 5)
	assert.Equal(t, uint16(0x1000), emu.Index())
	v, _ := emu.Memory().Read(0x000)
	assert.Equal(t, uint8(0), v)
	v, _ = emu.Memory().Read(0x001)
	assert.Equal(t, uint8(9), v)
	v, _ = emu.Memory().Read(0x002)
	assert.Equal(t, uint8(9), v)

	// a jump to the last word fetches its second byte from 0x000
	emu = newTestEMU(t, 0x1FFF)
	step(t, emu, 1)
	assert.NoError(t, emu.Memory().Write(0xFFF, 0x00))
	step(t, emu, 1)
	assert.Equal(t, uint16(0x00F0), emu.Opcode())
}
