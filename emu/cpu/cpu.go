package cpu

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/beanboi7/chyp8/emu/display"
	"github.com/beanboi7/chyp8/emu/keypad"
	"github.com/beanboi7/chyp8/emu/memory"
	"github.com/beanboi7/chyp8/insides/logging"

	jww "github.com/spf13/jwalterweatherman"
)

// addressMask keeps computed addresses inside the 4KB space.
const addressMask = memory.Size - 1

// ErrNotRunning is returned by Cycle when no program is loaded or the machine
// stopped on a fault.
var ErrNotRunning = errors.New("no program running")

// State is the execution state of the interpreter.
type State uint8

const (
	Idle    State = iota // no program loaded
	Running              // normal fetch-execute
	Blocked              // waiting in FX0A for a key press
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// EMU is the CHIP-8 interpreter. It is not safe for concurrent use, the host
// drives Cycle and TickTimers from one goroutine.
type EMU struct {
	opcode  uint16 // opcode of the instruction being executed
	regs    Registers
	memory  *memory.Memory
	stack   Stack
	keys    *keypad.Keypad
	display *display.Framebuffer
	state   State

	rng     *rand.Rand
	log     *jww.Notepad
	trace   bool
	unknown int
}

// Option configures an EMU.
type Option func(*EMU)

// WithLogger sets the notepad unknown opcodes and traces are written to.
func WithLogger(n *jww.Notepad) Option {
	return func(emu *EMU) {
		emu.log = n
		emu.trace = logging.Tracing(n)
	}
}

// WithRand sets the random source used by CXNN.
func WithRand(r *rand.Rand) Option {
	return func(emu *EMU) {
		emu.rng = r
	}
}

// NewEMU returns an idle machine with the font loaded at address 0.
func NewEMU(opts ...Option) *EMU {
	emu := &EMU{
		memory:  memory.New(),
		keys:    &keypad.Keypad{},
		display: &display.Framebuffer{},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(emu)
	}
	emu.Reset()
	return emu
}

// Reset clears memory, registers, stack, timers and screen, reloads the font
// and leaves the machine idle.
func (emu *EMU) Reset() {
	emu.memory.Reset()
	emu.loadFont()
	emu.regs.reset()
	emu.stack.Reset()
	emu.display.Reset()
	emu.opcode = 0
	emu.unknown = 0
	emu.state = Idle
}

func (emu *EMU) loadFont() {
	// the font always fits at address 0
	_ = emu.memory.Load(FontSet[:], 0)
}

// LoadProgram resets the machine and loads program at 0x200. On success the
// machine is running.
func (emu *EMU) LoadProgram(program []byte) error {
	if len(program) > memory.MaxProgramLen {
		return fmt.Errorf("loading program: %d bytes, can't cross %d bytes: %w",
			len(program), memory.MaxProgramLen, memory.ErrProgramTooLarge)
	}
	emu.Reset()
	if err := emu.memory.LoadProgram(program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	emu.state = Running
	emu.log.INFO.Printf("loaded %d byte program", len(program))
	return nil
}

// LoadROM reads a program file and loads it.
func (emu *EMU) LoadROM(filename string) error {
	rom, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}
	return emu.LoadProgram(rom)
}

// Cycle fetches, decodes and executes one instruction. Faults stop the
// machine and are returned, later calls return ErrNotRunning.
func (emu *EMU) Cycle() error {
	if emu.state == Idle {
		return ErrNotRunning
	}

	pc := emu.regs.PC
	emu.opcode = uint16(emu.read(pc))<<8 | uint16(emu.read(pc+1))
	in := Decode(emu.opcode)
	if emu.trace {
		emu.log.TRACE.Printf("%03X  %04X  %s", pc&addressMask, emu.opcode, in)
	}

	if err := handlers[in.Op](emu, in); err != nil {
		emu.state = Idle
		return fmt.Errorf("opcode %04X at 0x%03X: %w", emu.opcode, pc&addressMask, err)
	}
	return nil
}

// TickTimers decrements the delay and sound timers. The host calls it at a
// fixed 60Hz, independent of the instruction rate.
func (emu *EMU) TickTimers() {
	emu.regs.tick()
}

func (emu *EMU) read(addr uint16) uint8 {
	// masked addresses are always in range
	v, _ := emu.memory.Read(addr & addressMask)
	return v
}

func (emu *EMU) write(addr uint16, value uint8) {
	_ = emu.memory.Write(addr&addressMask, value)
}

func (emu *EMU) State() State {
	return emu.state
}

// Registers returns a copy of the register file.
func (emu *EMU) Registers() Registers {
	return emu.regs
}

func (emu *EMU) PC() uint16 {
	return emu.regs.PC
}

func (emu *EMU) Index() uint16 {
	return emu.regs.I
}

func (emu *EMU) DelayTimer() uint8 {
	return emu.regs.DT
}

// SoundTimer is read by the audio output, a tone plays while it is nonzero.
func (emu *EMU) SoundTimer() uint8 {
	return emu.regs.ST
}

// Opcode returns the last fetched opcode.
func (emu *EMU) Opcode() uint16 {
	return emu.opcode
}

// UnknownOpcodes returns how many unknown or SYS opcodes were skipped since
// the last reset.
func (emu *EMU) UnknownOpcodes() int {
	return emu.unknown
}

// StackDepth returns the number of pending subroutine returns.
func (emu *EMU) StackDepth() int {
	return emu.stack.Len()
}

// Keypad is written by the input collaborator.
func (emu *EMU) Keypad() *keypad.Keypad {
	return emu.keys
}

// Framebuffer is read by the renderer, which also consumes the redraw flag.
func (emu *EMU) Framebuffer() *display.Framebuffer {
	return emu.display
}

// Memory gives diagnostic access to the address space.
func (emu *EMU) Memory() *memory.Memory {
	return emu.memory
}
