package memory

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

const (
	Size          = 0x1000
	ProgramStart  = 0x200
	MaxProgramLen = Size - ProgramStart
)

var (
	ErrAddressOutOfRange = errors.New("address out of range")
	ErrProgramTooLarge   = errors.New("program too large")
)

// Memory is the flat 4KB store of the machine.
type Memory struct {
	cells [Size]uint8
}

// New returns zeroed memory.
func New() *Memory {
	return &Memory{}
}

// Load copies src into memory starting at offset.
func (m *Memory) Load(src []byte, offset int) error {
	if offset < 0 || offset+len(src) > Size {
		return fmt.Errorf("loading %d bytes at 0x%03X: %w", len(src), offset, ErrAddressOutOfRange)
	}
	copy(m.cells[offset:], src)
	return nil
}

// LoadProgram places a program image at ProgramStart. Images that do not fit
// are rejected without touching memory.
func (m *Memory) LoadProgram(program []byte) error {
	if len(program) > MaxProgramLen {
		return fmt.Errorf("%d bytes, can't cross %d bytes: %w", len(program), MaxProgramLen, ErrProgramTooLarge)
	}
	return m.Load(program, ProgramStart)
}

func (m *Memory) Read(addr uint16) (uint8, error) {
	if int(addr) >= Size {
		return 0, fmt.Errorf("read 0x%04X: %w", addr, ErrAddressOutOfRange)
	}
	return m.cells[addr], nil
}

func (m *Memory) Write(addr uint16, value uint8) error {
	if int(addr) >= Size {
		return fmt.Errorf("write 0x%04X: %w", addr, ErrAddressOutOfRange)
	}
	m.cells[addr] = value
	return nil
}

// Reset zeroes all cells.
func (m *Memory) Reset() {
	m.cells = [Size]uint8{}
}

// Dump writes a hex dump of the whole store to w.
func (m *Memory) Dump(w io.Writer) error {
	d := hex.Dumper(w)
	if _, err := d.Write(m.cells[:]); err != nil {
		return err
	}
	return d.Close()
}
