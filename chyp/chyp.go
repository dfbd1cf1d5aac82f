// Package chyp runs a machine against its screen and speaker: a frame tick
// that polls input, executes a batch of instructions and renders, and a fixed
// 60Hz tick that drives the timers and the buzzer.
package chyp

import (
	"context"
	"time"

	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/beanboi7/chyp8/emu/display"
	"github.com/beanboi7/chyp8/emu/keypad"
	"github.com/beanboi7/chyp8/insides/config"

	jww "github.com/spf13/jwalterweatherman"
)

// TimerHz is the fixed rate of the delay and sound timers.
const TimerHz = 60

// Screen presents the framebuffer and feeds the keypad.
type Screen interface {
	Poll(keys *keypad.Keypad)
	Render(fb *display.Framebuffer)
	Closed() bool
}

// Speaker follows the sound timer.
type Speaker interface {
	Update(soundTimer uint8)
}

// Chyp8 owns a machine and its collaborators. Everything runs on the caller's
// goroutine so none of the machine state needs locking.
type Chyp8 struct {
	emu      *cpu.EMU
	screen   Screen
	speaker  Speaker
	settings config.Settings
	log      *jww.Notepad

	frames int
	ticks  int
}

func New(emu *cpu.EMU, screen Screen, speaker Speaker, settings config.Settings, log *jww.Notepad) *Chyp8 {
	return &Chyp8{
		emu:      emu,
		screen:   screen,
		speaker:  speaker,
		settings: settings,
		log:      log,
	}
}

// LoadGame loads a ROM file into the machine.
func (c *Chyp8) LoadGame(filename string) error {
	if err := c.emu.LoadROM(filename); err != nil {
		return err
	}
	c.log.INFO.Printf("running %s, %d cycles per frame at %dHz", filename, c.settings.CyclesPerFrame, c.settings.RefreshRate)
	return nil
}

// SetKeys copies the screen's key state into the keypad.
func (c *Chyp8) SetKeys() {
	c.screen.Poll(c.emu.Keypad())
}

// EmulateFrame polls input, executes CyclesPerFrame instructions and renders.
func (c *Chyp8) EmulateFrame() error {
	c.SetKeys()
	for i := 0; i < c.settings.CyclesPerFrame; i++ {
		if err := c.emu.Cycle(); err != nil {
			return err
		}
	}
	c.screen.Render(c.emu.Framebuffer())
	c.frames++
	return nil
}

// TickTimers decrements the timers and updates the buzzer.
func (c *Chyp8) TickTimers() {
	c.emu.TickTimers()
	c.speaker.Update(c.emu.SoundTimer())
	c.ticks++
}

// Run drives the machine until ctx is done, the screen is closed or the
// machine faults. Only a fault is returned as an error.
func (c *Chyp8) Run(ctx context.Context) error {
	frame := time.NewTicker(time.Second / time.Duration(c.settings.RefreshRate))
	defer frame.Stop()
	timers := time.NewTicker(time.Second / TimerHz)
	defer timers.Stop()

	defer func() {
		c.speaker.Update(0)
		c.log.DEBUG.Printf("stopped after %d frames, %d timer ticks, %d unknown opcodes",
			c.frames, c.ticks, c.emu.UnknownOpcodes())
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timers.C:
			c.TickTimers()
		case <-frame.C:
			if c.screen.Closed() {
				return nil
			}
			if err := c.EmulateFrame(); err != nil {
				return err
			}
		}
	}
}
