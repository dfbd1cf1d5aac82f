package screen

import (
	"fmt"
	"image/color"

	"github.com/beanboi7/chyp8/emu/display"
	"github.com/beanboi7/chyp8/emu/keypad"
	"github.com/beanboi7/chyp8/insides/config"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
)

// Window renders the framebuffer and reads the keypad from the keyboard.
// It must be created and used on the pixelgl main thread.
type Window struct {
	*pixelgl.Window
	KeyMap map[uint8]pixelgl.Button

	imd        *imdraw.IMDraw
	scale      float64
	foreground color.RGBA
	background color.RGBA
}

func NewWindow(title string, s config.Settings) (*Window, error) {
	scale := float64(s.Scale)
	cfg := pixelgl.WindowConfig{
		Title:  title,
		Bounds: pixel.R(0, 0, display.Width*scale, display.Height*scale),
		VSync:  true,
	}

	win, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}
	win.Clear(s.Background)

	return &Window{
		Window:     win,
		KeyMap:     DefaultKeyMap(),
		imd:        imdraw.New(nil),
		scale:      scale,
		foreground: s.Foreground,
		background: s.Background,
	}, nil
}

// Poll copies the state of the mapped keys into keys. Escape closes the
// window.
func (w *Window) Poll(keys *keypad.Keypad) {
	if w.JustPressed(pixelgl.KeyEscape) {
		w.SetClosed(true)
	}
	for code, button := range w.KeyMap {
		keys.Set(code, w.Pressed(button))
	}
}

// Render redraws the window when the framebuffer changed and pumps window
// events either way.
func (w *Window) Render(fb *display.Framebuffer) {
	if fb.ConsumeRedraw() {
		w.draw(fb)
	}
	w.Update()
}

func (w *Window) draw(fb *display.Framebuffer) {
	w.Clear(w.background)
	w.imd.Clear()
	w.imd.Color = w.foreground
	for y := 0; y < display.Height; y++ {
		// pixel's origin is the bottom left corner
		top := float64(display.Height-1-y) * w.scale
		for x := 0; x < display.Width; x++ {
			if fb.Pixel(x, y) == 0 {
				continue
			}
			left := float64(x) * w.scale
			w.imd.Push(pixel.V(left, top), pixel.V(left+w.scale, top+w.scale))
			w.imd.Rectangle(0)
		}
	}
	w.imd.Draw(w)
}
