package display

const (
	Width  = 64
	Height = 32
)

// Framebuffer is the 64x32 monochrome screen, row-major, one byte per pixel
// holding 0 or 1.
type Framebuffer struct {
	pixels [Width * Height]uint8
	redraw bool
}

// Clear turns every pixel off.
func (f *Framebuffer) Clear() {
	f.pixels = [Width * Height]uint8{}
	f.redraw = true
}

// DrawSprite XORs an 8 pixel wide sprite, one byte per row, onto the screen at
// (x, y). Both the origin and every sprite pixel wrap around the screen edges.
// It reports whether any lit pixel was turned off.
func (f *Framebuffer) DrawSprite(x, y uint8, rows []uint8) bool {
	collision := false
	for row, bits := range rows {
		py := (int(y) + row) % Height
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (int(x) + col) % Width
			idx := py*Width + px
			if f.pixels[idx] == 1 {
				collision = true
			}
			f.pixels[idx] ^= 1
		}
	}
	f.redraw = true
	return collision
}

// Pixel returns the value at (x, y). Coordinates wrap in both directions.
func (f *Framebuffer) Pixel(x, y int) uint8 {
	x = ((x % Width) + Width) % Width
	y = ((y % Height) + Height) % Height
	return f.pixels[y*Width+x]
}

// Pixels returns a copy of the flat pixel array.
func (f *Framebuffer) Pixels() [Width * Height]uint8 {
	return f.pixels
}

// NeedsRedraw reports whether the buffer changed since the last ConsumeRedraw.
func (f *Framebuffer) NeedsRedraw() bool {
	return f.redraw
}

// ConsumeRedraw clears the redraw flag and returns its previous value.
func (f *Framebuffer) ConsumeRedraw() bool {
	r := f.redraw
	f.redraw = false
	return r
}

// Reset turns every pixel off without requesting a redraw.
func (f *Framebuffer) Reset() {
	f.pixels = [Width * Height]uint8{}
	f.redraw = false
}
