package keypad

// Keys is the number of keys on the CHIP-8 hex keypad.
const Keys = 16

// Keypad holds the pressed state of keys 0x0-0xF. The input collaborator
// writes it, the interpreter only reads it.
type Keypad struct {
	state [Keys]bool
}

// Set records a press or release. Codes outside 0x0-0xF are ignored.
func (k *Keypad) Set(code uint8, pressed bool) {
	if int(code) >= Keys {
		return
	}
	k.state[code] = pressed
}

// Pressed reports whether key code is held down. Only the low nibble of code
// is used, so register values above 0xF still name a key.
func (k *Keypad) Pressed(code uint8) bool {
	return k.state[code&0x0F]
}

// FirstPressed returns the lowest-indexed pressed key.
func (k *Keypad) FirstPressed() (uint8, bool) {
	for i, down := range k.state {
		if down {
			return uint8(i), true
		}
	}
	return 0, false
}

// Release lifts every key.
func (k *Keypad) Release() {
	k.state = [Keys]bool{}
}
