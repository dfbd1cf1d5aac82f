// Package logging builds the leveled logger shared by the emulator.
package logging

import (
	"io"
	"log"

	jww "github.com/spf13/jwalterweatherman"
)

const prefix = "chyp8"

// New returns a notepad writing to out. Info and up is printed by default,
// debug lowers the threshold to trace and quiet raises it to errors.
func New(out io.Writer, debug, quiet bool) *jww.Notepad {
	threshold := jww.LevelInfo
	if debug {
		threshold = jww.LevelTrace
	} else if quiet {
		threshold = jww.LevelError
	}
	return jww.NewNotepad(threshold, jww.LevelFatal, out, io.Discard, prefix, log.Ltime)
}

// Discard returns a notepad that drops everything.
func Discard() *jww.Notepad {
	return jww.NewNotepad(jww.LevelFatal, jww.LevelFatal, io.Discard, io.Discard, prefix, 0)
}

// Tracing reports whether trace output of n reaches a writer.
func Tracing(n *jww.Notepad) bool {
	return n.GetStdoutThreshold() == jww.LevelTrace
}
