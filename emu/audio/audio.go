// Package audio plays the CHIP-8 buzzer through the beep speaker while the
// sound timer is nonzero.
package audio

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/beanboi7/chyp8/insides/config"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	toneHz     = 440
	amplitude  = 0.25
)

// Beeper toggles a looping tone on and off. The zero value is silent.
type Beeper struct {
	ctrl    *beep.Ctrl
	source  beep.StreamSeekCloser
	playing bool
}

// Silent returns a Beeper that never makes a sound.
func Silent() *Beeper {
	return &Beeper{}
}

// New initialises the speaker and starts a paused tone. With sound disabled
// it returns a silent Beeper. When s.File names an mp3 it is looped instead
// of the built-in square tone.
func New(s config.Sound) (*Beeper, error) {
	if !s.Enabled {
		return Silent(), nil
	}

	b := &Beeper{}
	tone := square(sampleRate, toneHz)
	if s.File != "" {
		streamer, err := b.openMP3(s.File)
		if err != nil {
			return nil, err
		}
		tone = streamer
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		b.closeSource()
		return nil, fmt.Errorf("initialising speaker: %w", err)
	}

	b.ctrl = &beep.Ctrl{Streamer: tone, Paused: true}
	volume := &effects.Volume{
		Streamer: b.ctrl,
		Base:     2,
		Silent:   s.Volume == 0,
	}
	if s.Volume > 0 {
		volume.Volume = math.Log2(float64(s.Volume) / 100)
	}
	speaker.Play(volume)
	return b, nil
}

func (b *Beeper) openMP3(path string) (beep.Streamer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening beep sound: %w", err)
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	b.source = streamer

	looped := beep.Loop(-1, streamer)
	if format.SampleRate == sampleRate {
		return looped, nil
	}
	return beep.Resample(4, format.SampleRate, sampleRate, looped), nil
}

// Update plays the tone while soundTimer is nonzero.
func (b *Beeper) Update(soundTimer uint8) {
	if b.ctrl == nil {
		return
	}
	on := soundTimer > 0
	if on == b.playing {
		return
	}
	speaker.Lock()
	b.ctrl.Paused = !on
	speaker.Unlock()
	b.playing = on
}

// Close stops playback and releases a decoded sound file.
func (b *Beeper) Close() {
	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Streamer = nil
		speaker.Unlock()
	}
	b.closeSource()
}

func (b *Beeper) closeSource() {
	if b.source != nil {
		b.source.Close()
		b.source = nil
	}
}

// square returns an endless square wave of freq Hz.
func square(sr beep.SampleRate, freq int) beep.Streamer {
	period := sr.N(time.Second) / freq
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := amplitude
			if pos >= period/2 {
				v = -amplitude
			}
			samples[i][0], samples[i][1] = v, v
			pos = (pos + 1) % period
		}
		return len(samples), true
	})
}
