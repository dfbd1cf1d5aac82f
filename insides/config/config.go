// Package config turns viper settings into the explicit Settings value handed
// to the renderer, the audio output and the host loop.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/image/colornames"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Viper keys.
const (
	KeyForeground     = "foreground"
	KeyBackground     = "background"
	KeyCyclesPerFrame = "cycles_per_frame"
	KeyRefreshRate    = "refresh_rate"
	KeyScale          = "scale"
	KeySoundEnabled   = "sound.enabled"
	KeySoundVolume    = "sound.volume"
	KeySoundFile      = "sound.file"
)

type Sound struct {
	Enabled bool
	Volume  int    // 0-100
	File    string // optional mp3, the built-in tone is used when empty
}

type Settings struct {
	Foreground     color.RGBA
	Background     color.RGBA
	CyclesPerFrame int
	RefreshRate    int // frames per second
	Scale          int // window pixels per CHIP-8 pixel
	Sound          Sound
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyForeground, "white")
	v.SetDefault(KeyBackground, "black")
	v.SetDefault(KeyCyclesPerFrame, 8)
	v.SetDefault(KeyRefreshRate, 60)
	v.SetDefault(KeyScale, 10)
	v.SetDefault(KeySoundEnabled, true)
	v.SetDefault(KeySoundVolume, 100)
	v.SetDefault(KeySoundFile, "")
}

// Load reads and validates the settings held by v.
func Load(v *viper.Viper) (Settings, error) {
	fg, err := ParseColor(v.GetString(KeyForeground))
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", KeyForeground, err)
	}
	bg, err := ParseColor(v.GetString(KeyBackground))
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", KeyBackground, err)
	}

	s := Settings{
		Foreground:     fg,
		Background:     bg,
		CyclesPerFrame: v.GetInt(KeyCyclesPerFrame),
		RefreshRate:    v.GetInt(KeyRefreshRate),
		Scale:          v.GetInt(KeyScale),
		Sound: Sound{
			Enabled: v.GetBool(KeySoundEnabled),
			Volume:  v.GetInt(KeySoundVolume),
			File:    v.GetString(KeySoundFile),
		},
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	switch {
	case s.CyclesPerFrame < 1:
		return fmt.Errorf("%s must be at least 1, got %d: %w", KeyCyclesPerFrame, s.CyclesPerFrame, ErrInvalid)
	case s.RefreshRate < 1:
		return fmt.Errorf("%s must be at least 1, got %d: %w", KeyRefreshRate, s.RefreshRate, ErrInvalid)
	case s.Scale < 1:
		return fmt.Errorf("%s must be at least 1, got %d: %w", KeyScale, s.Scale, ErrInvalid)
	case s.Sound.Volume < 0 || s.Sound.Volume > 100:
		return fmt.Errorf("%s must be within 0-100, got %d: %w", KeySoundVolume, s.Sound.Volume, ErrInvalid)
	}
	return nil
}

// ParseColor accepts an SVG color name ("white", "limegreen") or #RRGGBB.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}

	var r, g, b uint8
	if len(s) == 7 && s[0] == '#' {
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err == nil {
			return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
		}
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q: %w", s, ErrInvalid)
}
