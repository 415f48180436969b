package board

import (
	"fmt"
	"strings"
)

// LedPattern mirrors the board library's LED pattern layout.
type LedPattern struct {
	HighIntensity   uint8
	LowIntensity    uint8
	RiseTimeMs      uint16
	HighTimeMs      uint16
	FallTimeMs      uint16
	PulseDurationMs uint16
	RepeatCount     uint8
}

// LedPreset selects one of the patterns built into the board library.
type LedPreset int32

const (
	LedPresetBlink LedPreset = 0
	LedPresetPulse LedPreset = 1
	LedPresetSolid LedPreset = 2
)

// LedColor selects one channel of the RGB LED.
type LedColor int32

const (
	LedGreen LedColor = 0
	LedRed   LedColor = 1
	LedBlue  LedColor = 2
)

var colorsByName = map[string]LedColor{
	"GREEN": LedGreen,
	"RED":   LedRed,
	"BLUE":  LedBlue,
}

// ParseLedColor accepts a case-insensitive color name.
func ParseLedColor(name string) (LedColor, error) {
	if color, ok := colorsByName[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return color, nil
	}
	return 0, fmt.Errorf("unknown LED color '%s'", name)
}

func (c LedColor) String() string {
	for name, color := range colorsByName {
		if color == c {
			return strings.ToLower(name)
		}
	}
	return fmt.Sprintf("LedColor(%d)", int32(c))
}
