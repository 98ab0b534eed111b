// Package matrix builds Distance Matrix requests and decodes their responses.
// It performs no I/O; see package client for the transport.
package matrix

import (
	"fmt"
	"strings"
)

// Mode is the travel mode sent to the Distance Matrix API.
type Mode string

const (
	// ModeDriving routes by car.
	ModeDriving Mode = "driving"

	// ModeWalking routes on foot.
	ModeWalking Mode = "walking"

	// ModeBicycling routes by bicycle.
	ModeBicycling Mode = "bicycling"
)

// modeAliases maps accepted spellings to API modes. The Spanish labels are
// the ones shown to end users of the ranking form.
var modeAliases = map[string]Mode{
	"driving":   ModeDriving,
	"car":       ModeDriving,
	"coche":     ModeDriving,
	"walking":   ModeWalking,
	"walk":      ModeWalking,
	"andando":   ModeWalking,
	"bicycling": ModeBicycling,
	"bicycle":   ModeBicycling,
	"bike":      ModeBicycling,
	"bicicleta": ModeBicycling,
}

// ParseMode converts a user supplied string into a Mode.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown travel mode %q", s)
	}
	return m, nil
}

// Valid reports whether m is one of the supported API modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeDriving, ModeWalking, ModeBicycling:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	return string(m)
}
