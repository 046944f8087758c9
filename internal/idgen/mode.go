package idgen

import (
	"fmt"
	"strings"

	"github.com/roach88/expertlog/internal/record"
)

// Mode selects how identifiers are sourced.
type Mode string

const (
	ModeSerial Mode = "serial"
	ModeToken  Mode = "token"
	ModeUUID   Mode = "uuid"
)

// Modes lists the accepted mode names.
var Modes = []Mode{ModeSerial, ModeToken, ModeUUID}

// ParseMode validates a mode name. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Modes {
		if m == valid {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid id mode %q: must be one of %v", s, Modes)
}

// Kind returns the store column kind for the mode.
func (m Mode) Kind() record.IDKind {
	if m == ModeSerial {
		return record.KindSerial
	}
	return record.KindToken
}

// StoreGenerated reports whether the primary store assigns identifiers.
func (m Mode) StoreGenerated() bool {
	return m == ModeSerial
}
