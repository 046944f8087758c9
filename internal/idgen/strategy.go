package idgen

import (
	"github.com/roach88/expertlog/internal/record"
)

// Strategy applies a Mode to an incoming record identifier.
type Strategy struct {
	Mode Mode

	// Gen mints tokens in ModeUUID. Defaults to UUIDv7Generator.
	Gen Generator
}

// NewStrategy returns a Strategy for mode with the default generator.
func NewStrategy(mode Mode) Strategy {
	return Strategy{Mode: mode, Gen: UUIDv7Generator{}}
}

// Assign returns the identifier to write to the primary store.
//
// In serial mode any supplied value is discarded and the zero ID is returned;
// the store assigns one. In token mode the supplied value is required. In
// uuid mode a missing value is minted.
func (s Strategy) Assign(id record.ID, field string) (record.ID, error) {
	switch s.Mode {
	case ModeToken:
		if id.IsZero() {
			return record.ID{}, &record.ValidationError{Field: field, Reason: "required"}
		}
		return record.TokenID(id.String()), nil
	case ModeUUID:
		if !id.IsZero() {
			return record.TokenID(id.String()), nil
		}
		gen := s.Gen
		if gen == nil {
			gen = UUIDv7Generator{}
		}
		return record.TokenID(gen.Generate()), nil
	default:
		return record.ID{}, nil
	}
}
