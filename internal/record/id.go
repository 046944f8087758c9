package record

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IDKind tells how an identifier column is typed in the store.
type IDKind int

const (
	// KindSerial identifiers are integers assigned by the primary store.
	KindSerial IDKind = iota

	// KindToken identifiers are strings chosen before the write.
	KindToken
)

func (k IDKind) String() string {
	if k == KindToken {
		return "token"
	}
	return "serial"
}

// ID identifies an ExpertLog or ExpertCamp. It holds either a serial integer
// or a string token; the zero value means "not assigned yet".
type ID struct {
	serial int64
	token  string
	kind   IDKind
	set    bool
}

// SerialID returns a store-generated integer identifier.
func SerialID(n int64) ID {
	return ID{serial: n, kind: KindSerial, set: true}
}

// TokenID returns a caller-supplied string identifier.
// An empty token yields the zero ID.
func TokenID(s string) ID {
	if s == "" {
		return ID{}
	}
	return ID{token: s, kind: KindToken, set: true}
}

// ParseID interprets s according to kind. Serial identifiers must be
// decimal integers.
func ParseID(s string, kind IDKind) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, nil
	}
	if kind == KindToken {
		return TokenID(s), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("parse serial id %q: %w", s, err)
	}
	return SerialID(n), nil
}

// IsZero reports whether the identifier is unassigned.
func (id ID) IsZero() bool { return !id.set }

// Kind returns the identifier kind. The zero ID reports KindSerial.
func (id ID) Kind() IDKind { return id.kind }

// Int64 returns the serial value, or 0 for token identifiers.
func (id ID) Int64() int64 { return id.serial }

func (id ID) String() string {
	switch {
	case !id.set:
		return ""
	case id.kind == KindToken:
		return id.token
	default:
		return strconv.FormatInt(id.serial, 10)
	}
}

// MarshalJSON writes serial identifiers as JSON numbers and tokens as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	switch {
	case !id.set:
		return []byte("null"), nil
	case id.kind == KindToken:
		return json.Marshal(id.token)
	default:
		return []byte(strconv.FormatInt(id.serial, 10)), nil
	}
}

// UnmarshalJSON accepts a JSON number (serial), a string (token) or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*id = ID{}
	case strings.HasPrefix(s, `"`):
		var tok string
		if err := json.Unmarshal(b, &tok); err != nil {
			return err
		}
		*id = TokenID(tok)
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = SerialID(n)
	}
	return nil
}

// MarshalBinary encodes the identifier for the replication outbox.
func (id ID) MarshalBinary() ([]byte, error) {
	switch {
	case !id.set:
		return []byte{}, nil
	case id.kind == KindToken:
		return []byte("t:" + id.token), nil
	default:
		return []byte("s:" + strconv.FormatInt(id.serial, 10)), nil
	}
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (id *ID) UnmarshalBinary(b []byte) error {
	s := string(b)
	switch {
	case s == "":
		*id = ID{}
	case strings.HasPrefix(s, "t:"):
		*id = TokenID(s[2:])
	case strings.HasPrefix(s, "s:"):
		n, err := strconv.ParseInt(s[2:], 10, 64)
		if err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = SerialID(n)
	default:
		return fmt.Errorf("id: unknown encoding %q", s)
	}
	return nil
}

// Value implements driver.Valuer.
func (id ID) Value() (driver.Value, error) {
	switch {
	case !id.set:
		return nil, nil
	case id.kind == KindToken:
		return id.token, nil
	default:
		return id.serial, nil
	}
}

// Scan implements sql.Scanner. Integer columns produce serial identifiers,
// text columns produce tokens.
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*id = ID{}
	case int64:
		*id = SerialID(v)
	case int32:
		*id = SerialID(int64(v))
	case int:
		*id = SerialID(int64(v))
	case string:
		*id = TokenID(v)
	case []byte:
		*id = TokenID(string(v))
	default:
		return fmt.Errorf("id: cannot scan %T", src)
	}
	return nil
}
