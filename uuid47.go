// Package uuid47 lets services keep time-ordered UUIDv7 identifiers
// internally (index locality, rough sortability) while exposing a
// UUIDv4-shaped facade at external boundaries. Encode XORs the v7 timestamp
// field with a SipHash-2-4 stream keyed by a caller-supplied 128-bit secret
// and seeded from the UUID's own entropy bits, so the facade reveals neither
// creation time nor order; Decode inverts it exactly under the same key.
package uuid47

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Compile-time interface checks for UUID
var (
	_ fmt.Stringer               = UUID{}
	_ driver.Valuer              = UUID{}
	_ sql.Scanner                = (*UUID)(nil)
	_ encoding.TextMarshaler     = UUID{}
	_ encoding.TextUnmarshaler   = (*UUID)(nil)
	_ encoding.BinaryMarshaler   = UUID{}
	_ encoding.BinaryUnmarshaler = (*UUID)(nil)
	_ json.Marshaler             = UUID{}
	_ json.Unmarshaler           = (*UUID)(nil)
	_ gob.GobEncoder             = UUID{}
	_ gob.GobDecoder             = (*UUID)(nil)
)

// UUID is a 128-bit identifier in RFC 9562 byte order.
//
// Version 7 layout, bit-indexed from the most significant byte:
//
//	unix_ts_ms (48) | ver (4) | rand_a (12) | var (2) | rand_b (62)
//
// Facades produced by Encode carry version 4 in the same layout.
type UUID [16]byte

// Nil is the all-zero UUID.
var Nil UUID

const (
	version4 byte = 4 // random-form marker (facade)
	version7 byte = 7 // time-ordered marker
)

// ErrParse reports text that is not a canonical UUID string. Parsing is
// all-or-nothing: exactly 36 characters, hyphens at offsets 8, 13, 18 and
// 23, and hex digits (either case) everywhere else.
var ErrParse = errors.New("uuid47: invalid UUID string")

// Parse parses the canonical 36-character hyphenated form into a UUID.
// It validates structure only; any version and variant bits are accepted.
// URN prefixes, braces and unhyphenated forms are rejected.
func Parse(s string) (UUID, error) {
	if len(s) != 36 {
		return Nil, fmt.Errorf("%w: length %d, want 36", ErrParse, len(s))
	}
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return Nil, fmt.Errorf("%w: hyphens must be at offsets 8, 13, 18, 23", ErrParse)
	}
	var digits [32]byte
	n := 0
	for i := 0; i < 36; i++ {
		if i == 8 || i == 13 || i == 18 || i == 23 {
			continue
		}
		digits[n] = s[i]
		n++
	}
	var u UUID
	if _, err := hex.Decode(u[:], digits[:]); err != nil {
		return Nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return u, nil
}

// String returns the canonical text form: lowercase hex, grouped
// 8-4-4-4-12. It is the single projection of a UUID to text; parsing
// accepts uppercase input but formatting never produces it.
func (u UUID) String() string {
	var buf [36]byte
	hex.Encode(buf[:8], u[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], u[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], u[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], u[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:], u[10:16])
	return string(buf[:])
}

// Version returns the version nibble (7 for time-ordered values, 4 for
// facades).
func (u UUID) Version() byte {
	return u[6] >> 4
}

// Variant returns the variant class of byte 8: 0 (NCS), 2 (RFC 4122/9562),
// 6 (Microsoft) or 7 (reserved). Both UUID forms handled by this package
// carry variant 2.
func (u UUID) Variant() byte {
	switch {
	case u[8]&0x80 == 0x00:
		return 0
	case u[8]&0xc0 == 0x80:
		return 2
	case u[8]&0xe0 == 0xc0:
		return 6
	default:
		return 7
	}
}

// rfc4122 reports whether the variant bits are the binary 10 both UUID
// forms require.
func (u UUID) rfc4122() bool {
	return u[8]&0xc0 == 0x80
}

// Timestamp returns the creation time carried in the leading 48 bits,
// interpreted as Unix milliseconds. Only meaningful for version 7 values;
// for facades it returns the masked field as-is.
func (u UUID) Timestamp() time.Time {
	return time.UnixMilli(int64(u.timestamp48()))
}

func (u UUID) timestamp48() uint64 {
	return uint64(u[0])<<40 | uint64(u[1])<<32 | uint64(u[2])<<24 |
		uint64(u[3])<<16 | uint64(u[4])<<8 | uint64(u[5])
}

func (u *UUID) setTimestamp48(ts uint64) {
	u[0] = byte(ts >> 40)
	u[1] = byte(ts >> 32)
	u[2] = byte(ts >> 24)
	u[3] = byte(ts >> 16)
	u[4] = byte(ts >> 8)
	u[5] = byte(ts)
}

// Bytes returns the UUID as a fresh 16-byte slice.
func (u UUID) Bytes() []byte {
	b := make([]byte, 16)
	copy(b, u[:])
	return b
}

func (u UUID) IsNil() bool {
	return u == Nil
}

// Compare orders two UUIDs bytewise. For version 7 values this is creation
// order (up to the per-millisecond sequence).
func (u UUID) Compare(other UUID) int {
	return bytes.Compare(u[:], other[:])
}

func (u UUID) Equal(other UUID) bool {
	return u == other
}

// MarshalText implements encoding.TextMarshaler
func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (u *UUID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// MarshalJSON implements json.Marshaler
func (u UUID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (u *UUID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*u = Nil
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: not a JSON string", ErrParse)
	}
	return u.UnmarshalText(b[1 : len(b)-1])
}

// Value implements driver.Valuer for database storage. The canonical text
// form is stored, which postgres accepts for both uuid and text columns.
func (u UUID) Value() (driver.Value, error) {
	return u.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (u *UUID) Scan(src interface{}) error {
	if src == nil {
		*u = Nil
		return nil
	}
	switch v := src.(type) {
	case UUID:
		*u = v
		return nil
	case string:
		return u.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 16 {
			copy(u[:], v)
			return nil
		}
		return u.UnmarshalText(v)
	default:
		return fmt.Errorf("uuid47: cannot scan %T", src)
	}
}

// FromString returns a UUID parsed from the canonical text form.
// Alias for Parse.
func FromString(s string) (UUID, error) {
	return Parse(s)
}

// FromStringOrNil returns a UUID parsed from the canonical text form.
// Returns Nil on error.
func FromStringOrNil(s string) UUID {
	u, err := Parse(s)
	if err != nil {
		return Nil
	}
	return u
}

// FromBytes returns a UUID from a 16-byte slice in canonical byte order.
func FromBytes(b []byte) (UUID, error) {
	var u UUID
	if len(b) != 16 {
		return Nil, fmt.Errorf("uuid47: UUID must be exactly 16 bytes, got %d", len(b))
	}
	copy(u[:], b)
	return u, nil
}

// FromBytesOrNil returns a UUID from a 16-byte slice.
// Returns Nil on error.
func FromBytesOrNil(b []byte) UUID {
	u, err := FromBytes(b)
	if err != nil {
		return Nil
	}
	return u
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (u UUID) MarshalBinary() ([]byte, error) {
	return u.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (u *UUID) UnmarshalBinary(data []byte) error {
	parsed, err := FromBytes(data)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// GobEncode implements gob.GobEncoder.
func (u UUID) GobEncode() ([]byte, error) {
	return u.MarshalBinary()
}

// GobDecode implements gob.GobDecoder.
func (u *UUID) GobDecode(data []byte) error {
	return u.UnmarshalBinary(data)
}

// Must panics if err is not nil
func Must(u UUID, err error) UUID {
	if err != nil {
		panic(err)
	}
	return u
}
