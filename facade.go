package uuid47

import (
	"errors"
	"fmt"

	"github.com/dchest/siphash"
)

var (
	// ErrVersion reports a UUID whose version nibble does not match the
	// operation: Encode requires version 7, Decode requires version 4.
	ErrVersion = errors.New("uuid47: unexpected UUID version")

	// ErrVariant reports a UUID without the RFC 9562 variant bits 10.
	ErrVariant = errors.New("uuid47: unexpected UUID variant")

	// ErrNoKey reports use of a zero Codec. There is no process-global
	// key; construct a Codec with NewCodec.
	ErrNoKey = errors.New("uuid47: no key configured")
)

// sipMessage packs the bits the transform never touches into the PRF
// input: the rand_a nibble and byte, the low six bits of the variant
// byte, and all of rand_b. 74 bits, identical in a v7 UUID and its
// facade, which is what makes Decode able to recompute Encode's mask.
func sipMessage(u UUID) [10]byte {
	var m [10]byte
	m[0] = u[6] & 0x0f
	m[1] = u[7]
	m[2] = u[8] & 0x3f
	copy(m[3:], u[9:16])
	return m
}

// mask48 derives the 48-bit timestamp mask for u under key.
func mask48(u UUID, key Key) uint64 {
	m := sipMessage(u)
	return siphash.Hash(key.K0, key.K1, m[:]) & 0xffffffffffff
}

// Encode transforms a version 7 UUID into its version 4 facade under key.
// The timestamp field is XORed with a mask derived from the UUID's own
// entropy bits, the version nibble becomes 4, and everything else is
// carried unchanged. Deterministic, collision-free for a fixed key, and
// inverted exactly by Decode.
func Encode(id UUID, key Key) (UUID, error) {
	if v := id.Version(); v != version7 {
		return Nil, fmt.Errorf("%w: want 7, got %d", ErrVersion, v)
	}
	if !id.rfc4122() {
		return Nil, fmt.Errorf("%w: want bits 10, got byte 0x%02x", ErrVariant, id[8])
	}
	out := id
	out.setTimestamp48(id.timestamp48() ^ mask48(id, key))
	out[6] = version4<<4 | id[6]&0x0f
	return out, nil
}

// Decode recovers the original version 7 UUID from a facade produced by
// Encode under the same key. A facade from a different key decodes
// without error into a well-formed but wrong v7 UUID; the transform
// carries no authentication.
func Decode(id UUID, key Key) (UUID, error) {
	if v := id.Version(); v != version4 {
		return Nil, fmt.Errorf("%w: want 4, got %d", ErrVersion, v)
	}
	if !id.rfc4122() {
		return Nil, fmt.Errorf("%w: want bits 10, got byte 0x%02x", ErrVariant, id[8])
	}
	out := id
	out.setTimestamp48(id.timestamp48() ^ mask48(id, key))
	out[6] = version7<<4 | id[6]&0x0f
	return out, nil
}

// Codec binds a key once so call sites do not thread it through every
// Encode and Decode. The zero value has no key and fails every operation
// with ErrNoKey.
type Codec struct {
	key Key
	set bool
}

// NewCodec returns a Codec bound to key.
func NewCodec(key Key) Codec {
	return Codec{key: key, set: true}
}

// Encode transforms a version 7 UUID into its facade under the bound key.
func (c Codec) Encode(id UUID) (UUID, error) {
	if !c.set {
		return Nil, ErrNoKey
	}
	return Encode(id, c.key)
}

// Decode recovers the version 7 UUID from a facade under the bound key.
func (c Codec) Decode(id UUID) (UUID, error) {
	if !c.set {
		return Nil, ErrNoKey
	}
	return Decode(id, c.key)
}

// EncodeString parses a canonical v7 UUID string and returns its facade
// in canonical form. The key is checked before the text is parsed.
func (c Codec) EncodeString(s string) (string, error) {
	if !c.set {
		return "", ErrNoKey
	}
	id, err := Parse(s)
	if err != nil {
		return "", err
	}
	out, err := Encode(id, c.key)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// DecodeString parses a canonical facade string and returns the original
// v7 UUID in canonical form.
func (c Codec) DecodeString(s string) (string, error) {
	if !c.set {
		return "", ErrNoKey
	}
	id, err := Parse(s)
	if err != nil {
		return "", err
	}
	out, err := Decode(id, c.key)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
