package uuid47

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Compile-time interface checks for Key
var (
	_ fmt.Stringer             = Key{}
	_ encoding.TextUnmarshaler = (*Key)(nil)
)

// Key is the 128-bit secret for the facade transform, held as two
// order-significant 64-bit halves. Swapping the halves yields a different
// key. The same key must be used to decode a facade that was used to
// encode it; decoding with a different key silently produces a wrong but
// well-formed UUID.
//
// Key deliberately implements TextUnmarshaler but not TextMarshaler, so
// structs carrying one can be loaded from config without the secret
// round-tripping back out through encoders.
type Key struct {
	K0 uint64
	K1 uint64
}

// keyInfo is the HKDF domain-separation label. Changing it changes every
// key DeriveKey produces.
const keyInfo = "uuid47 facade key v1"

// GenerateKey returns a fresh random key from crypto/rand.
func GenerateKey() (Key, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return Key{}, fmt.Errorf("uuid47: generate key: %w", err)
	}
	k, _ := KeyFromBytes(b[:])
	return k, nil
}

// KeyFromBytes builds a key from exactly 16 bytes: K0 from the first
// eight big-endian, K1 from the last eight.
func KeyFromBytes(b []byte) (Key, error) {
	if len(b) != 16 {
		return Key{}, fmt.Errorf("uuid47: key must be exactly 16 bytes, got %d", len(b))
	}
	return Key{
		K0: binary.BigEndian.Uint64(b[:8]),
		K1: binary.BigEndian.Uint64(b[8:]),
	}, nil
}

// ParseKey parses the 32-hex-character form produced by Hex: the K0 half
// first, then K1, both big-endian. Either case is accepted.
func ParseKey(s string) (Key, error) {
	if len(s) != 32 {
		return Key{}, fmt.Errorf("uuid47: key must be exactly 32 hex characters, got %d", len(s))
	}
	var b [16]byte
	if _, err := hex.Decode(b[:], []byte(s)); err != nil {
		return Key{}, fmt.Errorf("uuid47: invalid key: %v", err)
	}
	k, _ := KeyFromBytes(b[:])
	return k, nil
}

// DeriveKey derives a key from secret material via HKDF-SHA256 with a
// fixed domain-separation label. The same secret and salt always yield
// the same key, so services can share a facade key by sharing a
// passphrase instead of shipping raw key bytes. salt may be nil.
func DeriveKey(secret, salt []byte) (Key, error) {
	r := hkdf.New(sha256.New, secret, salt, []byte(keyInfo))
	var b [16]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Key{}, fmt.Errorf("uuid47: derive key: %w", err)
	}
	k, _ := KeyFromBytes(b[:])
	return k, nil
}

// Hex returns the 32-character lowercase hex form accepted by ParseKey.
// It exposes the secret; log k.String() instead.
func (k Key) Hex() string {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], k.K0)
	binary.BigEndian.PutUint64(b[8:], k.K1)
	return hex.EncodeToString(b[:])
}

// IsZero reports whether both halves are zero. The zero key is a valid
// key for the transform, but a zero value usually means no key was
// configured.
func (k Key) IsZero() bool {
	return k == Key{}
}

// String returns a redacted placeholder so keys embedded in structs do
// not leak through %v logging.
func (k Key) String() string {
	return "uuid47.Key(redacted)"
}

// UnmarshalText implements encoding.TextUnmarshaler via ParseKey.
func (k *Key) UnmarshalText(b []byte) error {
	parsed, err := ParseKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
