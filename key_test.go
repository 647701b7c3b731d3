package uuid47

import (
	"fmt"
	"strings"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two generated keys are identical")
	}
	if a.IsZero() {
		t.Error("generated key is zero")
	}
}

func TestKeyHexRoundTrip(t *testing.T) {
	k := Key{K0: 0x0123456789abcdef, K1: 0xfedcba9876543210}

	h := k.Hex()
	if h != "0123456789abcdeffedcba9876543210" {
		t.Fatalf("Hex() = %q", h)
	}

	parsed, err := ParseKey(h)
	if err != nil {
		t.Fatal(err)
	}
	if parsed != k {
		t.Errorf("ParseKey(Hex()) = %+v, want %+v", parsed, k)
	}

	// Uppercase input parses to the same key
	upper, err := ParseKey(strings.ToUpper(h))
	if err != nil {
		t.Fatal(err)
	}
	if upper != k {
		t.Errorf("uppercase ParseKey = %+v, want %+v", upper, k)
	}
}

func TestParseKeyInvalid(t *testing.T) {
	inputs := []string{
		"",
		"0123",
		"0123456789abcdeffedcba987654321",   // 31 chars
		"0123456789abcdeffedcba98765432100", // 33 chars
		"0123456789abcdeffedcba987654321g",  // bad hex
		"0123456789abcdef-fedcba9876543210", // separator
	}
	for _, s := range inputs {
		if k, err := ParseKey(s); err == nil {
			t.Errorf("ParseKey(%q) = %+v, want error", s, k)
		}
	}
}

func TestKeyFromBytes(t *testing.T) {
	b := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef, 0xfe, 0xdc, 0xba, 0x98, 0x76, 0x54, 0x32, 0x10}
	k, err := KeyFromBytes(b)
	if err != nil {
		t.Fatal(err)
	}
	want := Key{K0: 0x0123456789abcdef, K1: 0xfedcba9876543210}
	if k != want {
		t.Errorf("KeyFromBytes = %+v, want %+v", k, want)
	}

	for _, n := range []int{0, 8, 15, 17, 32} {
		if _, err := KeyFromBytes(make([]byte, n)); err == nil {
			t.Errorf("KeyFromBytes with %d bytes: want error", n)
		}
	}
}

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		salt   string
		want   Key
	}{
		{"NoSalt", "correct horse battery staple", "", Key{K0: 0xb54b37a56416a7e8, K1: 0x5896c42b1964b743}},
		{"Salted", "correct horse battery staple", "pepper", Key{K0: 0xf20cd0344c259c09, K1: 0xbecf59ad38c60bf0}},
		{"OtherSecret", "swordfish", "", Key{K0: 0x17b577b213c42395, K1: 0x7de57a566987f9f8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var salt []byte
			if tt.salt != "" {
				salt = []byte(tt.salt)
			}
			got, err := DeriveKey([]byte(tt.secret), salt)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("DeriveKey = {%#x %#x}, want {%#x %#x}", got.K0, got.K1, tt.want.K0, tt.want.K1)
			}

			// Derivation is deterministic
			again, err := DeriveKey([]byte(tt.secret), salt)
			if err != nil {
				t.Fatal(err)
			}
			if again != got {
				t.Error("DeriveKey is not deterministic")
			}
		})
	}
}

func TestKeyStringRedacts(t *testing.T) {
	k := Key{K0: 0x0123456789abcdef, K1: 0xfedcba9876543210}

	for _, s := range []string{k.String(), fmt.Sprintf("%v", k), fmt.Sprint(k)} {
		if strings.Contains(s, "0123456789abcdef") || strings.Contains(s, "123456789abcdef") {
			t.Errorf("key material leaked: %q", s)
		}
	}
	if k.String() != "uuid47.Key(redacted)" {
		t.Errorf("String() = %q", k.String())
	}
}

func TestKeyUnmarshalText(t *testing.T) {
	var k Key
	if err := k.UnmarshalText([]byte("0123456789abcdeffedcba9876543210")); err != nil {
		t.Fatal(err)
	}
	want := Key{K0: 0x0123456789abcdef, K1: 0xfedcba9876543210}
	if k != want {
		t.Errorf("UnmarshalText = %+v, want %+v", k, want)
	}

	if err := k.UnmarshalText([]byte("nope")); err == nil {
		t.Error("UnmarshalText(invalid): want error")
	}
}

func TestKeyIsZero(t *testing.T) {
	if !(Key{}).IsZero() {
		t.Error("zero Key.IsZero() = false")
	}
	if (Key{K0: 1}).IsZero() || (Key{K1: 1}).IsZero() {
		t.Error("non-zero Key.IsZero() = true")
	}
}
