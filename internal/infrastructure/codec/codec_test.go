package codec

import (
	"errors"
	"strings"
	"testing"
)

func newTestCodec(t *testing.T, secret string) *FieldCodec {
	t.Helper()
	c, err := New([]byte(secret))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestRoundTrip_SensitiveFields(t *testing.T) {
	c := newTestCodec(t, "0123456789abcdef0123456789abcdef")

	fields := []string{
		"123123123",          // account number
		"123456",             // pin
		"Peter John",         // name
		"Arceo",              // last name
		"Bayombong, Nueva V", // address
		"5000000",            // balance
		"5010000.50",
		"",
		"ñ ü 漢字",
	}
	for _, f := range fields {
		enc := c.Encode(f)
		if f != "" && strings.Contains(enc, f) {
			t.Fatalf("ciphertext leaks plaintext %q: %q", f, enc)
		}
		got, err := c.Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%q): %v", f, err)
		}
		if got != f {
			t.Fatalf("round trip: got %q want %q", got, f)
		}
	}
}

func TestEncode_Deterministic(t *testing.T) {
	c := newTestCodec(t, "0123456789abcdef0123456789abcdef")
	if a, b := c.Encode("123123123"), c.Encode("123123123"); a != b {
		t.Fatalf("same plaintext encoded differently: %q vs %q", a, b)
	}
	if a, b := c.Encode("123123123"), c.Encode("123123124"); a == b {
		t.Fatalf("different plaintexts encoded equally")
	}
}

func TestDecode_WrongKey(t *testing.T) {
	a := newTestCodec(t, "0123456789abcdef0123456789abcdef")
	b := newTestCodec(t, "fedcba9876543210fedcba9876543210")

	if _, err := b.Decode(a.Encode("123456")); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("want ErrCorrupt, got %v", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	c := newTestCodec(t, "0123456789abcdef0123456789abcdef")
	good := c.Encode("5000000")

	// flip one char in the body
	b := []byte(good)
	if b[len(b)-5] == 'A' {
		b[len(b)-5] = 'B'
	} else {
		b[len(b)-5] = 'A'
	}

	tests := []struct {
		name string
		in   string
	}{
		{"not base64", "***"},
		{"too short", "AAAA"},
		{"tampered", string(b)},
		{"plaintext", "123123123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Decode(tt.in); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("want ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestNew_ShortSecret(t *testing.T) {
	if _, err := New([]byte("short")); err == nil {
		t.Fatal("want error for short secret")
	}
}
