package codec

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var ErrCorrupt = errors.New("codec: malformed or forged ciphertext")

const (
	minSecretLen = 16
	hkdfInfo     = "atm-ledger/field-codec/v1"
)

var enc = base64.RawURLEncoding

// Codec is the reversible transform applied to sensitive columns.
type Codec interface {
	Encode(plaintext string) string
	Decode(ciphertext string) (string, error)
}

// FieldCodec is a deterministic XChaCha20-Poly1305 codec: the nonce is an
// HMAC of the plaintext, so equal plaintexts encode to equal ciphertexts and
// encoded columns stay usable in WHERE clauses.
type FieldCodec struct {
	aead   cipher.AEAD
	macKey []byte
}

var _ Codec = (*FieldCodec)(nil)

func New(secret []byte) (*FieldCodec, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("codec: secret must be at least %d bytes", minSecretLen)
	}
	kdf := hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo))

	encKey := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(kdf, encKey); err != nil {
		return nil, fmt.Errorf("codec: derive key: %w", err)
	}
	macKey := make([]byte, sha256.Size)
	if _, err := io.ReadFull(kdf, macKey); err != nil {
		return nil, fmt.Errorf("codec: derive mac key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(encKey)
	if err != nil {
		return nil, err
	}
	return &FieldCodec{aead: aead, macKey: macKey}, nil
}

func (c *FieldCodec) nonce(plaintext []byte) []byte {
	m := hmac.New(sha256.New, c.macKey)
	m.Write(plaintext)
	return m.Sum(nil)[:chacha20poly1305.NonceSizeX]
}

func (c *FieldCodec) Encode(plaintext string) string {
	pt := []byte(plaintext)
	n := c.nonce(pt)

	out := make([]byte, 0, len(n)+len(pt)+c.aead.Overhead())
	out = append(out, n...)
	out = c.aead.Seal(out, n, pt, nil)
	return enc.EncodeToString(out)
}

func (c *FieldCodec) Decode(ciphertext string) (string, error) {
	raw, err := enc.DecodeString(ciphertext)
	if err != nil {
		return "", ErrCorrupt
	}
	if len(raw) < chacha20poly1305.NonceSizeX+c.aead.Overhead() {
		return "", ErrCorrupt
	}
	n, body := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	pt, err := c.aead.Open(nil, n, body, nil)
	if err != nil {
		return "", ErrCorrupt
	}
	// nonce must be the one Encode would have derived
	if !hmac.Equal(n, c.nonce(pt)) {
		return "", ErrCorrupt
	}
	return string(pt), nil
}
