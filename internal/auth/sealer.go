package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

// sealedPrefix marks values produced by Seal. Tokens stored before sealing
// was introduced have no prefix and are returned by Open unchanged.
const sealedPrefix = "v1:"

const nonceSize = 24

// Sealer encrypts GitHub access tokens before they are written to the store.
//
// NaCl secretbox (XSalsa20 + Poly1305) gives authenticated encryption: Open
// fails if a single byte of the sealed value was changed. The 32-byte key is
// derived from the session secret with HKDF-SHA256, so deployments configure
// one secret rather than two.
//
// Sealed format: "v1:" + base64url(nonce[24] || box)
type Sealer struct {
	key [32]byte
}

func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("auth: sealer secret must not be empty")
	}
	var s Sealer
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("collabhub access-token sealing"))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("auth: deriving sealing key: %w", err)
	}
	return &s, nil
}

// Seal encrypts plaintext under a fresh random nonce.
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("auth: generating nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(box), nil
}

// Open reverses Seal. Values without the prefix pass through as-is.
func (s *Sealer) Open(value string) (string, error) {
	encoded, ok := strings.CutPrefix(value, sealedPrefix)
	if !ok {
		return value, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("auth: decoding sealed token: %w", err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.New("auth: sealed token too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("auth: sealed token failed authentication")
	}
	return string(plaintext), nil
}
