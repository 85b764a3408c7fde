package qkd

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// Sealer provides AES-256-GCM sealing of clinical content with a session key.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer creates a Sealer with the given 32-byte key, typically the
// sifted key of a Session.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("sealer: key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("sealer: create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("sealer: create GCM: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal encrypts the plaintext and returns a base64-encoded ciphertext with
// the nonce prepended. The output never equals the plaintext.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("seal: generate nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, so the result is nonce + ciphertext.
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decodes the base64 ciphertext, extracts the prepended nonce, and
// decrypts the remainder.
func (s *Sealer) Open(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("open: base64 decode: %w", err)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("open: ciphertext too short")
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	return string(plaintext), nil
}
