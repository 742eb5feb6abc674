package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed is returned by Open when the input was not produced by the matching Seal.
var ErrMalformed = errors.New("malformed sealed value")

// Sealer protects short values that travel through untrusted storage such as cookies.
type Sealer interface {
	Seal(plaintext []byte) (string, error)
	Open(sealed string) ([]byte, error)
}

const (
	// Versioned prefix to allow future key/algorithm rotations.
	sealedPrefixV1 = "v1."
	plainPrefix    = "plain."
)

// AESGCMSealer implements Sealer using AES-256-GCM. The purpose string is bound as
// additional data, so a value sealed for one purpose does not open under another.
type AESGCMSealer struct {
	aead    cipher.AEAD
	purpose []byte
}

// NewAESGCMSealer constructs a sealer. Key must be 32 bytes (AES-256).
func NewAESGCMSealer(key []byte, purpose string) (*AESGCMSealer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return &AESGCMSealer{aead: aead, purpose: []byte(purpose)}, nil
}

// Seal encrypts plaintext under a random nonce and returns a URL-safe versioned string.
func (s *AESGCMSealer) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	// nonce||ciphertext
	out := s.aead.Seal(nonce, nonce, plaintext, s.purpose)
	return sealedPrefixV1 + base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Any tampering, key mismatch or purpose mismatch yields ErrMalformed.
func (s *AESGCMSealer) Open(sealed string) ([]byte, error) {
	body, ok := strings.CutPrefix(sealed, sealedPrefixV1)
	if !ok {
		return nil, fmt.Errorf("%w: unknown version", ErrMalformed)
	}
	data, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	n := s.aead.NonceSize()
	if len(data) < n+s.aead.Overhead() {
		return nil, fmt.Errorf("%w: too short", ErrMalformed)
	}
	pt, err := s.aead.Open(nil, data[:n], data[n:], s.purpose)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return pt, nil
}

// PlainSealer only encodes; it is for development when no key is configured.
type PlainSealer struct{}

func (PlainSealer) Seal(plaintext []byte) (string, error) {
	return plainPrefix + base64.RawURLEncoding.EncodeToString(plaintext), nil
}

func (PlainSealer) Open(sealed string) ([]byte, error) {
	body, ok := strings.CutPrefix(sealed, plainPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: not a plain value", ErrMalformed)
	}
	pt, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return pt, nil
}

// DeriveKey turns configured key material into a 32-byte AES key.
// A 64-character hex string is used as-is; anything else is hashed with SHA-256.
func DeriveKey(material string) []byte {
	if decoded, err := hex.DecodeString(material); err == nil && len(decoded) == 32 {
		return decoded
	}
	sum := sha256.Sum256([]byte(material))
	return sum[:]
}
