package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for the cookie key.
	// Derived once at startup, so N stays well below what a wallet file would use.
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12
)

// Sealer encrypts short values (bearer tokens) for storage on the client side
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives an AES-256-GCM key from secret and salt.
// An empty secret yields a random key, so sealed values do not survive a restart.
// secret must be []byte for security (caller should zero it after use)
func NewSealer(secret, salt []byte) (*Sealer, error) {
	var key []byte
	if len(secret) == 0 {
		key = make([]byte, scryptKeyLen)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, fmt.Errorf("failed to generate key: %w", err)
		}
	} else {
		if len(salt) == 0 {
			return nil, errors.New("salt is required with a secret")
		}
		var err error
		key, err = scrypt.Key(secret, salt, scryptN, scryptR, scryptP, scryptKeyLen)
		if err != nil {
			return nil, fmt.Errorf("failed to derive key: %w", err)
		}
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Sealer{aead: aesGCM}, nil
}

// NewSalt returns saltLen random bytes
func NewSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Seal encrypts plaintext and returns base64url(nonce || ciphertext)
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, nonceLen, nonceLen+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}
