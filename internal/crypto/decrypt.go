package crypto

import (
	"encoding/base64"
	"errors"
)

// ErrInvalidCiphertext is returned for values that were not sealed by this key or were tampered with
var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// Open reverses Seal
func (s *Sealer) Open(sealed string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}

	if len(data) < nonceLen+s.aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}

	plaintext, err := s.aead.Open(nil, data[:nonceLen], data[nonceLen:], nil)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}

	return plaintext, nil
}
