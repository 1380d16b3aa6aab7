// Package crypto seals sensitive employee fields such as bank account numbers.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrInvalidKey        = errors.New("encryption key must be 32 bytes, hex or base64 encoded")
	ErrMalformedCipher   = errors.New("ciphertext is too short")
	ErrDecryptionFailure = errors.New("failed to decrypt value")
)

// Cipher encrypts with XChaCha20-Poly1305. Output is nonce || ciphertext.
type Cipher struct {
	aead cipher.AEAD
}

// ParseKey decodes a 32-byte key given as hex or standard base64.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if key, err := hex.DecodeString(s); err == nil && len(key) == chacha20poly1305.KeySize {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == chacha20poly1305.KeySize {
		return key, nil
	}
	return nil, ErrInvalidKey
}

func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKey
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *Cipher) Decrypt(data []byte) ([]byte, error) {
	if len(data) < c.aead.NonceSize()+c.aead.Overhead() {
		return nil, ErrMalformedCipher
	}
	nonce, sealed := data[:c.aead.NonceSize()], data[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailure
	}
	return plain, nil
}

func (c *Cipher) EncryptString(s string) ([]byte, error) {
	return c.Encrypt([]byte(s))
}

func (c *Cipher) DecryptString(data []byte) (string, error) {
	plain, err := c.Decrypt(data)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Mask keeps the last visible characters of s and replaces the rest with X.
func Mask(s string, visible int) string {
	if visible < 0 {
		visible = 0
	}
	r := []rune(s)
	if len(r) <= visible {
		return s
	}
	return strings.Repeat("X", len(r)-visible) + string(r[len(r)-visible:])
}
