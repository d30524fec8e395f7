// Package cipher wraps symmetric encryption for the Security Toolbox. Text is
// encrypted with AES-256-GCM under a key derived from the passphrase with
// PBKDF2-SHA256. The ciphertext is a self-contained base64 envelope bundling
// the salt, nonce, and encrypted payload, so decryption needs only the
// envelope and the passphrase.
package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	nonceSize  = 12
	keySize    = 32
	iterations = 10000
)

// ErrDecryptFailed is returned when the passphrase is wrong or the
// ciphertext envelope is malformed or tampered with.
var ErrDecryptFailed = errors.New("incorrect key or corrupted data")

// Encrypt encrypts plaintext under the passphrase and returns the base64
// envelope (salt, nonce, and ciphertext bundled).
func Encrypt(plaintext, passphrase string) (string, error) {
	if plaintext == "" || passphrase == "" {
		return "", errors.New("text and passphrase are required")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return "", err
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)

	envelope := make([]byte, 0, saltSize+nonceSize+len(sealed))
	envelope = append(envelope, salt...)
	envelope = append(envelope, nonce...)
	envelope = append(envelope, sealed...)

	return base64.StdEncoding.EncodeToString(envelope), nil
}

// Decrypt opens a ciphertext envelope with the passphrase and returns the
// original plaintext. A wrong passphrase or a malformed envelope yields
// ErrDecryptFailed, never a panic and never garbage plaintext.
func Decrypt(ciphertext, passphrase string) (string, error) {
	if ciphertext == "" || passphrase == "" {
		return "", errors.New("ciphertext and passphrase are required")
	}

	envelope, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryptFailed
	}

	if len(envelope) < saltSize+nonceSize+1 {
		return "", ErrDecryptFailed
	}

	salt := envelope[:saltSize]
	nonce := envelope[saltSize : saltSize+nonceSize]
	sealed := envelope[saltSize+nonceSize:]

	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return "", ErrDecryptFailed
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

// newAEAD derives the AES-256 key from the passphrase and salt and builds
// the GCM cipher.
func newAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aead, nil
}
