// Package fieldcipher provides symmetric, key-rotation-aware encryption for
// individual attribute values. A Cipher is constructed once from the
// configured keyring and passed to whoever needs it; there is no package
// singleton.
//
// The keyring is an ordered list of 32-byte keys. The first key encrypts all
// new values; decryption tries each key in order, so rotating keys is a
// config change, not a bulk re-encryption migration.
package fieldcipher

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrDecryption is returned when no key in the ring can open a ciphertext.
// Callers must propagate it: coercing it into an empty string would be
// indistinguishable from "field was never set". UI layers may render a
// redacted placeholder, but the error always reaches the logs.
var ErrDecryption = errors.New("fieldcipher: decryption failed")

// ErrNoKeys is returned by New when the keyring is empty or malformed.
var ErrNoKeys = errors.New("fieldcipher: no usable encryption keys configured")

// selfCheckSentinel is round-tripped at startup to fail fast on a
// misconfigured keyring instead of surfacing when a user opens a record.
const selfCheckSentinel = "fieldcipher self-check \x00 ✓"

// Cipher encrypts and decrypts attribute values against a fixed keyring.
// Immutable after construction and safe for concurrent use.
type Cipher struct {
	aeads []cipher.AEAD
}

// New builds a Cipher from a comma-separated list of base64-encoded 32-byte
// keys, first key primary. Returns ErrNoKeys when the list is empty and a
// descriptive error for any malformed key.
func New(keyring string) (*Cipher, error) {
	c := &Cipher{}
	for i, part := range strings.Split(keyring, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, err := base64.StdEncoding.DecodeString(part)
		if err != nil {
			return nil, fmt.Errorf("fieldcipher: key %d is not valid base64: %w", i, err)
		}
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("fieldcipher: key %d is %d bytes, want %d", i, len(key), chacha20poly1305.KeySize)
		}
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, fmt.Errorf("fieldcipher: key %d: %w", i, err)
		}
		c.aeads = append(c.aeads, aead)
	}
	if len(c.aeads) == 0 {
		return nil, ErrNoKeys
	}
	return c, nil
}

// Encrypt seals plaintext under the primary key. The empty string encrypts
// to the empty ciphertext, so "no value" costs no nonce and stays
// distinguishable from an encrypted empty-ish value.
func (c *Cipher) Encrypt(plaintext string) ([]byte, error) {
	if plaintext == "" {
		return []byte{}, nil
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("fieldcipher: nonce: %w", err)
	}
	return c.aeads[0].Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens a ciphertext produced by Encrypt, trying each key in ring
// order. The empty ciphertext decrypts to the empty string.
func (c *Cipher) Decrypt(ciphertext []byte) (string, error) {
	if len(ciphertext) == 0 {
		return "", nil
	}
	if len(ciphertext) < chacha20poly1305.NonceSizeX {
		return "", ErrDecryption
	}
	nonce, sealed := ciphertext[:chacha20poly1305.NonceSizeX], ciphertext[chacha20poly1305.NonceSizeX:]
	for _, aead := range c.aeads {
		plaintext, err := aead.Open(nil, nonce, sealed, nil)
		if err == nil {
			return string(plaintext), nil
		}
	}
	return "", ErrDecryption
}

// SelfCheck round-trips a sentinel value through the primary key. Call it at
// startup and treat failure as fatal.
func (c *Cipher) SelfCheck() error {
	sealed, err := c.Encrypt(selfCheckSentinel)
	if err != nil {
		return fmt.Errorf("fieldcipher: self-check encrypt: %w", err)
	}
	opened, err := c.Decrypt(sealed)
	if err != nil {
		return fmt.Errorf("fieldcipher: self-check decrypt: %w", err)
	}
	if opened != selfCheckSentinel {
		return errors.New("fieldcipher: self-check round trip mismatch")
	}
	return nil
}
