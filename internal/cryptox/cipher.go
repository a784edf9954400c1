// Package cryptox implements the field-level cipher applied to secret-bearing
// vault data before it leaves the process, plus the one-way hashing used when
// a local-auth secret is set up.
//
// The cipher key is static and compiled into the client. That makes the
// envelope obfuscation against casual inspection of stored data, not
// confidentiality against anyone holding the client binary. The scheme is kept
// as-is for compatibility with already-stored ciphertext; a per-user,
// server-derived key would be the real fix.
package cryptox

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/antonkosov/vaultgate/internal/common"
	"github.com/antonkosov/vaultgate/internal/logging"
	"golang.org/x/crypto/argon2"
)

// fieldKey is the static pre-shared key. 32 bytes selects AES-256.
var fieldKey = []byte{
	0x5a, 0x1f, 0x8c, 0x42, 0xd3, 0x07, 0x6e, 0xb9,
	0x2d, 0xc4, 0x91, 0x0a, 0x77, 0xe5, 0x3b, 0x88,
	0x16, 0xaf, 0x60, 0xf2, 0x4c, 0x9d, 0x25, 0xe1,
	0x7b, 0x38, 0xd6, 0x09, 0xb4, 0x52, 0xcf, 0x63,
}

const nonceSize = 12

// hashSalt is the fixed application salt for setup-path secret hashing.
// The server stores the resulting digest verbatim and compares against it.
var hashSalt = []byte("vaultgate.method.v1")

// FieldCipher encrypts and decrypts JSON-serializable values.
// The zero value is not usable; construct with NewFieldCipher.
type FieldCipher struct {
	key []byte
	log logging.Logger
}

// NewFieldCipher returns a cipher bound to the built-in application key.
func NewFieldCipher(log logging.Logger) *FieldCipher {
	return NewFieldCipherWithKey(fieldKey, log)
}

// NewFieldCipherWithKey returns a cipher using the given AES key
// (16, 24, or 32 bytes). Intended for tests.
func NewFieldCipherWithKey(key []byte, log logging.Logger) *FieldCipher {
	return &FieldCipher{key: key, log: log}
}

// Encrypt serializes v to JSON, encrypts it with AES-GCM under the cipher key,
// and returns a self-contained base64 string (nonce prepended to ciphertext).
func (c *FieldCipher) Encrypt(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialization error: %w", err)
	}

	nonce := common.GenerateRandByteArray(nonceSize)

	aesgcm, err := c.aead()
	if err != nil {
		return "", err
	}

	sealed := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt is the inverse of Encrypt. On any failure (malformed input, wrong
// key, tampering) it logs a warning and returns an empty object, never an
// error: callers render lists from the result and must not crash on a bad row.
//
// JSON type coercions apply: numbers come back as float64.
func (c *FieldCipher) Decrypt(ciphertext string) any {
	v, err := c.decrypt(ciphertext)
	if err != nil {
		if c.log != nil {
			c.log.Warn(context.Background(), "field decryption failed", "error", err)
		}
		return map[string]any{}
	}
	return v
}

// DecryptInto decrypts ciphertext and unmarshals the result into v.
// Unlike Decrypt it reports failures, for callers that need to distinguish
// a bad row from an empty one.
func (c *FieldCipher) DecryptInto(ciphertext string, v any) error {
	raw, err := c.open(ciphertext)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (c *FieldCipher) decrypt(ciphertext string) (any, error) {
	raw, err := c.open(ciphertext)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("deserialization error: %w", err)
	}
	return v, nil
}

func (c *FieldCipher) open(ciphertext string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("malformed envelope: too short")
	}

	aesgcm, err := c.aead()
	if err != nil {
		return nil, err
	}

	plaintext, err := aesgcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("decryption error: %w", err)
	}
	return plaintext, nil
}

func (c *FieldCipher) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// HashSecret derives the one-way digest of a local-auth secret (PIN digits,
// password text, serialized pattern path, or a security-question answer) that
// the setup path sends instead of the raw value. Deterministic for a given
// input so the server can compare stored digests.
func HashSecret(secret []byte) string {
	digest := argon2.IDKey(secret, hashSalt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(digest)
}
