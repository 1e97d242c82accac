package account

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

// A Cipher seals and opens stored credentials. The nonce is generated per
// message and prefixed to the ciphertext.
type Cipher struct {
	key [keySize]byte
}

// NewCipher creates a cipher from a base64 encoded 32 byte key.
func NewCipher(encodedKey string) (*Cipher, error) {
	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, errors.Wrap(err, "decode key")
	}
	if len(raw) != keySize {
		return nil, errors.Errorf("key must be %d bytes, got %d", keySize, len(raw))
	}
	c := &Cipher{}
	copy(c.key[:], raw)
	return c, nil
}

// GenerateKey returns a new random key in the encoding NewCipher accepts.
func GenerateKey() (string, error) {
	raw := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", errors.Wrap(err, "generate key")
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Encrypt seals a message.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "generate nonce")
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &c.key), nil
}

// Decrypt opens a sealed message.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])
	plain, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, &c.key)
	if !ok {
		return nil, errors.New("open sealed message")
	}
	return plain, nil
}

// EncryptCredentials seals an access key pair.
func (c *Cipher) EncryptCredentials(creds Credentials) ([]byte, error) {
	j, err := json.Marshal(creds)
	if err != nil {
		return nil, errors.Wrap(err, "marshal credentials")
	}
	return c.Encrypt(j)
}

// DecryptCredentials opens a sealed access key pair.
func (c *Cipher) DecryptCredentials(data []byte) (*Credentials, error) {
	plain, err := c.Decrypt(data)
	if err != nil {
		return nil, err
	}
	var creds Credentials
	if err := json.Unmarshal(plain, &creds); err != nil {
		return nil, errors.Wrap(err, "unmarshal credentials")
	}
	return &creds, nil
}
