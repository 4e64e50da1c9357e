// internal/config/secrets.go
package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/99designs/keyring"
)

const (
	serviceName   = "ezlite"
	masterKeyName = "__master_key__"
)

// KeySource yields the key used to encrypt stored connection passwords
type KeySource func() ([]byte, error)

// KeyringMasterKey reads the master key from the system keyring, generating
// and storing a new one on first use.
func KeyringMasterKey() ([]byte, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	item, err := ring.Get(masterKeyName)
	if err == nil {
		return hex.DecodeString(string(item.Data))
	}
	if !errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, err
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	if err := ring.Set(keyring.Item{
		Key:   masterKeyName,
		Label: "ezlite master key",
		Data:  []byte(hex.EncodeToString(key)),
	}); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt encrypts a string using AES-GCM, nonce prepended, hex encoded
func Encrypt(plainText string, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	return hex.EncodeToString(gcm.Seal(nonce, nonce, []byte(plainText), nil)), nil
}

// Decrypt reverses Encrypt
func Decrypt(cipherTextHex string, key []byte) (string, error) {
	cipherText, err := hex.DecodeString(cipherTextHex)
	if err != nil {
		return "", err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(cipherText) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	plainText, err := gcm.Open(nil, cipherText[:nonceSize], cipherText[nonceSize:], nil)
	if err != nil {
		return "", err
	}
	return string(plainText), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
