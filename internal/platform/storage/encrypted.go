package storage

import (
	"context"
	"fmt"
)

// Cipher seals stored values; *crypto.Service implements it.
type Cipher interface {
	Configured() bool
	Encrypt(plain []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// Encrypted seals values at rest with AES-GCM when a key is configured.
type Encrypted struct {
	Adapter
	cipher Cipher
}

func NewEncrypted(adapter Adapter, cipher Cipher) Adapter {
	if cipher == nil || !cipher.Configured() {
		return adapter
	}
	return &Encrypted{Adapter: adapter, cipher: cipher}
}

func (e *Encrypted) Get(ctx context.Context, key string) ([]byte, bool, error) {
	sealed, found, err := e.Adapter.Get(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}
	plain, err := e.cipher.Decrypt(sealed)
	if err != nil {
		return nil, false, fmt.Errorf("decrypt %s: %w", key, err)
	}
	return plain, true, nil
}

func (e *Encrypted) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := e.cipher.Encrypt(value)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", key, err)
	}
	return e.Adapter.Set(ctx, key, sealed)
}
