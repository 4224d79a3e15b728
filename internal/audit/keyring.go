package audit

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
)

const keyFileName = "key.bin"

// Keyring owns the single symmetric key protecting the audit log. The key is
// generated lazily on first use, persisted next to the log file, and reloaded
// on every subsequent start. There is no rotation: losing the key file makes
// prior entries permanently unreadable, which is the accepted tradeoff.
//
// Two processes racing to create the key file on first boot can clobber each
// other; the system is expected to run as a single instance at first boot.
type Keyring struct {
	dir    string
	cipher *Cipher
}

// OpenKeyring ensures dir exists, then loads the key file or generates a new
// 32-byte random key and writes it with owner-only permissions.
func OpenKeyring(dir string) (*Keyring, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audit: create log directory: %w", err)
	}

	keyPath := filepath.Join(dir, keyFileName)
	key, err := os.ReadFile(keyPath)
	if os.IsNotExist(err) {
		key = make([]byte, keySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("audit: generate key: %w", err)
		}
		if err := os.WriteFile(keyPath, key, 0o600); err != nil {
			return nil, fmt.Errorf("audit: write key file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("audit: read key file: %w", err)
	}

	cipher, err := NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("audit: key file %s: %w", keyPath, err)
	}
	return &Keyring{dir: dir, cipher: cipher}, nil
}

// Cipher returns the cipher bound to the persisted key.
func (k *Keyring) Cipher() *Cipher { return k.cipher }

// Dir returns the directory holding the key and log files.
func (k *Keyring) Dir() string { return k.dir }
