// ABOUTME: Durable credential storage keyed per principal kind
// ABOUTME: File keyring writes a TOML table per slot under the config dir

package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// ErrNoCredential is returned when no credential is persisted for a kind
var ErrNoCredential = errors.New("no persisted credential")

// Keyring stores one credential per principal kind. Entries are independent:
// deleting one kind's credential never touches the other's. Implementations
// must be safe for concurrent use; the gateway bootstraps both slots at once.
type Keyring interface {
	Load(kind Kind) (string, error)
	Store(kind Kind, credential string) error
	Delete(kind Kind) error
}

// credentialFile is the on-disk TOML shape, one table per slot
type credentialFile struct {
	Institution credentialEntry `toml:"institution"`
	User        credentialEntry `toml:"user"`
}

type credentialEntry struct {
	Token string `toml:"token"`
}

// FileKeyring persists credentials to a TOML file (0600). The mutex serializes
// the read-modify-write cycle so one kind's update cannot resurrect the other
// kind's just-deleted entry.
type FileKeyring struct {
	mu   sync.Mutex
	path string
}

// NewFileKeyring creates a keyring at the given path. Parent directories are
// created on first write.
func NewFileKeyring(path string) *FileKeyring {
	return &FileKeyring{path: path}
}

// DefaultKeyringPath resolves the credential file location.
// Priority: XDG_CONFIG_HOME/registrar/credentials.toml > ~/.config/registrar/credentials.toml
func DefaultKeyringPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "registrar", "credentials.toml"), nil
}

// Load reads the credential for a kind, returning ErrNoCredential when absent
func (k *FileKeyring) Load(kind Kind) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	file, err := k.read()
	if err != nil {
		return "", err
	}

	token := file.entry(kind).Token
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

// Store writes the credential for a kind, preserving the other kind's entry
func (k *FileKeyring) Store(kind Kind, credential string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	file, err := k.read()
	if err != nil {
		return err
	}

	file.entry(kind).Token = credential
	return k.write(file)
}

// Delete clears the credential for a kind, preserving the other kind's entry
func (k *FileKeyring) Delete(kind Kind) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	file, err := k.read()
	if err != nil {
		return err
	}

	file.entry(kind).Token = ""
	return k.write(file)
}

func (k *FileKeyring) read() (*credentialFile, error) {
	var file credentialFile

	data, err := os.ReadFile(k.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &file, nil
		}
		return nil, fmt.Errorf("reading credential file: %w", err)
	}

	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing credential file: %w", err)
	}
	return &file, nil
}

func (k *FileKeyring) write(file *credentialFile) error {
	if err := os.MkdirAll(filepath.Dir(k.path), 0700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}

	f, err := os.OpenFile(k.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening credential file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(file); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	return nil
}

func (f *credentialFile) entry(kind Kind) *credentialEntry {
	if kind == KindInstitution {
		return &f.Institution
	}
	return &f.User
}

// MemoryKeyring is an in-memory keyring for tests
type MemoryKeyring struct {
	mu      sync.Mutex
	entries map[Kind]string
}

// NewMemoryKeyring creates an empty in-memory keyring
func NewMemoryKeyring() *MemoryKeyring {
	return &MemoryKeyring{entries: make(map[Kind]string)}
}

// Load returns the stored credential or ErrNoCredential
func (k *MemoryKeyring) Load(kind Kind) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	token, ok := k.entries[kind]
	if !ok || token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

// Store saves the credential for a kind
func (k *MemoryKeyring) Store(kind Kind, credential string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.entries[kind] = credential
	return nil
}

// Delete removes the credential for a kind
func (k *MemoryKeyring) Delete(kind Kind) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	delete(k.entries, kind)
	return nil
}
