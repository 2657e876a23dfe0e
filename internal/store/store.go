package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/config"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/logging"
)

const (
	// credentialsFile is the namespaced slot filename, kept separate from
	// config.yaml so a credential wipe never touches other settings.
	credentialsFile = "wifi-credentials.yaml"

	// MaxFieldLen is the maximum byte length of the identity and secret
	// fields (802.11 SSIDs are at most 32 bytes, WPA2 passphrases 63;
	// 64 leaves headroom for both).
	MaxFieldLen = 64
)

// Record is the single network identity/secret pair the device knows.
// A record with an empty identity is treated as absent.
type Record struct {
	Identity string `yaml:"identity"`
	Secret   string `yaml:"secret"`
}

// StoreError reports a persistence failure. The device keeps operating on
// whatever credentials were last successfully loaded.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("credential store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store persists a single credential record in a namespaced file.
// Writes go through a temp file and rename, so a concurrent Load never
// observes a half-written record.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store backed by the given file path. An empty path uses the
// OS-appropriate config directory.
func New(path string) (*Store, error) {
	if path == "" {
		dir, err := config.GetConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve store location: %w", err)
		}
		path = filepath.Join(dir, credentialsFile)
	}
	return &Store{path: path}, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored record and true, or a zero record and false when
// the slot is absent. A read or parse error is treated as absent rather than
// surfaced: the caller cannot do anything about a corrupt slot except
// reprovision, which is exactly what "absent" triggers.
func (s *Store) Load() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Credential slot unreadable, treating as absent",
				zap.String("path", s.path), zap.Error(err))
		}
		return Record{}, false
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		logging.Warn("Credential slot corrupt, treating as absent",
			zap.String("path", s.path), zap.Error(err))
		return Record{}, false
	}

	if rec.Identity == "" {
		return Record{}, false
	}
	return rec, true
}

// Save overwrites the slot with the given identity and secret. Both fields
// are trimmed of leading/trailing whitespace before storing. Callers that
// depend on the write for correctness should re-Load to confirm.
func (s *Store) Save(identity, secret string) error {
	identity = strings.TrimSpace(identity)
	secret = strings.TrimSpace(secret)

	if len(identity) > MaxFieldLen {
		return &StoreError{Op: "save", Err: fmt.Errorf("identity exceeds %d bytes", MaxFieldLen)}
	}
	if len(secret) > MaxFieldLen {
		return &StoreError{Op: "save", Err: fmt.Errorf("secret exceeds %d bytes", MaxFieldLen)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return &StoreError{Op: "save", Err: err}
	}

	data, err := yaml.Marshal(Record{Identity: identity, Secret: secret})
	if err != nil {
		return &StoreError{Op: "save", Err: err}
	}

	// Write to a temp file first, then rename into place (atomic write).
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return &StoreError{Op: "save", Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return &StoreError{Op: "save", Err: err}
	}

	logging.Info("Credentials saved", zap.String("identity", identity))
	return nil
}

// Clear erases the slot. A subsequent Load reports absent.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return &StoreError{Op: "clear", Err: err}
	}

	logging.Info("Credentials cleared")
	return nil
}
