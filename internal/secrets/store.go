package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mauicli/internal/fsutil"
	"mauicli/internal/logging"
)

const indexFile = "index.json"

// Store keeps secretbox-sealed values, one file per name, plus a plaintext
// index of names and update times.
type Store struct {
	config Config
	key    *[KeySize]byte
	logger *logging.Logger
	now    func() time.Time
}

// NewStore opens the store, creating its directory and passphrase on first use
func NewStore(config Config, logger *logging.Logger) (*Store, error) {
	if err := fsutil.EnsureDir(config.Dir); err != nil {
		return nil, fmt.Errorf("failed to create secrets directory: %w", err)
	}

	passphrase, err := loadOrGeneratePassphrase(config.PassphraseFile, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load passphrase: %w", err)
	}

	key := DeriveKey(passphrase)
	return &Store{
		config: config,
		key:    &key,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Set seals and stores value under name, replacing any previous value
func (s *Store) Set(name string, value []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	sealed, err := Seal(value, s.key)
	if err != nil {
		return fmt.Errorf("encryption failed: %w", err)
	}
	if err := fsutil.AtomicWriteFile(path, sealed, fsutil.DefaultFilePermissions, s.logger); err != nil {
		return fmt.Errorf("failed to write secret: %w", err)
	}

	if err := s.touch(name); err != nil {
		s.logger.Warn("secrets.index.update_failed", "Failed to update secrets index", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
	}

	s.logger.Info("secrets.stored", "Secret stored", map[string]interface{}{
		"name": name,
	})
	return nil
}

// Get returns the value stored under name, or ErrNotFound
func (s *Store) Get(name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	sealed, err := os.ReadFile(path) // #nosec G304 -- name is validated and joined to the store dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	if err := verifyPermissions(path); err != nil {
		s.logger.Warn("secrets.permissions.warning", "Secret file permissions should be 600", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	value, err := Open(sealed, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to open secret %s: %w", name, err)
	}

	s.logger.Debug("secrets.retrieved", "Secret retrieved", map[string]interface{}{
		"name": name,
	})
	return value, nil
}

// Delete removes name, or returns ErrNotFound
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	if err := s.forget(name); err != nil {
		s.logger.Warn("secrets.index.remove_failed", "Failed to remove from secrets index", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
	}

	s.logger.Info("secrets.deleted", "Secret deleted", map[string]interface{}{
		"name": name,
	})
	return nil
}

// Lookup returns the index entry for name
func (s *Store) Lookup(name string) (Entry, bool) {
	index, err := s.loadIndex()
	if err != nil {
		return Entry{}, false
	}
	for _, e := range index.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// List returns stored names in order
func (s *Store) List() ([]string, error) {
	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(index.Entries))
	for i, e := range index.Entries {
		names[i] = e.Name
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.config.Dir, name+".enc"), nil
}

func verifyPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if perm := info.Mode().Perm(); perm != fsutil.DefaultFilePermissions {
		return fmt.Errorf("file has permissions %o, expected %o", perm, fsutil.DefaultFilePermissions)
	}
	return nil
}

func (s *Store) touch(name string) error {
	index, err := s.loadIndex()
	if err != nil {
		index = &Index{}
	}

	now := s.now()
	found := false
	for i := range index.Entries {
		if index.Entries[i].Name == name {
			index.Entries[i].UpdatedAt = now
			found = true
			break
		}
	}
	if !found {
		index.Entries = append(index.Entries, Entry{Name: name, UpdatedAt: now})
	}
	return s.saveIndex(index)
}

func (s *Store) forget(name string) error {
	index, err := s.loadIndex()
	if err != nil {
		return err
	}

	kept := index.Entries[:0]
	for _, e := range index.Entries {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	index.Entries = kept
	return s.saveIndex(index)
}

func (s *Store) loadIndex() (*Index, error) {
	data, err := os.ReadFile(filepath.Join(s.config.Dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &Index{}, nil
		}
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}
	return &index, nil
}

func (s *Store) saveIndex(index *Index) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	return fsutil.AtomicWriteFile(filepath.Join(s.config.Dir, indexFile), data, fsutil.DefaultFilePermissions, s.logger)
}

func loadOrGeneratePassphrase(path string, logger *logging.Logger) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the store config
	if err == nil {
		return strings.TrimSpace(string(data)), nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read passphrase file: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	passphrase := hex.EncodeToString(raw)

	if err := fsutil.AtomicWriteFile(path, []byte(passphrase), fsutil.DefaultFilePermissions, logger); err != nil {
		return "", fmt.Errorf("failed to write passphrase: %w", err)
	}
	logger.Info("secrets.passphrase.created", "Generated store passphrase", map[string]interface{}{
		"path": path,
	})
	return passphrase, nil
}
