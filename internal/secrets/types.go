package secrets

import (
	"errors"
	"path/filepath"
	"time"

	"mauicli/internal/configdir"
)

// GitHubToken is the entry holding the token used for artifact discovery
const GitHubToken = "github-token"

var (
	// ErrNotFound is returned when no entry exists under a name
	ErrNotFound = errors.New("secret not found")
	// ErrInvalidName is returned for names that could escape the store directory
	ErrInvalidName = errors.New("invalid secret name")
)

// Index tracks stored entry metadata
type Index struct {
	Entries []Entry `json:"entries"`
}

// Entry is the metadata of one stored secret
type Entry struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Config locates the store on disk
type Config struct {
	Dir            string
	PassphraseFile string
}

// DefaultConfig places the store under <MAUI_HOME>/secrets
func DefaultConfig() Config {
	return ConfigFor(configdir.SecretsDir())
}

// ConfigFor places the store and its passphrase in dir
func ConfigFor(dir string) Config {
	return Config{
		Dir:            dir,
		PassphraseFile: filepath.Join(dir, ".passphrase"),
	}
}
