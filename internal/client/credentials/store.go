package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrijs2005/worklog/internal/client/models"
	"github.com/dmitrijs2005/worklog/internal/common"
	"github.com/dmitrijs2005/worklog/internal/cryptox"
	"github.com/dmitrijs2005/worklog/internal/filex"
)

// FileName is the document name inside the user data directory.
const FileName = "users.json"

// Store is the credential persistence surface used by the auth service.
type Store interface {
	Load(ctx context.Context) (map[string]models.CredentialRecord, error)
	Save(ctx context.Context, records map[string]models.CredentialRecord) error
	Create(ctx context.Context, username string, password []byte) (models.CredentialRecord, error)
	Verify(ctx context.Context, username string, password []byte) (bool, error)
}

// record is the on-disk shape of one credential.
type record struct {
	Salt  string `json:"salt"`
	Hash  string `json:"hash"`
	Iters int    `json:"iters"`
}

// FileStore keeps credentials in a single JSON file.
type FileStore struct {
	path   string
	hasher *cryptox.Hasher
	mu     sync.Mutex
}

// NewFileStore returns a store backed by path. The file and its directory
// are created on first Save.
func NewFileStore(path string, hasher *cryptox.Hasher) *FileStore {
	return &FileStore{path: path, hasher: hasher}
}

// DefaultPath returns users.json inside the per-user data directory.
func DefaultPath() (string, error) {
	dir, err := filex.UserDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads every record. A missing file yields an empty map; a file that
// cannot be parsed yields common.ErrCredentialCorrupt.
func (s *FileStore) Load(ctx context.Context) (map[string]models.CredentialRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]models.CredentialRecord{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	raw := map[string]record{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrCredentialCorrupt, s.path, err)
		}
	}

	out := make(map[string]models.CredentialRecord, len(raw))
	for name, r := range raw {
		d, err := cryptox.DecodeDigest(r.Salt, r.Hash, r.Iters)
		if err != nil {
			return nil, fmt.Errorf("user %q: %w", name, err)
		}
		out[name] = models.CredentialRecord{Username: name, Salt: d.Salt, Hash: d.Hash, Iterations: d.Iterations}
	}
	return out, nil
}

// Save writes records as the full document, replacing the previous file
// atomically. Keys are written in sorted order.
func (s *FileStore) Save(ctx context.Context, records map[string]models.CredentialRecord) error {
	raw := make(map[string]record, len(records))
	for name, r := range records {
		salt, hash := cryptox.EncodeDigest(cryptox.Digest{Salt: r.Salt, Hash: r.Hash, Iterations: r.Iterations})
		raw[name] = record{Salt: salt, Hash: hash, Iters: r.Iterations}
	}

	// encoding/json sorts map keys, so identical input yields identical bytes
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	data = append(data, '\n')

	if err := filex.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Create derives a digest for password and stores it under the trimmed
// username. It fails with common.ErrDuplicateUser if the name is taken and
// with common.ErrEmptyField if it is blank.
func (s *FileStore) Create(ctx context.Context, username string, password []byte) (models.CredentialRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.CredentialRecord{}, common.ErrEmptyField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.Load(ctx)
	if err != nil {
		return models.CredentialRecord{}, err
	}
	if _, ok := records[username]; ok {
		return models.CredentialRecord{}, fmt.Errorf("%w: %q", common.ErrDuplicateUser, username)
	}

	d, err := s.hasher.Derive(password)
	if err != nil {
		return models.CredentialRecord{}, err
	}

	rec := models.CredentialRecord{Username: username, Salt: d.Salt, Hash: d.Hash, Iterations: d.Iterations}
	records[username] = rec

	if err := s.Save(ctx, records); err != nil {
		return models.CredentialRecord{}, err
	}
	return rec, nil
}

// Verify checks password against the stored record for username. It fails
// with common.ErrUnknownUser if there is no such record.
func (s *FileStore) Verify(ctx context.Context, username string, password []byte) (bool, error) {
	username = strings.TrimSpace(username)

	records, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	rec, ok := records[username]
	if !ok {
		return false, common.ErrUnknownUser
	}

	return s.hasher.Verify(password, cryptox.Digest{Salt: rec.Salt, Hash: rec.Hash, Iterations: rec.Iterations}), nil
}
