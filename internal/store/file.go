package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const stateFile = "state.json"

// state is the on-disk shape. Pointer fields keep "never recorded" distinct
// from a stored zero.
type state struct {
	DeviceID            string `json:"device_id"`
	Token               string `json:"token,omitempty"`
	FirstLoginMillis    *int64 `json:"first_login_ms,omitempty"`
	LastReportedVersion string `json:"last_reported_app_version,omitempty"`
}

// FileStore keeps client state in a JSON file under the state directory.
// Writes go through a temp file and rename so a crash never leaves a
// half-written state behind.
type FileStore struct {
	mu    sync.Mutex
	path  string
	state state
}

// Open loads the store from dir, creating the directory, the state file and
// a fresh device identity on first use.
func Open(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	fs := &FileStore{path: filepath.Join(dir, stateFile)}

	data, err := os.ReadFile(fs.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &fs.state); err != nil {
			return nil, fmt.Errorf("failed to parse state file %s: %w", fs.path, err)
		}
	case os.IsNotExist(err):
		// first run, start empty
	default:
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if fs.state.DeviceID == "" {
		fs.state.DeviceID = newDeviceID()
		if err := fs.save(); err != nil {
			return nil, err
		}
	}

	return fs, nil
}

// save must be called with mu held (or before the store is shared).
func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(fs.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

func (fs *FileStore) DeviceID() (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.state.DeviceID, nil
}

func (fs *FileStore) Token() (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.state.Token, nil
}

func (fs *FileStore) SetToken(token string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.state.Token = token
	return fs.save()
}

func (fs *FileStore) ClearToken() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.state.Token = ""
	return fs.save()
}

func (fs *FileStore) FirstLogin() (int64, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.state.FirstLoginMillis == nil {
		return 0, false, nil
	}
	return *fs.state.FirstLoginMillis, true, nil
}

func (fs *FileStore) SetFirstLogin(millis int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.state.FirstLoginMillis = &millis
	return fs.save()
}

func (fs *FileStore) LastReportedVersion() (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.state.LastReportedVersion, fs.state.LastReportedVersion != "", nil
}

func (fs *FileStore) SetLastReportedVersion(version string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.state.LastReportedVersion = version
	return fs.save()
}

// Path returns the location of the backing state file.
func (fs *FileStore) Path() string {
	return fs.path
}
