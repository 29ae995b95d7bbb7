package store

import "sync"

// MemStore is an in-memory Store for tests and embedding.
type MemStore struct {
	mu           sync.Mutex
	deviceID     string
	token        string
	firstLogin   int64
	hasFirst     bool
	lastReported string
	hasReported  bool
}

// NewMemStore returns a MemStore with a fresh device identity.
func NewMemStore() *MemStore {
	return &MemStore{deviceID: newDeviceID()}
}

func (m *MemStore) DeviceID() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deviceID, nil
}

func (m *MemStore) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemStore) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemStore) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *MemStore) FirstLogin() (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.firstLogin, m.hasFirst, nil
}

func (m *MemStore) SetFirstLogin(millis int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.firstLogin = millis
	m.hasFirst = true
	return nil
}

func (m *MemStore) LastReportedVersion() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReported, m.hasReported, nil
}

func (m *MemStore) SetLastReportedVersion(version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReported = version
	m.hasReported = true
	return nil
}
