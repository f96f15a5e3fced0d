package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Preference keys, shared with the browser widget's local storage.
const (
	KeyProvider  = "provider"
	KeyLanguage  = "selectedLanguage"
	KeyAuthToken = "authToken"
	KeySessionID = "chat_session_id"
)

const (
	DefaultProvider = "groq"
	DefaultLanguage = "en"
)

// Store is a flat string key-value store.
type Store interface {
	Get(key string) string
	Set(key, value string) error
	Delete(key string) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// FileStore keeps preferences in a JSON object and rewrites the file on
// every change.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse preferences %s: %w", path, err)
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	return s, nil
}

func (s *FileStore) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flushLocked()
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

func (s *FileStore) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create preferences dir: %w", err)
	}
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	// The auth token lives here, so keep the file private.
	return os.WriteFile(s.path, append(data, '\n'), 0600)
}

// Preferences gives typed access to the stored keys.
type Preferences struct {
	store Store
}

func NewPreferences(store Store) *Preferences {
	return &Preferences{store: store}
}

func (p *Preferences) Provider() string {
	if v := p.store.Get(KeyProvider); v != "" {
		return v
	}
	return DefaultProvider
}

func (p *Preferences) SetProvider(provider string) error {
	return p.store.Set(KeyProvider, provider)
}

func (p *Preferences) Language() string {
	if v := p.store.Get(KeyLanguage); v != "" {
		return v
	}
	return DefaultLanguage
}

func (p *Preferences) SetLanguage(lang string) error {
	return p.store.Set(KeyLanguage, lang)
}

func (p *Preferences) AuthToken() string {
	return p.store.Get(KeyAuthToken)
}

func (p *Preferences) SetAuthToken(token string) error {
	return p.store.Set(KeyAuthToken, token)
}

func (p *Preferences) SessionID() string {
	return p.store.Get(KeySessionID)
}

func (p *Preferences) SetSessionID(id string) error {
	return p.store.Set(KeySessionID, id)
}

func (p *Preferences) ClearSession() error {
	return p.store.Delete(KeySessionID)
}

// Logout forgets the token and the session it owned.
func (p *Preferences) Logout() error {
	if err := p.store.Delete(KeyAuthToken); err != nil {
		return err
	}
	return p.store.Delete(KeySessionID)
}
