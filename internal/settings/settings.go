// ABOUTME: Persisted integer settings backed by viper
// ABOUTME: Stores the sink volume and buffer size between runs
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sync"

	"github.com/spf13/viper"
)

// Store persists sectioned integer settings to a YAML file. A store
// opened without a path keeps everything in memory.
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// Open loads the settings file at path, creating the store empty when
// the file does not exist yet.
func Open(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	return &Store{v: v, path: path}, nil
}

// NewMemory returns a store that never touches disk.
func NewMemory() *Store {
	return &Store{v: viper.New()}
}

func settingKey(section, key string) string {
	return section + "." + key
}

// GetInt returns the stored value, or the registered default when the
// key has never been set.
func (s *Store) GetInt(section, key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetInt(settingKey(section, key))
}

// SetInt stores the value and persists the file when the store has a
// backing path.
func (s *Store) SetInt(section, key string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(settingKey(section, key), value)
	if s.path == "" {
		return
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		log.Printf("cannot persist settings to %s: %v", s.path, err)
	}
}

// SetDefault registers a fallback value used when no stored value exists.
func (s *Store) SetDefault(section, key string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.SetDefault(settingKey(section, key), value)
}
