// ABOUTME: Default in-memory settings store
// ABOUTME: Used when no persistent store is wired in
package sink

import "sync"

type memorySettings struct {
	mu       sync.Mutex
	values   map[string]int
	defaults map[string]int
}

func newMemorySettings() *memorySettings {
	return &memorySettings{
		values:   make(map[string]int),
		defaults: make(map[string]int),
	}
}

func memKey(section, key string) string { return section + "." + key }

func (m *memorySettings) GetInt(section, key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(section, key)
	if v, ok := m.values[k]; ok {
		return v
	}
	return m.defaults[k]
}

func (m *memorySettings) SetInt(section, key string, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[memKey(section, key)] = value
}

func (m *memorySettings) SetDefault(section, key string, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults[memKey(section, key)] = value
}
