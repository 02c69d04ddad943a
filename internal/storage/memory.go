package storage

import (
	"context"
	"sync"
)

type Memory struct {
	mutex sync.RWMutex
	data  map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string][]byte),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return valueCopy, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data[key] = valueCopy

	return nil
}
