// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrKeyNotFound indicates a store miss.
var ErrKeyNotFound = errors.New("pipeline: key not found")

// Store is the run-scoped key/value state shared by phases of a run and
// read back for audit and replay. Keys are namespaced by run ID.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Close() error
}

// MemoryStore is the in-process Store backing, used by tests and
// single-shot CLI runs where persistence across restarts is not needed.
//
// Thread Safety:
//
//	Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	expires map[string]time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:    make(map[string][]byte),
		expires: make(map[string]time.Time),
	}
}

// Get returns the value for key, honoring any expiry set on it.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	value, ok := s.data[key]
	deadline, hasDeadline := s.expires[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrKeyNotFound
	}
	if hasDeadline && time.Now().After(deadline) {
		s.mu.Lock()
		delete(s.data, key)
		delete(s.expires, key)
		s.mu.Unlock()
		return nil, ErrKeyNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a value, clearing any previous expiry.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = stored
	delete(s.expires, key)
	return nil
}

// Expire sets a TTL after which the key reads as missing.
func (s *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return ErrKeyNotFound
	}
	s.expires[key] = time.Now().Add(ttl)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
