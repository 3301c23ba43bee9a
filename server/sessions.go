// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/poiesic/energuide/agent"
)

// AgentFactory builds a fresh agent for a new session.
type AgentFactory func() (*agent.Agent, error)

// SessionStore maps session ids to agents. Entries expire ttl after their
// last use.
type SessionStore struct {
	mu      sync.Mutex
	cache   *cache.Cache
	factory AgentFactory
}

// NewSessionStore creates a store whose sessions expire after ttl; expired
// entries are purged every cleanupInterval.
func NewSessionStore(factory AgentFactory, ttl, cleanupInterval time.Duration) (*SessionStore, error) {
	if factory == nil {
		return nil, ErrFactoryRequired
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	return &SessionStore{
		cache:   cache.New(ttl, cleanupInterval),
		factory: factory,
	}, nil
}

// Get returns the agent of a live session and refreshes its expiry.
func (s *SessionStore) Get(id string) (*agent.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *SessionStore) getLocked(id string) (*agent.Agent, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	item, found := s.cache.Get(id)
	if !found {
		return nil, ErrSessionNotFound
	}
	a, ok := item.(*agent.Agent)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.cache.Set(id, a, cache.DefaultExpiration)
	return a, nil
}

// GetOrCreate returns the agent for id. An empty or unknown id starts a new
// session; the returned id is the one to use from now on.
func (s *SessionStore) GetOrCreate(id string) (string, *agent.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, err := s.getLocked(id); err == nil {
		return id, a, nil
	}

	a, err := s.factory()
	if err != nil {
		return "", nil, fmt.Errorf("creating agent: %w", err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	s.cache.Set(id, a, cache.DefaultExpiration)
	return id, a, nil
}

// Delete ends a session.
func (s *SessionStore) Delete(id string) {
	s.cache.Delete(id)
}

// Count returns the number of live sessions, expired ones included until
// the next cleanup.
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}

// NewAgent builds an agent outside any session.
func (s *SessionStore) NewAgent() (*agent.Agent, error) {
	return s.factory()
}
