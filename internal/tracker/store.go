// MIT License
//
// Copyright (c) 2025 Terragon Labs
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/terragonlabs/gatewayz/internal/github"
)

// Key identifies a tracked pull request
type Key struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Number int    `json:"number"`
}

// Entry is the tracked state of one pull request
type Entry struct {
	Key Key `json:"key"`
	// Snapshot is the most recent fetched state, nil until the first refresh
	Snapshot *github.PullRequest `json:"snapshot,omitempty"`
	// RefreshedAt is when Snapshot was last updated
	RefreshedAt time.Time `json:"refreshed_at,omitempty"`
	// LastError holds the most recent refresh failure, cleared on success
	LastError string `json:"last_error,omitempty"`
	// TrackedAt is when the PR was enrolled
	TrackedAt time.Time `json:"tracked_at"`
}

// Store is an in-memory registry of tracked pull requests. Safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		entries: make(map[Key]*Entry),
	}
}

// Track enrolls a pull request. Re-tracking an already tracked PR keeps its
// existing snapshot.
func (s *Store) Track(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		return
	}
	s.entries[key] = &Entry{
		Key:       key,
		TrackedAt: time.Now(),
	}
}

// Untrack removes a pull request. Unknown keys are a no-op.
func (s *Store) Untrack(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Get returns a copy of the entry for key, and whether it is tracked
func (s *Store) Get(key Key) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// List returns copies of all entries, ordered by owner/repo/number
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		if a.Repo != b.Repo {
			return a.Repo < b.Repo
		}
		return a.Number < b.Number
	})
	return out
}

// Len returns the number of tracked pull requests
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// setSnapshot records a successful refresh. Entries untracked mid-refresh are
// not resurrected.
func (s *Store) setSnapshot(key Key, pr *github.PullRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return
	}
	entry.Snapshot = pr
	entry.RefreshedAt = time.Now()
	entry.LastError = ""
}

// setError records a failed refresh, keeping the previous snapshot
func (s *Store) setError(key Key, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return
	}
	entry.LastError = err.Error()
}
