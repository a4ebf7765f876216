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
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/terragonlabs/gatewayz/internal/github"
)

// Scheduler periodically refreshes the mergeable state of every tracked pull
// request. Refreshes run sequentially within a pass; a failing PR records its
// error and the pass continues.
type Scheduler struct {
	store    *Store
	client   github.Client
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a refresh scheduler.
//
// Parameters:
//   - store: registry of tracked pull requests
//   - client: GitHub client used for mergeability polling
//   - interval: duration between refresh passes (e.g. time.Minute)
//   - logger: destination for refresh diagnostics; nil means no logging
func NewScheduler(store *Store, client github.Client, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		store:    store,
		client:   client,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the refresh loop, running until the context is canceled.
// Returns nil on graceful shutdown.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("starting PR refresh scheduler", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping PR refresh scheduler")
			return nil
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// refresh performs a single pass over all tracked pull requests
func (s *Scheduler) refresh(ctx context.Context) {
	for _, entry := range s.store.List() {
		if ctx.Err() != nil {
			return
		}

		key := entry.Key
		pr, err := s.client.GetPullRequestWithMergeablePolling(ctx, key.Owner, key.Repo, key.Number)
		if err != nil {
			s.store.setError(key, err)
			s.logger.Warn("failed to refresh pull request",
				zap.String("repo", key.Owner+"/"+key.Repo),
				zap.Int("number", key.Number),
				zap.Error(err))
			continue
		}

		s.store.setSnapshot(key, pr)

		// Closed PRs drop out of the working set on their next refresh
		if pr.State == "closed" {
			s.store.Untrack(key)
			s.logger.Info("untracked closed pull request",
				zap.String("repo", key.Owner+"/"+key.Repo),
				zap.Int("number", key.Number))
		}
	}
}
