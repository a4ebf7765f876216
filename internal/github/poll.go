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

package github

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// mergeablePollAttempts bounds the total number of fetches per poll.
	mergeablePollAttempts = 5
	// mergeablePollDelay is the fixed wait between attempts. GitHub usually
	// finishes the merge computation well within the 2.5s total budget, so a
	// fixed delay beats exponential backoff here.
	mergeablePollDelay = 500 * time.Millisecond
)

// GetPullRequestWithMergeablePolling fetches a pull request, retrying until
// GitHub has finished computing its mergeability or attempts run out.
//
// GitHub computes mergeable/mergeable_state asynchronously after a PR's head
// changes; the response right after a push may report both as unset. Each
// attempt is a fresh fetch. An unconverged snapshot triggers a fixed delay and
// another attempt. A transient fetch failure does the same; a terminal failure
// aborts immediately.
//
// Once attempts are exhausted, the last successful snapshot is returned even
// if it never converged. Only if no fetch ever succeeded is the last error
// returned.
func (c *githubClient) GetPullRequestWithMergeablePolling(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	var (
		lastPR  *PullRequest
		lastErr error
	)

	for attempt := 1; attempt <= c.pollAttempts; attempt++ {
		pr, err := c.fetchPullRequest(ctx, owner, repo, number)
		if err != nil {
			if !IsTransient(err) {
				return nil, fmt.Errorf("failed to get pull request: %w", err)
			}
			lastErr = err
			c.logger.Debug("transient error fetching pull request",
				zap.String("repo", owner+"/"+repo),
				zap.Int("number", number),
				zap.Int("attempt", attempt),
				zap.Error(err))
		} else {
			lastPR = pr
			if pr.MergeableKnown() {
				return pr, nil
			}
		}

		if attempt == c.pollAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollDelay):
		}
	}

	// Attempts exhausted. Prefer data over failure: an unconverged snapshot is
	// still useful to callers.
	if lastPR != nil {
		return lastPR, nil
	}
	return nil, fmt.Errorf("failed to get pull request after %d attempts: %w", c.pollAttempts, lastErr)
}
