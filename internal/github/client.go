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
	"math/rand"
	"net/http"
	"time"

	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"
)

// RetryConfig defines the retry behavior for general API calls
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// githubClient implements the Client interface using go-github
type githubClient struct {
	client       *github.Client
	retryConfig  *RetryConfig
	logger       *zap.Logger
	pollAttempts int
	pollDelay    time.Duration
}

// Option customizes client construction
type Option func(*githubClient)

// WithLogger sets the logger used for diagnostic output
func WithLogger(logger *zap.Logger) Option {
	return func(c *githubClient) {
		c.logger = logger
	}
}

// WithRetryConfig overrides the default retry behavior
func WithRetryConfig(cfg *RetryConfig) Option {
	return func(c *githubClient) {
		c.retryConfig = cfg
	}
}

// WithBaseURL points the client at a different API endpoint. Used for GitHub
// Enterprise and for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *githubClient) {
		c.client.BaseURL, _ = c.client.BaseURL.Parse(baseURL)
	}
}

// WithTransport installs a custom HTTP transport, e.g. a GitHub App
// installation transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *githubClient) {
		c.client = github.NewClient(&http.Client{Transport: rt})
	}
}

// NewClient creates a new GitHub client with the provided token
func NewClient(token string, opts ...Option) (Client, error) {
	var ghClient *github.Client
	if token != "" {
		ghClient = github.NewClient(nil).WithAuthToken(token)
	} else {
		ghClient = github.NewClient(nil)
	}

	c := &githubClient{
		client: ghClient,
		retryConfig: &RetryConfig{
			MaxRetries:     3,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     30 * time.Second,
			BackoffFactor:  2.0,
		},
		logger:       zap.NewNop(),
		pollAttempts: mergeablePollAttempts,
		pollDelay:    mergeablePollDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GetPullRequest retrieves metadata about a pull request with a single fetch.
// Callers that need converged mergeability should use
// GetPullRequestWithMergeablePolling instead.
func (c *githubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	pr, err := c.fetchPullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}
	return pr, nil
}

// fetchPullRequest performs exactly one API call. The mergeable-state poller
// depends on the one-call-per-attempt contract.
func (c *githubClient) fetchPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}
	return c.convertPullRequest(pr), nil
}

// executeWithRetry executes an operation with exponential backoff retry
func (c *githubClient) executeWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		// Check if context is cancelled before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()

		// Success
		if lastErr == nil {
			return nil
		}

		// Check if error is retryable
		if !IsTransient(lastErr) {
			return lastErr
		}

		// Don't retry if we've exhausted attempts
		if attempt == c.retryConfig.MaxRetries {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Debug("retrying GitHub API call",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(lastErr))

		// Wait with context cancellation support
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", c.retryConfig.MaxRetries, lastErr)
}

// calculateBackoff calculates the backoff duration for a retry attempt
func (c *githubClient) calculateBackoff(attempt int) time.Duration {
	// Exponential backoff with jitter
	multiplier := 1 << uint(attempt) // 2^attempt
	base := float64(c.retryConfig.InitialBackoff) * float64(multiplier)

	// Add jitter (±20%)
	jitter := (rand.Float64() * 0.4) - 0.2 // -0.2 to +0.2
	backoff := time.Duration(base * (1 + jitter))

	// Cap at max backoff
	if backoff > c.retryConfig.MaxBackoff {
		backoff = c.retryConfig.MaxBackoff
	}

	return backoff
}

// convertPullRequest converts a GitHub PR to our domain model
func (c *githubClient) convertPullRequest(pr *github.PullRequest) *PullRequest {
	if pr == nil {
		return nil
	}

	result := &PullRequest{
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Description:    pr.GetBody(),
		State:          pr.GetState(),
		Merged:         pr.GetMerged(),
		Draft:          pr.GetDraft(),
		Mergeable:      pr.Mergeable,
		MergeableState: pr.GetMergeableState(),
		CreatedAt:      pr.GetCreatedAt().Time,
		UpdatedAt:      pr.GetUpdatedAt().Time,
	}

	if pr.Head != nil {
		result.HeadSHA = pr.Head.GetSHA()
		result.HeadBranch = pr.Head.GetRef()
	}

	if pr.Base != nil {
		result.BaseBranch = pr.Base.GetRef()
	}

	if pr.User != nil {
		result.Author = pr.User.GetLogin()
	}

	// Convert labels
	for _, label := range pr.Labels {
		if label != nil {
			result.Labels = append(result.Labels, label.GetName())
		}
	}

	return result
}
