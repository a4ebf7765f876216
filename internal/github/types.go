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
	"time"
)

// Client interface defines the contract for interacting with GitHub API
type Client interface {
	// GetPullRequest retrieves metadata about a pull request with a single fetch
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)
	// GetPullRequestWithMergeablePolling retrieves a pull request, polling until
	// GitHub has finished computing its mergeability or attempts are exhausted
	GetPullRequestWithMergeablePolling(ctx context.Context, owner, repo string, number int) (*PullRequest, error)
	// GetPRFeedback aggregates reviews and comments left on a pull request
	GetPRFeedback(ctx context.Context, owner, repo string, number int) (*Feedback, error)
}

// PullRequest represents GitHub pull request metadata
type PullRequest struct {
	Number      int
	Title       string
	Description string
	HeadSHA     string
	BaseBranch  string
	HeadBranch  string
	Author      string
	State       string // open, closed
	Merged      bool
	Draft       bool
	// Mergeable is GitHub's asynchronously computed merge flag. It is nil while
	// the computation is still pending (typically right after a push).
	Mergeable *bool
	// MergeableState is empty while pending, otherwise one of
	// clean, dirty, blocked, unstable, behind, unknown.
	MergeableState string
	Labels         []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MergeableKnown reports whether GitHub has finished computing mergeability
// for this snapshot.
func (pr *PullRequest) MergeableKnown() bool {
	return pr.Mergeable != nil || pr.MergeableState != ""
}

// Feedback aggregates all human feedback left on a pull request: formal
// reviews, inline review comments, and conversation (issue) comments.
type Feedback struct {
	Reviews  []*Review
	Comments []*Comment
}

// Review represents a formal pull request review
type Review struct {
	Author      string
	State       string // APPROVED, CHANGES_REQUESTED, COMMENTED, DISMISSED
	Body        string
	SubmittedAt time.Time
}

// CommentSource identifies where a comment was left
type CommentSource string

const (
	// CommentSourceReview marks an inline review comment attached to a diff line
	CommentSourceReview CommentSource = "review"
	// CommentSourceIssue marks a comment on the PR conversation thread
	CommentSourceIssue CommentSource = "issue"
)

// Comment represents a single comment left on a pull request
type Comment struct {
	Source    CommentSource
	Author    string
	Body      string
	Path      string // empty for conversation comments
	Line      int    // zero for conversation comments
	CreatedAt time.Time
}
