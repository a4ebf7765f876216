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

// Package github provides the GitHub API integration for GatewayZ.
//
// This package implements a client for fetching pull request metadata and
// aggregating PR feedback, with retry behavior tuned for GitHub's quirks.
//
// Key features:
//   - Fetch pull request details (title, author, SHA, branches, labels)
//   - Poll for mergeable-state convergence after a push
//   - Aggregate reviews, inline comments, and conversation comments
//   - Closed, typed classification of transient vs terminal failures
//   - Retry logic with exponential backoff for paginated list calls
//
// Mergeable-State Polling:
//
// GitHub computes a pull request's mergeable and mergeable_state fields
// asynchronously after the head changes. A fetch made immediately after a
// push may report both as unset. GetPullRequestWithMergeablePolling retries
// the fetch up to 5 times with a fixed 500ms delay until the computation has
// converged, then returns the snapshot. Polling with a short fixed backoff is
// GitHub's documented mitigation for this.
//
// Error Classification:
//
// Failures are classified once, at the client boundary, into a closed set
// (see Classify):
//   - 5xx responses and OS-level connection failures are transient and retried
//   - everything else, including 404, is terminal and propagates immediately
//
// Example usage:
//
//	client, err := github.NewClient(token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pr, err := client.GetPullRequestWithMergeablePolling(ctx, "owner", "repo", 123)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if pr.MergeableKnown() {
//	    fmt.Printf("PR #%d: mergeable_state=%s\n", pr.Number, pr.MergeableState)
//	}
//
//	feedback, err := client.GetPRFeedback(ctx, "owner", "repo", 123)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d reviews, %d comments\n", len(feedback.Reviews), len(feedback.Comments))
//
// Authentication:
//
// The client accepts a personal access token, or any custom transport via
// WithTransport (e.g. a GitHub App installation transport from the githubapp
// package). An empty token produces an unauthenticated client, which is rate
// limited to 60 requests per hour.
package github
