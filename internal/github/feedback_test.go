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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestGetPRFeedback tests feedback aggregation across reviews and comments
func TestGetPRFeedback(t *testing.T) {
	reviewsBody := `[
		{"user":{"login":"alice"},"state":"CHANGES_REQUESTED","body":"needs work","submitted_at":"2025-03-01T10:00:00Z"},
		{"user":{"login":"bob"},"state":"APPROVED","body":"lgtm","submitted_at":"2025-03-02T09:00:00Z"}
	]`
	reviewCommentsBody := `[
		{"user":{"login":"alice"},"body":"rename this","path":"internal/github/poll.go","line":42,"created_at":"2025-03-01T10:05:00Z"}
	]`
	issueCommentsBody := `[
		{"user":{"login":"carol"},"body":"any update?","created_at":"2025-03-01T08:00:00Z"},
		{"user":{"login":"bob"},"body":"shipping today","created_at":"2025-03-02T11:00:00Z"}
	]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/pulls/7/reviews"):
			fmt.Fprint(w, reviewsBody)
		case strings.HasSuffix(r.URL.Path, "/pulls/7/comments"):
			fmt.Fprint(w, reviewCommentsBody)
		case strings.HasSuffix(r.URL.Path, "/issues/7/comments"):
			fmt.Fprint(w, issueCommentsBody)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newPollingClient(server.URL)

	feedback, err := client.GetPRFeedback(context.Background(), "terragonlabs", "gatewayz", 7)
	if err != nil {
		t.Fatalf("GetPRFeedback() unexpected error: %v", err)
	}

	if len(feedback.Reviews) != 2 {
		t.Fatalf("got %d reviews, want 2", len(feedback.Reviews))
	}
	if feedback.Reviews[0].Author != "alice" || feedback.Reviews[0].State != "CHANGES_REQUESTED" {
		t.Errorf("Reviews[0] = %+v, want alice/CHANGES_REQUESTED", feedback.Reviews[0])
	}

	if len(feedback.Comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(feedback.Comments))
	}

	// Comments are merged across sources and ordered by creation time
	wantOrder := []struct {
		author string
		source CommentSource
	}{
		{"carol", CommentSourceIssue},
		{"alice", CommentSourceReview},
		{"bob", CommentSourceIssue},
	}
	for i, want := range wantOrder {
		if feedback.Comments[i].Author != want.author || feedback.Comments[i].Source != want.source {
			t.Errorf("Comments[%d] = %s/%s, want %s/%s",
				i, feedback.Comments[i].Author, feedback.Comments[i].Source, want.author, want.source)
		}
	}

	if feedback.Comments[1].Path != "internal/github/poll.go" || feedback.Comments[1].Line != 42 {
		t.Errorf("review comment location = %s:%d, want internal/github/poll.go:42",
			feedback.Comments[1].Path, feedback.Comments[1].Line)
	}
}

// TestGetPRFeedbackPagination tests that list calls follow Link headers
func TestGetPRFeedbackPagination(t *testing.T) {
	var reviewCalls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/pulls/7/reviews"):
			reviewCalls++
			if r.URL.Query().Get("page") == "2" {
				fmt.Fprint(w, `[{"user":{"login":"dave"},"state":"COMMENTED","submitted_at":"2025-03-03T10:00:00Z"}]`)
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<http://%s%s?page=2>; rel="next"`, r.Host, r.URL.Path))
			fmt.Fprint(w, `[{"user":{"login":"alice"},"state":"APPROVED","submitted_at":"2025-03-01T10:00:00Z"}]`)
		default:
			fmt.Fprint(w, `[]`)
		}
	}))
	defer server.Close()

	client := newPollingClient(server.URL)

	feedback, err := client.GetPRFeedback(context.Background(), "terragonlabs", "gatewayz", 7)
	if err != nil {
		t.Fatalf("GetPRFeedback() unexpected error: %v", err)
	}
	if reviewCalls != 2 {
		t.Errorf("made %d review list calls, want 2", reviewCalls)
	}
	if len(feedback.Reviews) != 2 {
		t.Errorf("got %d reviews, want 2 across pages", len(feedback.Reviews))
	}
}

// TestGetPRFeedbackError tests that terminal errors propagate
func TestGetPRFeedbackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`)) //nolint:errcheck,gosec
	}))
	defer server.Close()

	client := newPollingClient(server.URL)

	_, err := client.GetPRFeedback(context.Background(), "terragonlabs", "gatewayz", 7)
	if err == nil {
		t.Fatalf("GetPRFeedback() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to list reviews") {
		t.Errorf("error = %q, want it to name the failing step", err.Error())
	}
}
