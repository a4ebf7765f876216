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
	"sort"

	"github.com/google/go-github/v66/github"
)

// GetPRFeedback aggregates all feedback on a pull request: formal reviews,
// inline review comments, and conversation comments. Comments from both
// sources are merged and ordered by creation time.
func (c *githubClient) GetPRFeedback(ctx context.Context, owner, repo string, number int) (*Feedback, error) {
	reviews, err := c.listReviews(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	reviewComments, err := c.listReviewComments(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list review comments: %w", err)
	}

	issueComments, err := c.listIssueComments(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list issue comments: %w", err)
	}

	comments := append(reviewComments, issueComments...)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})

	return &Feedback{
		Reviews:  reviews,
		Comments: comments,
	}, nil
}

func (c *githubClient) listReviews(ctx context.Context, owner, repo string, number int) ([]*Review, error) {
	allReviews := []*Review{} // Initialize as empty slice, not nil
	opts := &github.ListOptions{
		PerPage: 100,
	}

	for {
		var reviews []*github.PullRequestReview
		var resp *github.Response
		var err error

		err = c.executeWithRetry(ctx, func() error {
			reviews, resp, err = c.client.PullRequests.ListReviews(ctx, owner, repo, number, opts)
			return err
		})

		if err != nil {
			return nil, err
		}

		for _, review := range reviews {
			if review == nil {
				continue
			}
			allReviews = append(allReviews, &Review{
				Author:      review.GetUser().GetLogin(),
				State:       review.GetState(),
				Body:        review.GetBody(),
				SubmittedAt: review.GetSubmittedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allReviews, nil
}

func (c *githubClient) listReviewComments(ctx context.Context, owner, repo string, number int) ([]*Comment, error) {
	allComments := []*Comment{}
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		var comments []*github.PullRequestComment
		var resp *github.Response
		var err error

		err = c.executeWithRetry(ctx, func() error {
			comments, resp, err = c.client.PullRequests.ListComments(ctx, owner, repo, number, opts)
			return err
		})

		if err != nil {
			return nil, err
		}

		for _, comment := range comments {
			if comment == nil {
				continue
			}
			allComments = append(allComments, &Comment{
				Source:    CommentSourceReview,
				Author:    comment.GetUser().GetLogin(),
				Body:      comment.GetBody(),
				Path:      comment.GetPath(),
				Line:      comment.GetLine(),
				CreatedAt: comment.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

func (c *githubClient) listIssueComments(ctx context.Context, owner, repo string, number int) ([]*Comment, error) {
	allComments := []*Comment{}
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		var comments []*github.IssueComment
		var resp *github.Response
		var err error

		err = c.executeWithRetry(ctx, func() error {
			comments, resp, err = c.client.Issues.ListComments(ctx, owner, repo, number, opts)
			return err
		})

		if err != nil {
			return nil, err
		}

		for _, comment := range comments {
			if comment == nil {
				continue
			}
			allComments = append(allComments, &Comment{
				Source:    CommentSourceIssue,
				Author:    comment.GetUser().GetLogin(),
				Body:      comment.GetBody(),
				CreatedAt: comment.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}
