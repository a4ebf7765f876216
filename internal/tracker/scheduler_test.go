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
	"errors"
	"fmt"
	"sync"
	"time"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/terragonlabs/gatewayz/internal/github"
)

// fakeClient scripts poll responses per PR
type fakeClient struct {
	mu        sync.Mutex
	snapshots map[Key]*github.PullRequest
	errs      map[Key]error
	calls     map[Key]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		snapshots: make(map[Key]*github.PullRequest),
		errs:      make(map[Key]error),
		calls:     make(map[Key]int),
	}
}

func (f *fakeClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	return f.GetPullRequestWithMergeablePolling(ctx, owner, repo, number)
}

func (f *fakeClient) GetPullRequestWithMergeablePolling(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := Key{Owner: owner, Repo: repo, Number: number}
	f.calls[key]++
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if pr, ok := f.snapshots[key]; ok {
		return pr, nil
	}
	return nil, fmt.Errorf("unscripted pull request %s/%s#%d", owner, repo, number)
}

func (f *fakeClient) GetPRFeedback(ctx context.Context, owner, repo string, number int) (*github.Feedback, error) {
	return &github.Feedback{}, nil
}

var _ = ginkgo.Describe("Store", func() {
	var store *Store
	key := Key{Owner: "terragonlabs", Repo: "gatewayz", Number: 7}

	ginkgo.BeforeEach(func() {
		store = NewStore()
	})

	ginkgo.It("tracks and retrieves a pull request", func() {
		store.Track(key)

		entry, ok := store.Get(key)
		Expect(ok).To(BeTrue())
		Expect(entry.Key).To(Equal(key))
		Expect(entry.Snapshot).To(BeNil())
		Expect(entry.TrackedAt).NotTo(BeZero())
	})

	ginkgo.It("keeps the snapshot when re-tracking an enrolled PR", func() {
		store.Track(key)
		store.setSnapshot(key, &github.PullRequest{Number: 7, MergeableState: "clean"})

		store.Track(key)

		entry, ok := store.Get(key)
		Expect(ok).To(BeTrue())
		Expect(entry.Snapshot).NotTo(BeNil())
		Expect(entry.Snapshot.MergeableState).To(Equal("clean"))
	})

	ginkgo.It("untracks a pull request", func() {
		store.Track(key)
		store.Untrack(key)

		_, ok := store.Get(key)
		Expect(ok).To(BeFalse())
		Expect(store.Len()).To(BeZero())
	})

	ginkgo.It("ignores snapshot writes for untracked keys", func() {
		store.setSnapshot(key, &github.PullRequest{Number: 7})

		_, ok := store.Get(key)
		Expect(ok).To(BeFalse())
	})

	ginkgo.It("lists entries in a stable order", func() {
		store.Track(Key{Owner: "b", Repo: "r", Number: 2})
		store.Track(Key{Owner: "a", Repo: "r", Number: 9})
		store.Track(Key{Owner: "a", Repo: "r", Number: 1})

		entries := store.List()
		Expect(entries).To(HaveLen(3))
		Expect(entries[0].Key).To(Equal(Key{Owner: "a", Repo: "r", Number: 1}))
		Expect(entries[1].Key).To(Equal(Key{Owner: "a", Repo: "r", Number: 9}))
		Expect(entries[2].Key).To(Equal(Key{Owner: "b", Repo: "r", Number: 2}))
	})
})

var _ = ginkgo.Describe("Scheduler", func() {
	var (
		store  *Store
		client *fakeClient
	)

	key := Key{Owner: "terragonlabs", Repo: "gatewayz", Number: 7}

	ginkgo.BeforeEach(func() {
		store = NewStore()
		client = newFakeClient()
	})

	ginkgo.It("records a snapshot for each tracked PR on a refresh pass", func() {
		store.Track(key)
		client.snapshots[key] = &github.PullRequest{Number: 7, State: "open", MergeableState: "clean"}

		scheduler := NewScheduler(store, client, time.Minute, nil)
		scheduler.refresh(context.Background())

		entry, ok := store.Get(key)
		Expect(ok).To(BeTrue())
		Expect(entry.Snapshot).NotTo(BeNil())
		Expect(entry.Snapshot.MergeableState).To(Equal("clean"))
		Expect(entry.RefreshedAt).NotTo(BeZero())
		Expect(entry.LastError).To(BeEmpty())
	})

	ginkgo.It("records the error and keeps the previous snapshot on failure", func() {
		store.Track(key)
		client.snapshots[key] = &github.PullRequest{Number: 7, State: "open", MergeableState: "clean"}

		scheduler := NewScheduler(store, client, time.Minute, nil)
		scheduler.refresh(context.Background())

		client.mu.Lock()
		client.errs[key] = errors.New("GitHub is down")
		client.mu.Unlock()
		scheduler.refresh(context.Background())

		entry, _ := store.Get(key)
		Expect(entry.LastError).To(ContainSubstring("GitHub is down"))
		Expect(entry.Snapshot).NotTo(BeNil(), "failed refresh must not discard the last snapshot")
	})

	ginkgo.It("untracks PRs that have closed", func() {
		store.Track(key)
		client.snapshots[key] = &github.PullRequest{Number: 7, State: "closed", Merged: true, MergeableState: "unknown"}

		scheduler := NewScheduler(store, client, time.Minute, nil)
		scheduler.refresh(context.Background())

		_, ok := store.Get(key)
		Expect(ok).To(BeFalse())
	})

	ginkgo.It("continues the pass after one PR fails", func() {
		other := Key{Owner: "terragonlabs", Repo: "gatewayz", Number: 8}
		store.Track(key)
		store.Track(other)
		client.errs[key] = errors.New("boom")
		client.snapshots[other] = &github.PullRequest{Number: 8, State: "open", MergeableState: "clean"}

		scheduler := NewScheduler(store, client, time.Minute, nil)
		scheduler.refresh(context.Background())

		entry, _ := store.Get(other)
		Expect(entry.Snapshot).NotTo(BeNil())
	})

	ginkgo.It("runs on its interval and stops on context cancellation", func() {
		store.Track(key)
		client.snapshots[key] = &github.PullRequest{Number: 7, State: "open", MergeableState: "clean"}

		scheduler := NewScheduler(store, client, 20*time.Millisecond, nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- scheduler.Start(ctx)
		}()

		Eventually(func() int {
			client.mu.Lock()
			defer client.mu.Unlock()
			return client.calls[key]
		}).WithTimeout(time.Second).Should(BeNumerically(">=", 2))

		cancel()
		Eventually(done).WithTimeout(time.Second).Should(Receive(BeNil()))
	})
})
