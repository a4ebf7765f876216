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
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"

	"github.com/google/go-github/v66/github"
)

func statusError(code int) error {
	return &github.ErrorResponse{
		Response: &http.Response{StatusCode: code},
		Message:  fmt.Sprintf("status %d", code),
	}
}

// TestClassify tests the failure classification rules
func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureClass
	}{
		{
			name: "Nil error is terminal",
			err:  nil,
			want: FailureTerminal,
		},
		{
			name: "500 is transient",
			err:  statusError(http.StatusInternalServerError),
			want: FailureTransientStatus,
		},
		{
			name: "502 is transient",
			err:  statusError(http.StatusBadGateway),
			want: FailureTransientStatus,
		},
		{
			name: "503 is transient",
			err:  statusError(http.StatusServiceUnavailable),
			want: FailureTransientStatus,
		},
		{
			name: "599 is transient",
			err:  statusError(599),
			want: FailureTransientStatus,
		},
		{
			name: "404 is terminal",
			err:  statusError(http.StatusNotFound),
			want: FailureTerminal,
		},
		{
			name: "401 is terminal",
			err:  statusError(http.StatusUnauthorized),
			want: FailureTerminal,
		},
		{
			name: "429 is terminal",
			err:  statusError(http.StatusTooManyRequests),
			want: FailureTerminal,
		},
		{
			name: "Wrapped status error still classified",
			err:  fmt.Errorf("fetching: %w", statusError(http.StatusBadGateway)),
			want: FailureTransientStatus,
		},
		{
			name: "Connection reset is transient",
			err:  &net.OpError{Op: "read", Err: syscall.ECONNRESET},
			want: FailureTransientNetwork,
		},
		{
			name: "Connection refused is transient",
			err:  &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
			want: FailureTransientNetwork,
		},
		{
			name: "Broken pipe is transient",
			err:  &net.OpError{Op: "write", Err: syscall.EPIPE},
			want: FailureTransientNetwork,
		},
		{
			name: "Connection aborted is transient",
			err:  &net.OpError{Op: "read", Err: syscall.ECONNABORTED},
			want: FailureTransientNetwork,
		},
		{
			name: "OS-level timeout is transient",
			err:  &net.OpError{Op: "dial", Err: syscall.ETIMEDOUT},
			want: FailureTransientNetwork,
		},
		{
			name: "Temporary DNS failure is transient",
			err:  &net.DNSError{Err: "server misbehaving", Name: "api.github.com", IsTemporary: true},
			want: FailureTransientNetwork,
		},
		{
			name: "DNS not found is transient",
			err:  &net.DNSError{Err: "no such host", Name: "api.github.com", IsNotFound: true},
			want: FailureTransientNetwork,
		},
		{
			name: "Unknown shape is terminal",
			err:  errors.New("something unexpected"),
			want: FailureTerminal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
			wantTransient := tt.want != FailureTerminal
			if got := IsTransient(tt.err); got != wantTransient {
				t.Errorf("IsTransient() = %v, want %v", got, wantTransient)
			}
		})
	}
}

// TestIsNotFound tests 404 detection
func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "404 response",
			err:  statusError(http.StatusNotFound),
			want: true,
		},
		{
			name: "Wrapped 404 response",
			err:  fmt.Errorf("lookup: %w", statusError(http.StatusNotFound)),
			want: true,
		},
		{
			name: "Other status",
			err:  statusError(http.StatusInternalServerError),
			want: false,
		},
		{
			name: "Plain error",
			err:  errors.New("nope"),
			want: false,
		},
		{
			name: "Nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}
