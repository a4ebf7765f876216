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
	"net"
	"syscall"

	"github.com/google/go-github/v66/github"
)

// FailureClass is the closed classification of upstream failures used for
// retry decisions. Errors from the GitHub client are adapted into this set at
// the boundary so retry logic never inspects free-form error shapes.
type FailureClass int

const (
	// FailureTerminal means retrying cannot help (4xx responses, unknown errors)
	FailureTerminal FailureClass = iota
	// FailureTransientStatus means the server reported a 5xx status
	FailureTransientStatus
	// FailureTransientNetwork means the connection itself failed in a way that
	// is likely to succeed on retry
	FailureTransientNetwork
)

// Classify adapts an error returned by the GitHub client into a FailureClass.
//
// Rules:
//   - An HTTP status in [500,600) is transient; any other status, including
//     404, is terminal.
//   - Without a status, specific OS-level connection failures and DNS errors
//     are transient.
//   - Anything else is terminal. Fail fast rather than retry blindly.
func Classify(err error) FailureClass {
	if err == nil {
		return FailureTerminal
	}

	if status, ok := statusCode(err); ok {
		if status >= 500 && status < 600 {
			return FailureTransientStatus
		}
		return FailureTerminal
	}

	if isTransientNetworkError(err) {
		return FailureTransientNetwork
	}

	return FailureTerminal
}

// IsTransient reports whether the error is worth retrying.
func IsTransient(err error) bool {
	return Classify(err) != FailureTerminal
}

// IsNotFound reports whether the error is a 404 response from the API.
func IsNotFound(err error) bool {
	status, ok := statusCode(err)
	return ok && status == 404
}

// statusCode extracts the HTTP status from a go-github error response, if any.
func statusCode(err error) (int, bool) {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode, true
	}
	return 0, false
}

// isTransientNetworkError matches OS-level connection failures that warrant a
// retry: reset, refused, and aborted connections, broken pipes, timeouts, and
// DNS failures.
func isTransientNetworkError(err error) bool {
	switch {
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ETIMEDOUT):
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		// Covers both temporary resolver failures and negative lookups.
		// Resolution often recovers after a transient resolver hiccup.
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}
