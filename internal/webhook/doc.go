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

// Package webhook provides GitHub webhook handling for GatewayZ.
//
// This package implements an HTTP server that receives GitHub pull request
// webhook events and maintains the set of tracked pull requests.
//
// Key features:
//   - Validates GitHub webhook signatures using HMAC-SHA256
//   - Handles pull_request events (opened, synchronize, reopened,
//     ready_for_review, closed)
//   - Registers and removes pull requests in the tracker store
//   - Provides per-repository rate limiting
//   - Health check endpoint
//
// Webhook Security:
//
// All webhook requests must include a valid X-Hub-Signature-256 header
// containing an HMAC-SHA256 signature computed with the webhook secret.
// Requests with invalid or missing signatures are rejected with HTTP 401.
//
// Event Handling:
//
// The webhook server processes the following pull_request actions:
//   - opened, reopened, synchronize, ready_for_review: starts tracking the
//     pull request so the scheduler refreshes its mergeable state
//   - closed: stops tracking the pull request
//
// All other actions are acknowledged with HTTP 200 and ignored.
//
// Rate Limiting:
//
// Requests are rate-limited per repository using a token bucket algorithm.
// The default limit is 10 requests per second per repository. Requests
// exceeding the limit receive HTTP 429 Too Many Requests.
//
// Example usage:
//
//	server := webhook.NewServer(
//		":8080",
//		store,
//		"webhook-secret",
//		logger,
//	)
//	if err := server.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package webhook
