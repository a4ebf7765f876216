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

// Package web serves the read-only GatewayZ HTTP API.
//
// Endpoints:
//   - GET /health — liveness check
//   - GET /api/prs — tracked pull requests with their last snapshots
//   - GET /api/prs/{owner}/{repo}/{number} — on-demand fetch, polling until
//     GitHub has computed the mergeable state
//   - GET /api/prs/{owner}/{repo}/{number}/feedback — aggregated reviews and
//     comments
//   - GET /api/app/installed/{owner}/{repo} — GitHub App installation check
//
// Upstream GitHub failures map to 502, missing pull requests to 404, and
// installation endpoints report 503 when no App credentials are configured.
package web
