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

package githubapp

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"
)

// defaultAPITimeout bounds each individual API call made by the App.
const defaultAPITimeout = 10 * time.Second

// Config holds the credentials and options needed to authenticate as a
// GitHub App.
type Config struct {
	// AppID is the numeric GitHub App identifier. Required.
	AppID int64
	// PrivateKey is the App's private key in PEM form. Required.
	PrivateKey []byte
	// APITimeout bounds each API call. Zero means the 10s default.
	APITimeout time.Duration
	// BaseURL points at a different API endpoint, for GitHub Enterprise and
	// tests. Empty means api.github.com.
	BaseURL string
	// Logger receives diagnostic output. Nil means no logging.
	Logger *zap.Logger
}

// App is an authenticated GitHub App identity. Construct one explicitly with
// New and share it; construction parses the private key once and the value is
// read-only afterwards.
type App struct {
	appID   int64
	client  *github.Client
	timeout time.Duration
	logger  *zap.Logger
}

// New creates an App from the given configuration. It fails fast with a
// descriptive error if either credential is absent, before any network call.
func New(cfg Config) (*App, error) {
	if cfg.AppID == 0 {
		return nil, fmt.Errorf("GitHub App configuration missing: GITHUB_APP_ID")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("GitHub App configuration missing: GITHUB_APP_PRIVATE_KEY")
	}

	transport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, cfg.AppID, cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GitHub App private key: %w", err)
	}

	client := github.NewClient(&http.Client{Transport: transport})
	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		client.BaseURL, err = client.BaseURL.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
		}
	}

	apiTimeout := cfg.APITimeout
	if apiTimeout <= 0 {
		apiTimeout = defaultAPITimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &App{
		appID:   cfg.AppID,
		client:  client,
		timeout: apiTimeout,
		logger:  logger,
	}, nil
}

// NewFromEnv creates an App from GITHUB_APP_ID, GITHUB_APP_PRIVATE_KEY and the
// optional GITHUB_API_TIMEOUT_MS override.
func NewFromEnv() (*App, error) {
	rawID := os.Getenv("GITHUB_APP_ID")
	if rawID == "" {
		return nil, fmt.Errorf("GitHub App configuration missing: GITHUB_APP_ID")
	}
	appID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GITHUB_APP_ID %q: %w", rawID, err)
	}

	key := os.Getenv("GITHUB_APP_PRIVATE_KEY")
	if key == "" {
		return nil, fmt.Errorf("GitHub App configuration missing: GITHUB_APP_PRIVATE_KEY")
	}

	cfg := Config{
		AppID:      appID,
		PrivateKey: []byte(NormalizePrivateKey(key)),
	}

	if rawTimeout := os.Getenv("GITHUB_API_TIMEOUT_MS"); rawTimeout != "" {
		ms, err := strconv.ParseInt(rawTimeout, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid GITHUB_API_TIMEOUT_MS %q: %w", rawTimeout, err)
		}
		cfg.APITimeout = time.Duration(ms) * time.Millisecond
	}

	return New(cfg)
}

// NormalizePrivateKey converts literal \n escape sequences into real newlines.
// Deployment environments often store the PEM as a single-line variable.
func NormalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

var (
	defaultMu  sync.Mutex
	defaultApp *App
)

// Default returns the process-wide App built from the environment, creating it
// on first use. The instance is cached until Reset.
func Default() (*App, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultApp == nil {
		app, err := NewFromEnv()
		if err != nil {
			return nil, err
		}
		defaultApp = app
	}
	return defaultApp, nil
}

// Reset clears the cached App. Test-only hook.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultApp = nil
}
