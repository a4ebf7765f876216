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

// Package config loads GatewayZ configuration from a TOML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/terragonlabs/gatewayz/internal/githubapp"
)

// Config is the full GatewayZ service configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	GitHub  GitHubConfig  `toml:"github"`
	Tracker TrackerConfig `toml:"tracker"`
}

// ServerConfig holds the listen addresses for the two HTTP surfaces
type ServerConfig struct {
	// WebhookAddr is where GitHub webhook deliveries arrive
	WebhookAddr string `toml:"webhook_addr"`
	// APIAddr is where the read API listens
	APIAddr string `toml:"api_addr"`
}

// GitHubConfig holds credentials for GitHub access
type GitHubConfig struct {
	// Token is a personal access token used for API reads
	Token string `toml:"token"`
	// AppID and PrivateKey authenticate as a GitHub App for token issuance
	AppID      int64  `toml:"app_id"`
	PrivateKey string `toml:"private_key"`
	// WebhookSecret validates webhook delivery signatures
	WebhookSecret string `toml:"webhook_secret"`
	// APITimeoutMS bounds each App API call, in milliseconds. Zero means the
	// 10s default.
	APITimeoutMS int64 `toml:"api_timeout_ms"`
}

// TrackerConfig controls the background mergeability refresh loop
type TrackerConfig struct {
	// RefreshIntervalSec is the pause between refresh passes, in seconds.
	// Zero means the 60s default.
	RefreshIntervalSec int64 `toml:"refresh_interval_sec"`
}

// APITimeout returns the per-call GitHub API bound
func (c *GitHubConfig) APITimeout() time.Duration {
	if c.APITimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.APITimeoutMS) * time.Millisecond
}

// RefreshInterval returns the tracker refresh period
func (c *TrackerConfig) RefreshInterval() time.Duration {
	if c.RefreshIntervalSec <= 0 {
		return time.Minute
	}
	return time.Duration(c.RefreshIntervalSec) * time.Second
}

// Load reads the TOML file at path, then applies environment overrides. A
// missing file is not an error; the environment alone can configure the
// service. Defaults fill anything still unset.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_APP_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid GITHUB_APP_ID %q: %w", v, err)
		}
		c.GitHub.AppID = id
	}
	if v := os.Getenv("GITHUB_APP_PRIVATE_KEY"); v != "" {
		c.GitHub.PrivateKey = v
	}
	if v := os.Getenv("GITHUB_WEBHOOK_SECRET"); v != "" {
		c.GitHub.WebhookSecret = v
	}
	if v := os.Getenv("GITHUB_API_TIMEOUT_MS"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid GITHUB_API_TIMEOUT_MS %q: %w", v, err)
		}
		c.GitHub.APITimeoutMS = ms
	}
	if v := os.Getenv("GATEWAYZ_WEBHOOK_ADDR"); v != "" {
		c.Server.WebhookAddr = v
	}
	if v := os.Getenv("GATEWAYZ_API_ADDR"); v != "" {
		c.Server.APIAddr = v
	}

	// Keys arrive with literal \n escapes from most secret stores
	c.GitHub.PrivateKey = githubapp.NormalizePrivateKey(c.GitHub.PrivateKey)

	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.WebhookAddr == "" {
		c.Server.WebhookAddr = ":8080"
	}
	if c.Server.APIAddr == "" {
		c.Server.APIAddr = ":8081"
	}
}

// AppConfigured reports whether GitHub App credentials are present
func (c *Config) AppConfigured() bool {
	return c.GitHub.AppID != 0 && c.GitHub.PrivateKey != ""
}
