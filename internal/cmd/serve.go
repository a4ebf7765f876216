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

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/terragonlabs/gatewayz/internal/github"
	"github.com/terragonlabs/gatewayz/internal/githubapp"
	"github.com/terragonlabs/gatewayz/internal/tracker"
	"github.com/terragonlabs/gatewayz/internal/web"
	"github.com/terragonlabs/gatewayz/internal/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook receiver, tracker, and API server",
	Long: `Start the GatewayZ service.

Runs three components until interrupted:
  1. Webhook server: receives pull_request events and updates the tracked set
  2. Tracker scheduler: periodically refreshes each tracked PR's mergeable state
  3. API server: serves tracked state and on-demand lookups

GitHub App endpoints are enabled when GITHUB_APP_ID and
GITHUB_APP_PRIVATE_KEY are configured.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	client, err := github.NewClient(cfg.GitHub.Token, github.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	var app *githubapp.App
	if cfg.AppConfigured() {
		app, err = githubapp.New(githubapp.Config{
			AppID:      cfg.GitHub.AppID,
			PrivateKey: []byte(cfg.GitHub.PrivateKey),
			APITimeout: cfg.GitHub.APITimeout(),
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create GitHub App: %w", err)
		}
		logger.Info("GitHub App configured", zap.Int64("app_id", cfg.GitHub.AppID))
	} else {
		logger.Info("GitHub App not configured, installation endpoints disabled")
	}

	store := tracker.NewStore()
	scheduler := tracker.NewScheduler(store, client, cfg.Tracker.RefreshInterval(), logger)
	webhookServer := webhook.NewServer(cfg.Server.WebhookAddr, store, cfg.GitHub.WebhookSecret, logger)
	apiServer := web.NewServer(cfg.Server.APIAddr, client, app, store, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 3)
	run := func(name string, fn func(context.Context) error) {
		go func() {
			if err := fn(ctx); err != nil {
				errChan <- fmt.Errorf("%s: %w", name, err)
				return
			}
			errChan <- nil
		}()
	}

	run("webhook server", webhookServer.Start)
	run("tracker scheduler", scheduler.Start)
	run("api server", apiServer.Start)

	// First failure brings the process down; a clean ctx cancellation drains
	// all three.
	for i := 0; i < 3; i++ {
		if err := <-errChan; err != nil {
			stop()
			return err
		}
	}

	logger.Info("shutdown complete")
	return nil
}
