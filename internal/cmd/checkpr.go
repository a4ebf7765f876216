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
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/terragonlabs/gatewayz/internal/github"
)

var checkPRFeedback bool

var checkPRCmd = &cobra.Command{
	Use:   "check-pr <owner> <repo> <number>",
	Short: "Fetch a pull request's mergeable state once",
	Long: `Fetch a single pull request and print its snapshot as JSON.

The fetch polls GitHub until the asynchronous mergeable computation settles,
so the printed snapshot normally carries a definitive mergeable state.

Use --feedback to also print the PR's reviews and comments.`,
	Args: cobra.ExactArgs(3),
	RunE: runCheckPR,
}

func init() {
	checkPRCmd.Flags().BoolVar(&checkPRFeedback, "feedback", false, "Include reviews and comments")
	rootCmd.AddCommand(checkPRCmd)
}

func parsePRNumber(arg string) (int, error) {
	number, err := strconv.Atoi(arg)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("invalid pull request number %q", arg)
	}
	return number, nil
}

func runCheckPR(cmd *cobra.Command, args []string) error {
	owner, repo := args[0], args[1]
	number, err := parsePRNumber(args[2])
	if err != nil {
		return err
	}

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

	ctx := cmd.Context()
	pr, err := client.GetPullRequestWithMergeablePolling(ctx, owner, repo, number)
	if err != nil {
		return err
	}

	out := map[string]any{"pull_request": pr}
	if checkPRFeedback {
		feedback, err := client.GetPRFeedback(ctx, owner, repo, number)
		if err != nil {
			return err
		}
		out["feedback"] = feedback
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
