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
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v66/github"

	gh "github.com/terragonlabs/gatewayz/internal/github"
	"github.com/terragonlabs/gatewayz/internal/timeout"
)

// NotInstalledError indicates the App has no installation on the repository.
type NotInstalledError struct {
	Owner string
	Repo  string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("GitHub App is not installed on repository %s/%s", e.Owner, e.Repo)
}

// InstallationToken mints a short-lived access token scoped to exactly the one
// repository, authenticating as the App's installation there.
//
// Two sequential API calls are made, each independently bounded by the App's
// timeout with a step-labeled timeout error: resolving the installation, then
// creating the token. A 404 on the first step becomes a NotInstalledError;
// everything else propagates as-is.
//
// Callers own the returned token's lifecycle; nothing is cached here.
func (a *App) InstallationToken(ctx context.Context, owner, repo string) (string, error) {
	installation, err := a.findInstallation(ctx, owner, repo)
	if err != nil {
		return "", err
	}

	token, err := timeout.Run(a.timeout, fmt.Sprintf("creating access token for %s/%s", owner, repo), a.logger,
		func() (*github.InstallationToken, error) {
			tok, _, err := a.client.Apps.CreateInstallationToken(ctx, installation.GetID(), &github.InstallationTokenOptions{
				Repositories: []string{repo},
			})
			return tok, err
		})
	if err != nil {
		return "", err
	}

	return token.GetToken(), nil
}

// IsInstalled reports whether the App is installed on the repository. A 404
// maps to false; any other failure, including timeout, propagates.
func (a *App) IsInstalled(ctx context.Context, owner, repo string) (bool, error) {
	_, err := a.findInstallation(ctx, owner, repo)
	if err != nil {
		var notInstalled *NotInstalledError
		if errors.As(err, &notInstalled) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (a *App) findInstallation(ctx context.Context, owner, repo string) (*github.Installation, error) {
	installation, err := timeout.Run(a.timeout, fmt.Sprintf("getting installation for %s/%s", owner, repo), a.logger,
		func() (*github.Installation, error) {
			inst, _, err := a.client.Apps.FindRepositoryInstallation(ctx, owner, repo)
			return inst, err
		})
	if err != nil {
		if gh.IsNotFound(err) {
			return nil, &NotInstalledError{Owner: owner, Repo: repo}
		}
		return nil, err
	}
	return installation, nil
}
