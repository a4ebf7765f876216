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

// Package githubapp authenticates as a GitHub App and mints repository-scoped
// installation tokens.
//
// An App is constructed explicitly from an app ID and a PEM private key; the
// key's literal \n escapes are normalized so single-line environment variables
// work. Token issuance is two sequential API calls (resolve installation,
// create token), each bounded by a configurable timeout with a step-labeled
// error so operators can tell which call stalled.
//
// Example usage:
//
//	app, err := githubapp.New(githubapp.Config{
//	    AppID:      12345,
//	    PrivateKey: pemBytes,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := app.InstallationToken(ctx, "owner", "repo")
//	if err != nil {
//	    var notInstalled *githubapp.NotInstalledError
//	    if errors.As(err, &notInstalled) {
//	        // prompt the user to install the App
//	    }
//	    log.Fatal(err)
//	}
//
// A process-wide instance built from GITHUB_APP_ID / GITHUB_APP_PRIVATE_KEY is
// available via Default; Reset clears it between tests.
package githubapp
