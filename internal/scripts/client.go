// Package scripts fetches the bundled example Python scripts from a
// GitHub release of the upstream repository.
package scripts

import (
	"context"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v60/github"
)

// Client wraps the GitHub API for example-script downloads.
type Client struct {
	gh         *gh.Client
	httpClient *http.Client
	owner      string
	repo       string
}

// New creates a client for the given repository. token may be empty:
// the example scripts live in a public repo.
func New(token, owner, repo string) *Client {
	httpClient := &http.Client{}
	ghClient := gh.NewClient(httpClient)
	if token != "" {
		ghClient = ghClient.WithAuthToken(token)
	}
	return &Client{
		gh:         ghClient,
		httpClient: httpClient,
		owner:      owner,
		repo:       repo,
	}
}

// newWithClients creates a Client with injected HTTP and GitHub clients (for testing).
func newWithClients(ghClient *gh.Client, httpClient *http.Client, owner, repo string) *Client {
	return &Client{
		gh:         ghClient,
		httpClient: httpClient,
		owner:      owner,
		repo:       repo,
	}
}

// ResolveVersion resolves "latest" to the actual release tag, or returns
// the version as-is.
func (c *Client) ResolveVersion(ctx context.Context, version string) (string, error) {
	if version == "latest" || version == "" {
		release, _, err := c.gh.Repositories.GetLatestRelease(ctx, c.owner, c.repo)
		if err != nil {
			return "", fmt.Errorf("getting latest release for %s/%s: %w", c.owner, c.repo, err)
		}
		return release.GetTagName(), nil
	}
	return version, nil
}

// FetchExamples downloads the example-scripts archive from the given
// release version ("latest" or a tag) and extracts the Python scripts
// into destDir. Returns the extracted file paths.
func (c *Client) FetchExamples(ctx context.Context, version, destDir string) ([]string, error) {
	version, err := c.ResolveVersion(ctx, version)
	if err != nil {
		return nil, err
	}

	release, _, err := c.gh.Repositories.GetReleaseByTag(ctx, c.owner, c.repo, version)
	if err != nil {
		return nil, fmt.Errorf("getting release %s for %s/%s: %w", version, c.owner, c.repo, err)
	}

	var assetNames []string
	var matched *gh.ReleaseAsset
	for _, a := range release.Assets {
		name := a.GetName()
		assetNames = append(assetNames, name)
		if matched == nil && IsScriptsAsset(name) {
			matched = a
		}
	}
	if matched == nil {
		return nil, fmt.Errorf("release %s has no scripts archive; available assets: %v", version, assetNames)
	}

	rc, _, err := c.gh.Repositories.DownloadReleaseAsset(ctx, c.owner, c.repo, matched.GetID(), c.httpClient)
	if err != nil {
		return nil, fmt.Errorf("downloading asset %s: %w", matched.GetName(), err)
	}
	defer rc.Close()

	files, err := ExtractScripts(rc, destDir)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", matched.GetName(), err)
	}
	return files, nil
}
