// Package github discovers NuGet package artifacts built for a pull request
// through the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mauicli/internal/fsutil"
	"mauicli/internal/logging"
)

const (
	userAgent      = "Maui-CLI/1.0"
	runsPerPage    = 10
	maxConcurrency = 4
	maxBodySize    = 8 << 20
	requestTimeout = 30 * time.Second
)

var (
	// ErrUnauthorized is returned for 401 and 403 responses
	ErrUnauthorized = errors.New("github authentication required")
	// ErrNotFound is returned when the pull request does not exist
	ErrNotFound = errors.New("github resource not found")
)

// Artifact is a package artifact produced by a successful workflow run
type Artifact struct {
	PR          int    `json:"pr"`
	BuildID     string `json:"build_id"`
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
	SizeBytes   int64  `json:"size_bytes"`
}

// Client talks to one repository
type Client struct {
	apiBase string
	owner   string
	repo    string
	token   string
	http    *http.Client
	logger  *logging.Logger
}

// NewClient creates a client. A nil httpClient gets a default with a timeout.
func NewClient(apiBase, owner, repo, token string, httpClient *http.Client, logger *logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		apiBase: strings.TrimRight(apiBase, "/"),
		owner:   owner,
		repo:    repo,
		token:   token,
		http:    httpClient,
		logger:  logger,
	}
}

type pullRequest struct {
	Head struct {
		SHA string `json:"sha"`
	} `json:"head"`
}

type workflowRuns struct {
	WorkflowRuns []struct {
		ID         int64  `json:"id"`
		Conclusion string `json:"conclusion"`
	} `json:"workflow_runs"`
}

type artifactList struct {
	Artifacts []struct {
		Name               string `json:"name"`
		ArchiveDownloadURL string `json:"archive_download_url"`
		SizeInBytes        int64  `json:"size_in_bytes"`
	} `json:"artifacts"`
}

// PRArtifacts lists package artifacts of the successful workflow runs for the
// pull request's head commit, in run order
func (c *Client) PRArtifacts(ctx context.Context, pr int) ([]Artifact, error) {
	if pr <= 0 {
		return nil, fmt.Errorf("invalid pull request number %d", pr)
	}

	var p pullRequest
	if err := c.getJSON(ctx, c.repoPath("pulls", strconv.Itoa(pr)), &p); err != nil {
		return nil, fmt.Errorf("failed to fetch PR #%d: %w", pr, err)
	}
	if p.Head.SHA == "" {
		return nil, fmt.Errorf("PR #%d has no head commit", pr)
	}

	var runs workflowRuns
	query := url.Values{"head_sha": {p.Head.SHA}, "per_page": {strconv.Itoa(runsPerPage)}}
	if err := c.getJSON(ctx, c.repoPath("actions", "runs")+"?"+query.Encode(), &runs); err != nil {
		return nil, fmt.Errorf("failed to fetch workflow runs: %w", err)
	}

	var successful []int64
	for _, r := range runs.WorkflowRuns {
		if r.Conclusion == "success" {
			successful = append(successful, r.ID)
		}
	}

	perRun := make([][]Artifact, len(successful))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, runID := range successful {
		g.Go(func() error {
			found, err := c.runArtifacts(gctx, pr, runID)
			if err != nil {
				if errors.Is(err, ErrUnauthorized) {
					return err
				}
				c.logger.Warn("github.artifacts.run_failed", "Failed to list run artifacts", map[string]interface{}{
					"run_id": runID,
					"error":  err.Error(),
				})
				return nil
			}
			perRun[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Artifact
	for _, a := range perRun {
		out = append(out, a...)
	}

	c.logger.Info("github.artifacts.listed", "Pull request artifacts listed", map[string]interface{}{
		"pr":        pr,
		"head_sha":  p.Head.SHA,
		"runs":      len(successful),
		"artifacts": len(out),
	})
	return out, nil
}

func (c *Client) runArtifacts(ctx context.Context, pr int, runID int64) ([]Artifact, error) {
	var list artifactList
	id := strconv.FormatInt(runID, 10)
	if err := c.getJSON(ctx, c.repoPath("actions", "runs", id, "artifacts"), &list); err != nil {
		return nil, err
	}

	var out []Artifact
	for _, a := range list.Artifacts {
		if !IsPackageArtifact(a.Name) {
			continue
		}
		out = append(out, Artifact{
			PR:          pr,
			BuildID:     id,
			Name:        a.Name,
			DownloadURL: a.ArchiveDownloadURL,
			SizeBytes:   a.SizeInBytes,
		})
	}
	return out, nil
}

// IsPackageArtifact reports whether an artifact name suggests NuGet packages
func IsPackageArtifact(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "nuget") || strings.Contains(lower, "nupkg") || strings.Contains(lower, "packages")
}

func (c *Client) repoPath(parts ...string) string {
	return c.apiBase + "/repos/" + url.PathEscape(c.owner) + "/" + url.PathEscape(c.repo) + "/" + strings.Join(parts, "/")
}

func (c *Client) getJSON(ctx context.Context, target string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer fsutil.CloseWithError(resp.Body.Close, c.logger, "github response body")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
