// Package githubproxy is a thin read-only client for the GitHub API and
// raw content host, used to embed repository metadata in blog pages.
package githubproxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const userAgent = "inkwell-blog"

// Client talks to the GitHub REST API and the raw content host. Base URLs
// are configurable so tests can point at a local server.
type Client struct {
	APIBase string
	RawBase string
	Token   string

	httpClient *http.Client
}

// New creates a Client with the public GitHub endpoints. token may be
// empty for anonymous (rate-limited) access.
func New(token string) *Client {
	return &Client{
		APIBase:    "https://api.github.com",
		RawBase:    "https://raw.githubusercontent.com",
		Token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// RepoInfo is the subset of repository metadata the blog shows.
type RepoInfo struct {
	Name          string   `json:"name"`
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	Language      string   `json:"language"`
	HTMLURL       string   `json:"html_url"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	Topics        []string `json:"topics"`
	DefaultBranch string   `json:"default_branch"`
}

// RepoSummary is a lightweight entry in search and listing responses.
type RepoSummary struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Language    string `json:"language"`
	HTMLURL     string `json:"html_url"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// TreeEntry is one file or directory in a repository tree.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// SearchResult wraps a repository search response.
type SearchResult struct {
	Total int           `json:"total"`
	Repos []RepoSummary `json:"repos"`
}

// Repo fetches basic metadata for owner/repo.
func (c *Client) Repo(ctx context.Context, owner, repo string) (*RepoInfo, error) {
	var raw struct {
		Name        string   `json:"name"`
		FullName    string   `json:"full_name"`
		Description string   `json:"description"`
		Stars       int      `json:"stargazers_count"`
		Forks       int      `json:"forks_count"`
		Language    string   `json:"language"`
		HTMLURL     string   `json:"html_url"`
		CreatedAt   string   `json:"created_at"`
		UpdatedAt   string   `json:"updated_at"`
		Topics      []string `json:"topics"`
		Branch      string   `json:"default_branch"`
	}
	u := fmt.Sprintf("%s/repos/%s/%s", c.APIBase, owner, repo)
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, err
	}
	if raw.Branch == "" {
		raw.Branch = "main"
	}
	return &RepoInfo{
		Name:          raw.Name,
		FullName:      raw.FullName,
		Description:   raw.Description,
		Stars:         raw.Stars,
		Forks:         raw.Forks,
		Language:      raw.Language,
		HTMLURL:       raw.HTMLURL,
		CreatedAt:     raw.CreatedAt,
		UpdatedAt:     raw.UpdatedAt,
		Topics:        raw.Topics,
		DefaultBranch: raw.Branch,
	}, nil
}

// Readme fetches README.md from the main branch, falling back to master.
func (c *Client) Readme(ctx context.Context, owner, repo string) (string, error) {
	for _, branch := range []string{"main", "master"} {
		content, err := c.getRaw(ctx, fmt.Sprintf("%s/%s/%s/%s/README.md", c.RawBase, owner, repo, branch))
		if err == nil {
			return content, nil
		}
	}
	return "", fmt.Errorf("githubproxy: readme not found for %s/%s", owner, repo)
}

// FileContent fetches one file from a branch of owner/repo.
func (c *Client) FileContent(ctx context.Context, owner, repo, path, branch string) (string, error) {
	if branch == "" {
		branch = "main"
	}
	escaped := (&url.URL{Path: path}).EscapedPath()
	return c.getRaw(ctx, fmt.Sprintf("%s/%s/%s/%s/%s", c.RawBase, owner, repo, branch, escaped))
}

// Tree fetches the recursive file tree of a branch.
func (c *Client) Tree(ctx context.Context, owner, repo, branch string) ([]TreeEntry, error) {
	if branch == "" {
		branch = "main"
	}
	var raw struct {
		Tree []TreeEntry `json:"tree"`
	}
	u := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", c.APIBase, owner, repo, branch)
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, err
	}
	return raw.Tree, nil
}

// Search queries public repositories, ordered by stars.
func (c *Client) Search(ctx context.Context, query string, perPage int) (*SearchResult, error) {
	if perPage <= 0 {
		perPage = 10
	}
	var raw struct {
		Total int `json:"total_count"`
		Items []struct {
			Name        string `json:"name"`
			FullName    string `json:"full_name"`
			Description string `json:"description"`
			Stars       int    `json:"stargazers_count"`
			Language    string `json:"language"`
			HTMLURL     string `json:"html_url"`
		} `json:"items"`
	}
	u := c.APIBase + "/search/repositories?q=" + url.QueryEscape(query) +
		"&sort=stars&per_page=" + strconv.Itoa(perPage)
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, err
	}
	out := &SearchResult{Total: raw.Total}
	for _, it := range raw.Items {
		out.Repos = append(out.Repos, RepoSummary{
			Name:        it.Name,
			FullName:    it.FullName,
			Description: it.Description,
			Stars:       it.Stars,
			Language:    it.Language,
			HTMLURL:     it.HTMLURL,
		})
	}
	return out, nil
}

// UserRepos lists a user's public repositories, most recently updated first.
func (c *Client) UserRepos(ctx context.Context, username string, perPage int) ([]RepoSummary, error) {
	if perPage <= 0 {
		perPage = 30
	}
	var raw []struct {
		Name        string `json:"name"`
		FullName    string `json:"full_name"`
		Description string `json:"description"`
		Stars       int    `json:"stargazers_count"`
		Language    string `json:"language"`
		HTMLURL     string `json:"html_url"`
		UpdatedAt   string `json:"updated_at"`
	}
	u := fmt.Sprintf("%s/users/%s/repos?per_page=%d&sort=updated", c.APIBase, username, perPage)
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, err
	}
	var out []RepoSummary
	for _, it := range raw {
		out = append(out, RepoSummary{
			Name:        it.Name,
			FullName:    it.FullName,
			Description: it.Description,
			Stars:       it.Stars,
			Language:    it.Language,
			HTMLURL:     it.HTMLURL,
			UpdatedAt:   it.UpdatedAt,
		})
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("githubproxy: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", userAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "token "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("githubproxy: get %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("githubproxy: get %s: HTTP %d", u, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("githubproxy: decode %s: %w", u, err)
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("githubproxy: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("githubproxy: get %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("githubproxy: get %s: HTTP %d", u, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("githubproxy: read %s: %w", u, err)
	}
	return string(body), nil
}
