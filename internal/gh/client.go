// Package gh provides the GitHub issue tracker client used by the sync engine.
package gh

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"

	"github.com/JohanCodinha/ghsync/internal/logger"
)

const (
	requestTimeout = 30 * time.Second
	perPage        = 100
)

// Client talks to the issues API of one repository.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

// RateLimit is the core API quota as last reported by GitHub.
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// ghHostsConfig represents the structure of ~/.config/gh/hosts.yml
type ghHostsConfig map[string]ghHost

type ghHost struct {
	OAuthToken string `yaml:"oauth_token"`
	User       string `yaml:"user"`
}

// New creates a client for owner/repo on github.com. An empty token makes
// unauthenticated requests.
func New(token, owner, repo string) *Client {
	return &Client{
		gh:    github.NewClient(httpClient(token)),
		owner: owner,
		repo:  repo,
	}
}

// NewWithBaseURL creates a client against a custom API root, such as a
// GitHub Enterprise server or a test server.
func NewWithBaseURL(token, baseURL, owner, repo string) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	c := New(token, owner, repo)
	c.gh.BaseURL = u
	return c, nil
}

func httpClient(token string) *http.Client {
	if token == "" {
		return &http.Client{Timeout: requestTimeout}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = requestTimeout
	return hc
}

// Owner returns the repository owner.
func (c *Client) Owner() string { return c.owner }

// Repo returns the repository name.
func (c *Client) Repo() string { return c.repo }

// FullName returns owner/repo.
func (c *Client) FullName() string { return c.owner + "/" + c.repo }

var repoURLPattern = regexp.MustCompile(`^(?:https?://github\.com/|git@github\.com:)?([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?/?$`)

// ParseRepo accepts "owner/repo", a github.com URL or an SSH remote and
// returns the owner and repository name.
func ParseRepo(s string) (owner, repo string, err error) {
	m := repoURLPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/repo", s)
	}
	return m[1], m[2], nil
}

// GetToken attempts to get a GitHub token from various sources:
// 1. Run `gh auth token` command (gh CLI with keyring storage)
// 2. Read from ~/.config/gh/hosts.yml (older gh CLI format)
// 3. GITHUB_TOKEN environment variable
func GetToken() (string, error) {
	if token, err := getTokenFromGhCLI(); err == nil && token != "" {
		return token, nil
	}

	if token, err := getTokenFromGhConfig(); err == nil && token != "" {
		return token, nil
	}

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	return "", fmt.Errorf("no GitHub token found: install gh CLI and run 'gh auth login', or set GITHUB_TOKEN env var")
}

func getTokenFromGhCLI() (string, error) {
	cmd := exec.Command("gh", "auth", "token")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("gh auth token failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

func getTokenFromGhConfig() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return getTokenFromGhConfigPath(filepath.Join(homeDir, ".config", "gh", "hosts.yml"))
}

// getTokenFromGhConfigPath reads the github.com token from a gh hosts.yml file.
func getTokenFromGhConfigPath(configPath string) (string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to read gh config: %w", err)
	}

	var config ghHostsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return "", fmt.Errorf("failed to parse gh config: %w", err)
	}

	if host, ok := config["github.com"]; ok && host.OAuthToken != "" {
		return host.OAuthToken, nil
	}

	return "", fmt.Errorf("no oauth_token found in gh config")
}

// checkRateLimit warns when the response exhausted the core quota.
func checkRateLimit(resp *github.Response) {
	if resp == nil {
		return
	}
	if resp.Rate.Remaining == 0 && !resp.Rate.Reset.IsZero() {
		logger.Warn("GitHub API rate limit exceeded. Resets at %s", resp.Rate.Reset.Format(time.RFC3339))
	}
}

// ListIssues fetches every issue of the repository in any state.
// Pull requests are excluded. Handles pagination automatically.
func (c *Client) ListIssues(ctx context.Context) ([]*github.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var all []*github.Issue
	for {
		issues, resp, err := c.gh.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		checkRateLimit(resp)
		if err != nil {
			return nil, wrapError(fmt.Sprintf("list issues of %s", c.FullName()), resp, err)
		}

		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			all = append(all, issue)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logger.Debug("gh: listed %d issues from %s", len(all), c.FullName())
	return all, nil
}

// ListComments fetches all comments of an issue, oldest first.
func (c *Client) ListComments(ctx context.Context, number int) ([]*github.IssueComment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var all []*github.IssueComment
	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
		checkRateLimit(resp)
		if err != nil {
			return nil, wrapError(fmt.Sprintf("list comments of #%d", number), resp, err)
		}

		all = append(all, comments...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// CreateIssue opens a new issue and returns it as stored by GitHub.
func (c *Client) CreateIssue(ctx context.Context, req *github.IssueRequest) (*github.Issue, error) {
	issue, resp, err := c.gh.Issues.Create(ctx, c.owner, c.repo, req)
	checkRateLimit(resp)
	if err != nil {
		return nil, wrapError("create issue", resp, err)
	}
	logger.Debug("gh: created %s#%d", c.FullName(), issue.GetNumber())
	return issue, nil
}

// UpdateIssue edits the fields set in req. Nil fields are left untouched.
func (c *Client) UpdateIssue(ctx context.Context, number int, req *github.IssueRequest) (*github.Issue, error) {
	issue, resp, err := c.gh.Issues.Edit(ctx, c.owner, c.repo, number, req)
	checkRateLimit(resp)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("update issue #%d", number), resp, err)
	}
	logger.Debug("gh: updated %s#%d", c.FullName(), number)
	return issue, nil
}

// GetRepository fetches the repository metadata. It is used to validate a
// binding before it is saved.
func (c *Client) GetRepository(ctx context.Context) (*github.Repository, error) {
	repo, resp, err := c.gh.Repositories.Get(ctx, c.owner, c.repo)
	checkRateLimit(resp)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("get repository %s", c.FullName()), resp, err)
	}
	return repo, nil
}

// RateLimit reports the core API quota. Querying it does not consume quota.
func (c *Client) RateLimit(ctx context.Context) (*RateLimit, error) {
	limits, resp, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return nil, wrapError("get rate limit", resp, err)
	}
	core := limits.GetCore()
	if core == nil {
		return nil, fmt.Errorf("rate limit response has no core quota")
	}
	return &RateLimit{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Reset:     core.Reset.Time,
	}, nil
}
