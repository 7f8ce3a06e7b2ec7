package gh

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohanCodinha/ghsync/internal/logger"
)

// =============================================================================
// Mock Server Tests (Unit Tests)
// =============================================================================

func newTestIssue(number int, title, state string) *github.Issue {
	return &github.Issue{
		Number: github.Int(number),
		Title:  github.String(title),
		Body:   github.String("Body for " + title),
		State:  github.String(state),
		User:   &github.User{ID: github.Int64(7), Login: github.String("testuser")},
	}
}

func TestListIssues_Pagination(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()

	for i := 1; i <= 9; i++ {
		mockGH.AddIssue(newTestIssue(i, fmt.Sprintf("Issue #%d", i), "open"))
	}
	mockGH.SetIssuesPerPage(3)

	issues, err := mockGH.Client("test-token").ListIssues(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 9)

	seen := make(map[int]bool)
	for _, issue := range issues {
		seen[issue.GetNumber()] = true
	}
	for i := 1; i <= 9; i++ {
		assert.True(t, seen[i], "missing issue #%d", i)
	}
	assert.Equal(t, 3, mockGH.ListCalls())
}

func TestListIssues_IncludesClosedAndSkipsPullRequests(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()

	mockGH.AddIssue(newTestIssue(1, "open one", "open"))
	mockGH.AddIssue(newTestIssue(2, "closed one", "closed"))
	pr := newTestIssue(3, "a pull request", "open")
	pr.PullRequestLinks = &github.PullRequestLinks{URL: github.String("https://api.github.com/repos/owner/repo/pulls/3")}
	mockGH.AddIssue(pr)

	issues, err := mockGH.Client("").ListIssues(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].GetNumber())
	assert.Equal(t, "closed", issues[1].GetState())
}

func TestListIssues_Empty(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()

	issues, err := mockGH.Client("test-token").ListIssues(context.Background())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestListIssues_UnknownRepository(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()

	client, err := NewWithBaseURL("test-token", mockGH.URL, "owner", "missing")
	require.NoError(t, err)

	_, err = client.ListIssues(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "owner/missing")
}

func TestListIssues_Unauthorized(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()
	mockGH.RequireToken("right-token")

	_, err := mockGH.Client("wrong-token").ListIssues(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = mockGH.Client("right-token").ListIssues(context.Background())
	assert.NoError(t, err)
}

func TestListIssues_RateLimited(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()
	mockGH.SetNextError(http.StatusTooManyRequests, `{"message":"API rate limit exceeded"}`)

	_, err := mockGH.Client("test-token").ListIssues(context.Background())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestListIssues_FillsServerFields(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()
	mockGH.AddIssue(newTestIssue(42, "Fix crash", "open"))

	issues, err := mockGH.Client("test-token").ListIssues(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, "Fix crash", issue.GetTitle())
	assert.Equal(t, "testuser", issue.GetUser().GetLogin())
	assert.Equal(t, "https://github.com/owner/repo/issues/42", issue.GetHTMLURL())
	assert.NotZero(t, issue.GetID())
}

func TestCreateIssue_Success(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()
	mockGH.AddIssue(newTestIssue(4, "existing", "open"))

	labels := []string{"bug", "ui"}
	created, err := mockGH.Client("test-token").CreateIssue(context.Background(), &github.IssueRequest{
		Title:  github.String("New issue"),
		Body:   github.String("Details"),
		Labels: &labels,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, created.GetNumber())
	assert.Equal(t, "open", created.GetState())

	stored := mockGH.GetIssue(5)
	require.NotNil(t, stored)
	assert.Equal(t, "Details", stored.GetBody())
	require.Len(t, stored.Labels, 2)
	assert.Equal(t, "bug", stored.Labels[0].GetName())
	assert.Equal(t, 1, mockGH.Mutations())
}

func TestCreateIssue_Error(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()
	mockGH.FailCreates("rejected", http.StatusUnprocessableEntity, "Validation Failed")

	_, err := mockGH.Client("test-token").CreateIssue(context.Background(), &github.IssueRequest{Title: github.String("rejected")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "Validation Failed")
	assert.Empty(t, mockGH.Issues())
}

func TestUpdateIssue_Success(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()
	mockGH.AddIssue(newTestIssue(42, "Original Title", "open"))

	labels := []string{"wontfix"}
	updated, err := mockGH.Client("test-token").UpdateIssue(context.Background(), 42, &github.IssueRequest{
		Body:   github.String("New updated body with special chars: <>&\""),
		State:  github.String("closed"),
		Labels: &labels,
	})
	require.NoError(t, err)
	assert.Equal(t, "closed", updated.GetState())

	stored := mockGH.GetIssue(42)
	assert.Equal(t, "Original Title", stored.GetTitle())
	assert.Equal(t, "New updated body with special chars: <>&\"", stored.GetBody())
	assert.NotNil(t, stored.ClosedAt)
	require.Len(t, stored.Labels, 1)
	assert.Equal(t, "wontfix", stored.Labels[0].GetName())
}

func TestUpdateIssue_NotFound(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()

	_, err := mockGH.Client("test-token").UpdateIssue(context.Background(), 999, &github.IssueRequest{Body: github.String("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "update issue #999")
}

func TestUpdateIssue_ValidationError(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()
	mockGH.AddIssue(newTestIssue(42, "Test Issue", "open"))
	mockGH.FailUpdates(42, http.StatusUnprocessableEntity, "Validation Failed")

	client := mockGH.Client("test-token")
	_, err := client.UpdateIssue(context.Background(), 42, &github.IssueRequest{Body: github.String("x")})
	assert.ErrorIs(t, err, ErrValidation)

	mockGH.FailUpdates(42, 0, "")
	_, err = client.UpdateIssue(context.Background(), 42, &github.IssueRequest{Body: github.String("x")})
	assert.NoError(t, err)
}

func TestListComments_Pagination(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()
	mockGH.AddIssue(newTestIssue(1, "with comments", "open"))
	for i := 1; i <= 5; i++ {
		mockGH.AddComment(1, &github.IssueComment{
			Body: github.String(fmt.Sprintf("Comment %d", i)),
			User: &github.User{Login: github.String("commenter")},
		})
	}
	mockGH.SetIssuesPerPage(2)

	comments, err := mockGH.Client("test-token").ListComments(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, comments, 5)
	for i, c := range comments {
		assert.Equal(t, fmt.Sprintf("Comment %d", i+1), c.GetBody())
		assert.NotZero(t, c.GetID())
	}
}

func TestListComments_Empty(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()
	mockGH.AddIssue(newTestIssue(1, "quiet", "open"))

	comments, err := mockGH.Client("test-token").ListComments(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestRateLimit(t *testing.T) {
	mockGH := NewMockServer("owner", "repo")
	defer mockGH.Close()
	reset := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mockGH.SetRateLimit(RateLimit{Limit: 5000, Remaining: 1234, Reset: reset})

	rl, err := mockGH.Client("test-token").RateLimit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5000, rl.Limit)
	assert.Equal(t, 1234, rl.Remaining)
	assert.True(t, rl.Reset.Equal(reset), "reset = %v", rl.Reset)
}

func TestGetRepository(t *testing.T) {
	mockGH := NewMockServer("acme", "app")
	defer mockGH.Close()

	repo, err := mockGH.Client("test-token").GetRepository(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acme/app", repo.GetFullName())
	assert.Equal(t, "https://github.com/acme/app", repo.GetHTMLURL())
}

func TestNewWithBaseURL_AddsTrailingSlash(t *testing.T) {
	client, err := NewWithBaseURL("", "http://localhost:9999/api", "o", "r")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/api/", client.gh.BaseURL.String())
	assert.Equal(t, "o/r", client.FullName())
}

func TestParseRepo(t *testing.T) {
	tests := []struct {
		input   string
		owner   string
		repo    string
		wantErr bool
	}{
		{"acme/app", "acme", "app", false},
		{" acme/app ", "acme", "app", false},
		{"https://github.com/acme/app", "acme", "app", false},
		{"https://github.com/acme/app.git", "acme", "app", false},
		{"git@github.com:acme/my.repo.git", "acme", "my.repo", false},
		{"acme", "", "", true},
		{"acme/app/extra", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			owner, repo, err := ParseRepo(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}

// =============================================================================
// checkRateLimit Tests
// =============================================================================

func TestCheckRateLimit(t *testing.T) {
	tests := []struct {
		name     string
		rate     github.Rate
		wantWarn bool
	}{
		{"exhausted", github.Rate{Remaining: 0, Reset: github.Timestamp{Time: time.Now().Add(time.Hour)}}, true},
		{"remaining", github.Rate{Remaining: 10, Reset: github.Timestamp{Time: time.Now().Add(time.Hour)}}, false},
		{"no headers", github.Rate{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger.SetOutput(&buf)
			logger.SetLevel(logger.LevelWarn)
			defer func() {
				logger.SetOutput(os.Stderr)
				logger.SetLevel(logger.LevelInfo)
			}()

			checkRateLimit(&github.Response{Response: &http.Response{}, Rate: tt.rate})

			if tt.wantWarn {
				assert.Contains(t, buf.String(), "WARN")
				assert.Contains(t, buf.String(), "rate limit exceeded")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}

	checkRateLimit(nil)
}

// =============================================================================
// getTokenFromGhConfigPath Tests
// =============================================================================

func TestGetTokenFromGhConfigPath(t *testing.T) {
	tests := []struct {
		name      string
		hostsYml  string
		wantToken string
		wantErr   string
	}{
		{
			name: "valid config",
			hostsYml: `github.com:
    oauth_token: test-token-12345
    user: testuser
`,
			wantToken: "test-token-12345",
		},
		{
			name: "multiple hosts",
			hostsYml: `gitlab.com:
    oauth_token: gitlab-token
github.com:
    oauth_token: github-token
`,
			wantToken: "github-token",
		},
		{
			name: "missing oauth token",
			hostsYml: `github.com:
    user: testuser
`,
			wantErr: "no oauth_token found",
		},
		{
			name: "empty oauth token",
			hostsYml: `github.com:
    oauth_token: ""
`,
			wantErr: "no oauth_token found",
		},
		{
			name: "no github host",
			hostsYml: `gitlab.com:
    oauth_token: gitlab-token
`,
			wantErr: "no oauth_token found",
		},
		{
			name: "malformed yaml",
			hostsYml: `github.com:
    oauth_token: [invalid yaml
    not proper: indentation
`,
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "hosts.yml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.hostsYml), 0644))

			token, err := getTokenFromGhConfigPath(configPath)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestGetTokenFromGhConfigPath_MissingFile(t *testing.T) {
	token, err := getTokenFromGhConfigPath(filepath.Join(t.TempDir(), "nonexistent", "hosts.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
	assert.Empty(t, token)
}

// =============================================================================
// Integration Tests (require real GitHub token)
// =============================================================================

func TestGetToken(t *testing.T) {
	if os.Getenv("GHSYNC_LIVE_TESTS") == "" {
		t.Skip("Skipping: set GHSYNC_LIVE_TESTS to query the real GitHub API")
	}
	token, err := GetToken()
	if err != nil {
		t.Skipf("Skipping: no GitHub token available (%v)", err)
	}
	require.NotEmpty(t, token)

	rl, err := New(token, "google", "go-github").RateLimit(context.Background())
	require.NoError(t, err)
	assert.Positive(t, rl.Limit)
}
