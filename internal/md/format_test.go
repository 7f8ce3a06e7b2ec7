package md

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JohanCodinha/ghsync/internal/model"
)

func sampleIssue() model.Issue {
	number := 1234
	synced := time.Date(2026, 1, 10, 16, 3, 0, 0, time.UTC)
	return model.Issue{
		ID:            "4f1c2a9e-0000-4000-8000-000000000001",
		ProjectID:     "proj-1",
		RemoteNumber:  &number,
		RemoteHTMLURL: "https://github.com/owner/repo/issues/1234",
		Title:         "Crash on startup",
		Body:          "Application crashes immediately after login.",
		Status:        model.StatusOpen,
		Priority:      model.PriorityHigh,
		Assignee:      model.UserRef{ID: "alice", Name: "alice"},
		Reporter:      model.UserRef{ID: "bob", Name: "bob"},
		Labels:        []model.Label{{Name: "bug", Color: "#d73a4a"}, {Name: "p1", Color: "#000000"}},
		SyncStatus:    model.SyncSynced,
		LastSyncAt:    &synced,
		CreatedAt:     time.Date(2026, 1, 8, 9, 15, 0, 0, time.UTC),
		UpdatedAt:     synced,
	}
}

func TestToMarkdown_ProducesValidFrontmatter(t *testing.T) {
	result := ToMarkdown(sampleIssue(), nil)

	if !strings.HasPrefix(result, "---\n") {
		t.Error("markdown should start with ---")
	}

	parts := strings.SplitN(result, "---", 3)
	if len(parts) < 3 {
		t.Fatal("could not extract frontmatter")
	}
	frontmatter := parts[1]

	expected := []string{
		"id: 4f1c2a9e-0000-4000-8000-000000000001",
		"project: proj-1",
		"remote_number: 1234",
		"url: https://github.com/owner/repo/issues/1234",
		"status: OPEN",
		"priority: HIGH",
		"assignee: alice",
		"reporter: bob",
		"sync_status: SYNCED",
		"- bug",
		"- p1",
	}
	for _, want := range expected {
		if !strings.Contains(frontmatter, want) {
			t.Errorf("frontmatter should contain %q, got:\n%s", want, frontmatter)
		}
	}
	if strings.Contains(frontmatter, "closed_at") {
		t.Error("open issue should not carry closed_at")
	}
	if strings.Contains(frontmatter, "sync_error") {
		t.Error("sync_error should be omitted when empty")
	}
}

func TestToMarkdown_TitleAndBody(t *testing.T) {
	result := ToMarkdown(sampleIssue(), nil)

	if !strings.Contains(result, "# Crash on startup\n") {
		t.Error("expected title heading not found")
	}
	if !strings.Contains(result, "## Body\n\nApplication crashes immediately after login.\n") {
		t.Errorf("expected body section, got:\n%s", result)
	}
	if strings.Contains(result, "## Comments") {
		t.Error("should not have ## Comments section without comments")
	}
}

func TestToMarkdown_EmptyBody(t *testing.T) {
	issue := sampleIssue()
	issue.Body = ""

	result := ToMarkdown(issue, []model.Comment{})
	if !strings.Contains(result, "## Body") {
		t.Error("should still contain ## Body section even when body is empty")
	}
	if strings.Contains(result, "## Comments") {
		t.Error("should not have ## Comments section with empty comments slice")
	}
}

func TestToMarkdown_WithComments(t *testing.T) {
	comments := []model.Comment{
		{Content: "Can reproduce.", Author: model.UserRef{Name: "alice"}, CreatedAt: time.Date(2026, 1, 10, 14, 12, 0, 0, time.UTC)},
		{Content: "Line one\nLine two", CreatedAt: time.Date(2026, 1, 10, 16, 3, 0, 0, time.UTC)},
	}

	result := ToMarkdown(sampleIssue(), comments)

	checks := []string{
		"## Comments",
		"### 2026-01-10T14:12:00Z - alice\n\nCan reproduce.",
		"### 2026-01-10T16:03:00Z - local\n\nLine one\nLine two",
	}
	for _, want := range checks {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in:\n%s", want, result)
		}
	}
	if strings.Index(result, "alice\n\nCan reproduce") > strings.Index(result, "Line one") {
		t.Error("comments should keep their order")
	}
}

func TestToMarkdown_SyncFailure(t *testing.T) {
	issue := sampleIssue()
	msg := "PATCH: 502 Bad Gateway"
	issue.SyncStatus = model.SyncFailed
	issue.SyncError = &msg

	result := ToMarkdown(issue, nil)
	if !strings.Contains(result, "sync_status: SYNC_FAILED") {
		t.Error("expected failed sync status")
	}
	if !strings.Contains(result, "sync_error:") || !strings.Contains(result, "502 Bad Gateway") {
		t.Errorf("expected sync error in:\n%s", result)
	}
}

func TestFromMarkdown_ParsesFrontmatter(t *testing.T) {
	content := `---
id: abc
project: proj-1
remote_number: 7
status: CLOSED
labels:
  - bug
---

# Test Issue

## Body

Body text
`

	doc, err := FromMarkdown(content)
	if err != nil {
		t.Fatalf("FromMarkdown failed: %v", err)
	}
	if doc.ID != "abc" || doc.Project != "proj-1" || doc.RemoteNumber != 7 || doc.Status != "CLOSED" {
		t.Errorf("unexpected frontmatter: %+v", doc.Frontmatter)
	}
	if len(doc.Labels) != 1 || doc.Labels[0] != "bug" {
		t.Errorf("unexpected labels: %v", doc.Labels)
	}
	if doc.Title != "Test Issue" {
		t.Errorf("expected title %q, got %q", "Test Issue", doc.Title)
	}
	if doc.Body != "Body text" {
		t.Errorf("expected body %q, got %q", "Body text", doc.Body)
	}
}

func TestFromMarkdown_Body(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "multiline",
			content: "---\nid: 1\n---\n\n# T\n\n## Body\n\nFirst paragraph.\n\nSecond paragraph.\n",
			want:    "First paragraph.\n\nSecond paragraph.",
		},
		{
			name:    "code block with heading-like lines",
			content: "---\nid: 1\n---\n\n# T\n\n## Body\n\n```sh\n# not a title\n```\n",
			want:    "```sh\n# not a title\n```",
		},
		{
			name:    "ends at comments",
			content: "---\nid: 1\n---\n\n# T\n\n## Body\n\nThe body.\n\n## Comments\n\n### 2026-01-10T14:12:00Z - alice\n\nhi\n",
			want:    "The body.",
		},
		{
			name:    "internal whitespace kept",
			content: "---\nid: 1\n---\n\n# T\n\n## Body\n\n  indented\n\n\n\ttabbed\n",
			want:    "  indented\n\n\n\ttabbed",
		},
		{
			name:    "missing body section",
			content: "---\nid: 1\n---\n\n# T\n\nSome content but no body heading",
			want:    "",
		},
		{
			name:    "crlf",
			content: "---\r\nid: 1\r\n---\r\n\r\n# T\r\n\r\n## Body\r\n\r\nwindows\r\n",
			want:    "windows",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := FromMarkdown(tt.content)
			if err != nil {
				t.Fatalf("FromMarkdown failed: %v", err)
			}
			if doc.Body != tt.want {
				t.Errorf("body = %q, want %q", doc.Body, tt.want)
			}
			if doc.Title != "T" {
				t.Errorf("title = %q, want %q", doc.Title, "T")
			}
		})
	}
}

func TestFromMarkdown_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no frontmatter", content: "# Title\n\n## Body\n\ntext"},
		{name: "unterminated frontmatter", content: "---\nid: 1\n# Title\n"},
		{name: "malformed yaml", content: "---\nid: [1\n---\n\n# T\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromMarkdown(tt.content); err == nil {
				t.Error("expected an error")
			}
		})
	}

	_, err := FromMarkdown("plain text")
	if !errors.Is(err, ErrNoFrontmatter) {
		t.Errorf("expected ErrNoFrontmatter, got %v", err)
	}
}

func TestRoundTrip_PreservesData(t *testing.T) {
	issue := sampleIssue()
	issue.Body = "This is the body content.\n\nWith multiple paragraphs."
	comments := []model.Comment{{Content: "## Body inside a comment", CreatedAt: issue.CreatedAt}}

	doc, err := FromMarkdown(ToMarkdown(issue, comments))
	if err != nil {
		t.Fatalf("failed to parse markdown: %v", err)
	}

	if doc.ID != issue.ID {
		t.Errorf("ID not preserved: %q", doc.ID)
	}
	if doc.RemoteNumber != 1234 {
		t.Errorf("remote number not preserved: %d", doc.RemoteNumber)
	}
	if doc.CreatedAt != "2026-01-08T09:15:00Z" {
		t.Errorf("created_at not preserved: %q", doc.CreatedAt)
	}
	if doc.Title != issue.Title {
		t.Errorf("Title not preserved: %q", doc.Title)
	}
	if doc.Body != issue.Body {
		t.Errorf("Body not preserved:\nexpected: %q\ngot: %q", issue.Body, doc.Body)
	}
	if changes := DetectChanges(issue, doc); !changes.Empty() {
		t.Errorf("round trip should have no changes, got %+v", changes)
	}
}

func TestDetectChanges(t *testing.T) {
	issue := sampleIssue()

	tests := []struct {
		name      string
		title     string
		body      string
		wantTitle bool
		wantBody  bool
	}{
		{name: "identical", title: issue.Title, body: issue.Body},
		{name: "trailing newline ignored", title: issue.Title, body: issue.Body + "\n\n"},
		{name: "title", title: "Crash on login", body: issue.Body, wantTitle: true},
		{name: "body", title: issue.Title, body: "Different", wantBody: true},
		{name: "both", title: "x", body: "y", wantTitle: true, wantBody: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := DetectChanges(issue, &Document{Title: tt.title, Body: tt.body})
			if (changes.Title != nil) != tt.wantTitle {
				t.Errorf("title changed = %v, want %v", changes.Title != nil, tt.wantTitle)
			}
			if (changes.Body != nil) != tt.wantBody {
				t.Errorf("body changed = %v, want %v", changes.Body != nil, tt.wantBody)
			}
			if tt.wantTitle && *changes.Title != tt.title {
				t.Errorf("title = %q, want %q", *changes.Title, tt.title)
			}
		})
	}
}
