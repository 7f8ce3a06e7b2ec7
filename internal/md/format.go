// Package md renders local issues as markdown with YAML frontmatter and
// parses edited documents back.
package md

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JohanCodinha/ghsync/internal/model"
)

var (
	// ErrNoFrontmatter is returned when a document does not start with a --- block.
	ErrNoFrontmatter = errors.New("missing frontmatter")
)

const (
	delimiter       = "---"
	bodyHeading     = "## Body"
	commentsHeading = "## Comments"
)

// Frontmatter is the YAML header of an issue document. It is informational:
// only Title and Body are read back as edits.
type Frontmatter struct {
	ID           string   `yaml:"id"`
	Project      string   `yaml:"project,omitempty"`
	RemoteNumber int      `yaml:"remote_number,omitempty"`
	URL          string   `yaml:"url,omitempty"`
	Status       string   `yaml:"status,omitempty"`
	Priority     string   `yaml:"priority,omitempty"`
	Severity     string   `yaml:"severity,omitempty"`
	Type         string   `yaml:"type,omitempty"`
	Assignee     string   `yaml:"assignee,omitempty"`
	Reporter     string   `yaml:"reporter,omitempty"`
	Labels       []string `yaml:"labels,omitempty"`
	SyncStatus   string   `yaml:"sync_status,omitempty"`
	SyncError    string   `yaml:"sync_error,omitempty"`
	LastSyncAt   string   `yaml:"last_sync_at,omitempty"`
	CreatedAt    string   `yaml:"created_at,omitempty"`
	UpdatedAt    string   `yaml:"updated_at,omitempty"`
	ClosedAt     string   `yaml:"closed_at,omitempty"`
}

// Document is a parsed issue document.
type Document struct {
	Frontmatter
	Title string
	Body  string
}

// ToMarkdown renders the issue, followed by its comments when there are any.
func ToMarkdown(issue model.Issue, comments []model.Comment) string {
	fm := Frontmatter{
		ID:         issue.ID,
		Project:    issue.ProjectID,
		URL:        issue.RemoteHTMLURL,
		Status:     string(issue.Status),
		Priority:   string(issue.Priority),
		Severity:   string(issue.Severity),
		Type:       string(issue.Type),
		Assignee:   issue.Assignee.Name,
		Reporter:   issue.Reporter.Name,
		Labels:     issue.LabelNames(),
		SyncStatus: string(issue.SyncStatus),
		LastSyncAt: formatTime(issue.LastSyncAt),
		CreatedAt:  formatTime(&issue.CreatedAt),
		UpdatedAt:  formatTime(&issue.UpdatedAt),
		ClosedAt:   formatTime(issue.ClosedAt),
	}
	if issue.RemoteNumber != nil {
		fm.RemoteNumber = *issue.RemoteNumber
	}
	if issue.SyncError != nil {
		fm.SyncError = *issue.SyncError
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	// Encoding a flat struct of strings cannot fail.
	_ = enc.Encode(fm)
	_ = enc.Close()
	buf.WriteString(delimiter + "\n\n")

	fmt.Fprintf(&buf, "# %s\n\n", issue.Title)
	buf.WriteString(bodyHeading + "\n\n")
	if issue.Body != "" {
		buf.WriteString(issue.Body)
		buf.WriteString("\n")
	}

	if len(comments) > 0 {
		buf.WriteString("\n" + commentsHeading + "\n")
		for _, c := range comments {
			author := c.Author.Name
			if author == "" {
				author = "local"
			}
			fmt.Fprintf(&buf, "\n### %s - %s\n\n", c.CreatedAt.UTC().Format(time.RFC3339), author)
			buf.WriteString(c.Content)
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

// FromMarkdown parses a document written by ToMarkdown, possibly edited.
// The body is everything under "## Body" up to "## Comments" or the end.
func FromMarkdown(content string) (*Document, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, delimiter+"\n") {
		return nil, ErrNoFrontmatter
	}
	rest := content[len(delimiter)+1:]

	end := strings.Index(rest, "\n"+delimiter+"\n")
	if end == -1 {
		if !strings.HasSuffix(rest, "\n"+delimiter) {
			return nil, fmt.Errorf("%w: no closing %s", ErrNoFrontmatter, delimiter)
		}
		end = len(rest) - len(delimiter) - 1
	}

	var doc Document
	if err := yaml.Unmarshal([]byte(rest[:end]), &doc.Frontmatter); err != nil {
		return nil, fmt.Errorf("invalid frontmatter: %w", err)
	}

	after := ""
	if start := end + len(delimiter) + 2; start < len(rest) {
		after = rest[start:]
	}

	lines := strings.Split(after, "\n")
	bodyStart := -1
	for i, line := range lines {
		if doc.Title == "" && strings.HasPrefix(line, "# ") {
			doc.Title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
		if strings.TrimRight(line, " ") == bodyHeading {
			bodyStart = i + 1
			break
		}
	}
	if bodyStart == -1 {
		return &doc, nil
	}

	bodyLines := lines[bodyStart:]
	for i, line := range bodyLines {
		if strings.TrimRight(line, " ") == commentsHeading {
			bodyLines = bodyLines[:i]
			break
		}
	}
	doc.Body = strings.Trim(strings.Join(bodyLines, "\n"), "\n")
	return &doc, nil
}

// Changes lists the editable fields that differ. Nil means unchanged.
type Changes struct {
	Title *string
	Body  *string
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return c.Title == nil && c.Body == nil
}

// DetectChanges compares an edited document with the stored issue. Trailing
// newlines are not significant.
func DetectChanges(issue model.Issue, edited *Document) Changes {
	var changes Changes
	if edited.Title != issue.Title {
		title := edited.Title
		changes.Title = &title
	}
	if strings.TrimRight(edited.Body, "\n") != strings.TrimRight(issue.Body, "\n") {
		body := edited.Body
		changes.Body = &body
	}
	return changes
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
