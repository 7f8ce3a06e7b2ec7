package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"

	"github.com/JohanCodinha/ghsync/internal/md"
	"github.com/JohanCodinha/ghsync/internal/model"
	"github.com/JohanCodinha/ghsync/internal/store"
	"github.com/JohanCodinha/ghsync/internal/translate"
)

const defaultLabelColor = "ededed"

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Create, edit and inspect local issues",
}

var issueNewCmd = &cobra.Command{
	Use:   "new <project>",
	Short: "Create a local issue; it is sent to GitHub on the next push",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		f, err := readIssueFlags(cmd)
		if err != nil {
			return err
		}
		return newIssue(cmd.Context(), e, args[0], f)
	}),
}

var issueEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a local issue and mark it pending",
	Long: `Edit a local issue. Only the given fields change. The issue is marked
SYNC_PENDING so the next push sends it to GitHub.

With --from-file, title and body are read from a markdown document in the
format printed by 'ghsync issue show'.`,
	Args: cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		f, err := readIssueFlags(cmd)
		if err != nil {
			return err
		}
		return editIssue(cmd.Context(), e, args[0], f)
	}),
}

var issueListCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "List the issues of a project",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		return listIssues(cmd.Context(), e, args[0])
	}),
}

var issueShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print an issue as markdown",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		return showIssue(cmd.Context(), e, args[0])
	}),
}

func init() {
	for _, c := range []*cobra.Command{issueNewCmd, issueEditCmd} {
		c.Flags().String("title", "", "issue title")
		c.Flags().String("body", "", "issue body")
		c.Flags().String("assignee", "", "GitHub login of the assignee (empty clears on edit)")
		c.Flags().String("priority", "", "CRITICAL, HIGH, MEDIUM or LOW")
		c.Flags().String("severity", "", "BLOCKER, CRITICAL, MAJOR, NORMAL, MINOR or TRIVIAL")
		c.Flags().String("type", "", "BUG, FEATURE, ENHANCEMENT, TASK, DOCUMENTATION or QUESTION")
	}
	issueNewCmd.Flags().StringArray("label", nil, "label as name or name:rrggbb (repeatable)")
	issueEditCmd.Flags().String("status", "", "open or closed")
	issueEditCmd.Flags().String("from-file", "", "read title and body from a markdown file")

	issueCmd.AddCommand(issueNewCmd, issueEditCmd, issueListCmd, issueShowCmd)
	rootCmd.AddCommand(issueCmd)
}

// issueFlags holds the flags that were set. Unset flags are nil.
type issueFlags struct {
	title    *string
	body     *string
	assignee *string
	status   *string
	priority *string
	severity *string
	issueTyp *string
	labels   []string
	fromFile string
}

func readIssueFlags(cmd *cobra.Command) (issueFlags, error) {
	var f issueFlags
	get := func(name string) *string {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			return nil
		}
		v := flag.Value.String()
		return &v
	}
	f.title = get("title")
	f.body = get("body")
	f.assignee = get("assignee")
	f.status = get("status")
	f.priority = get("priority")
	f.severity = get("severity")
	f.issueTyp = get("type")
	if cmd.Flags().Lookup("label") != nil {
		labels, err := cmd.Flags().GetStringArray("label")
		if err != nil {
			return f, err
		}
		f.labels = labels
	}
	if cmd.Flags().Lookup("from-file") != nil {
		f.fromFile, _ = cmd.Flags().GetString("from-file")
	}
	return f, nil
}

// parseLabels turns name[:color] arguments into labels, validated the same
// way as labels pulled from GitHub.
func parseLabels(args []string) ([]model.Label, error) {
	remote := make([]*github.Label, 0, len(args))
	for _, arg := range args {
		name, color, found := strings.Cut(arg, ":")
		if !found {
			color = defaultLabelColor
		}
		remote = append(remote, &github.Label{
			Name:  github.String(strings.TrimSpace(name)),
			Color: github.String(strings.TrimPrefix(strings.TrimSpace(color), "#")),
		})
	}
	labels, err := translate.Labels(remote)
	if err != nil {
		return nil, fmt.Errorf("invalid label: %w", err)
	}
	return labels, nil
}

func assigneeRef(login string) model.UserRef {
	login = strings.TrimSpace(login)
	return model.UserRef{ID: login, Name: login}
}

func (f issueFlags) classification() (*model.Priority, *model.Severity, *model.IssueType, error) {
	var (
		priority *model.Priority
		severity *model.Severity
		typ      *model.IssueType
	)
	if f.priority != nil {
		p, err := model.ParsePriority(*f.priority)
		if err != nil {
			return nil, nil, nil, err
		}
		priority = &p
	}
	if f.severity != nil {
		s, err := model.ParseSeverity(*f.severity)
		if err != nil {
			return nil, nil, nil, err
		}
		severity = &s
	}
	if f.issueTyp != nil {
		t, err := model.ParseIssueType(*f.issueTyp)
		if err != nil {
			return nil, nil, nil, err
		}
		typ = &t
	}
	return priority, severity, typ, nil
}

func newIssue(ctx context.Context, e *env, projectID string, f issueFlags) error {
	if f.title == nil || strings.TrimSpace(*f.title) == "" {
		return fmt.Errorf("--title is required")
	}
	priority, severity, typ, err := f.classification()
	if err != nil {
		return err
	}
	labels, err := parseLabels(f.labels)
	if err != nil {
		return err
	}

	issue := model.Issue{
		ProjectID:  projectID,
		Title:      *f.title,
		Status:     model.StatusOpen,
		SyncStatus: model.SyncPending,
	}
	if repo, err := e.db.GetRepository(ctx, projectID); err == nil && repo != nil {
		issue.RepositoryOwner = repo.Owner
		issue.RepositoryName = repo.Name
	}
	if f.body != nil {
		issue.Body = *f.body
	}
	if f.assignee != nil && strings.TrimSpace(*f.assignee) != "" {
		issue.Assignee = assigneeRef(*f.assignee)
	}
	if priority != nil {
		issue.Priority = *priority
	}
	if severity != nil {
		issue.Severity = *severity
	}
	if typ != nil {
		issue.Type = *typ
	}

	saved, err := e.db.UpsertIssue(ctx, issue)
	if err != nil {
		return err
	}
	if err := e.db.ReplaceLabels(ctx, saved.ID, labels); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "created %s\n", saved.ID)
	return nil
}

func editIssue(ctx context.Context, e *env, id string, f issueFlags) error {
	issue, err := e.db.GetIssue(ctx, id)
	if err != nil {
		return err
	}
	if issue == nil {
		return fmt.Errorf("%w: %s", store.ErrIssueNotFound, id)
	}

	var update store.IssueUpdate
	if f.fromFile != "" {
		data, err := os.ReadFile(f.fromFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.fromFile, err)
		}
		doc, err := md.FromMarkdown(string(data))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", f.fromFile, err)
		}
		if doc.ID != "" && doc.ID != issue.ID {
			return fmt.Errorf("%s describes issue %s, not %s", f.fromFile, doc.ID, issue.ID)
		}
		changes := md.DetectChanges(*issue, doc)
		update.Title = changes.Title
		update.Body = changes.Body
	}

	if f.title != nil {
		if strings.TrimSpace(*f.title) == "" {
			return fmt.Errorf("title cannot be empty")
		}
		update.Title = f.title
	}
	if f.body != nil {
		update.Body = f.body
	}
	if f.status != nil {
		status, err := model.ParseIssueStatus(*f.status)
		if err != nil {
			return err
		}
		update.Status = &status
	}
	if f.assignee != nil {
		ref := model.UserRef{}
		if strings.TrimSpace(*f.assignee) != "" {
			ref = assigneeRef(*f.assignee)
		}
		update.Assignee = &ref
	}
	if update.Priority, update.Severity, update.Type, err = f.classification(); err != nil {
		return err
	}

	if update == (store.IssueUpdate{}) {
		fmt.Fprintln(e.out, "nothing to change")
		return nil
	}
	if err := e.db.UpdateLocal(ctx, issue.ID, update); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "updated %s\n", issue.ID)
	return nil
}

func listIssues(ctx context.Context, e *env, projectID string) error {
	issues, err := e.db.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Fprintf(e.out, "no issues in %s\n", projectID)
		return nil
	}
	for _, issue := range issues {
		fmt.Fprintln(e.out, issueLine(issue))
	}
	return nil
}

func showIssue(ctx context.Context, e *env, id string) error {
	issue, err := e.db.GetIssue(ctx, id)
	if err != nil {
		return err
	}
	if issue == nil {
		return fmt.Errorf("%w: %s", store.ErrIssueNotFound, id)
	}
	comments, err := e.db.ListComments(ctx, issue.ID)
	if err != nil {
		return err
	}
	fmt.Fprint(e.out, md.ToMarkdown(*issue, comments))
	return nil
}
