package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JohanCodinha/ghsync/internal/config"
	"github.com/JohanCodinha/ghsync/internal/gh"
	"github.com/JohanCodinha/ghsync/internal/model"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file and create the database",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage the GitHub repository bound to a project",
}

var repoLinkCmd = &cobra.Command{
	Use:   "link <project> <owner/repo>",
	Short: "Bind a project to a GitHub repository",
	Long: `Bind a project to a GitHub repository and enable sync.

The repository may be given as owner/repo or as a GitHub URL. Access is
checked with the resolved token before the binding is saved.`,
	Args: cobra.ExactArgs(2),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		return linkRepo(cmd.Context(), e, args[0], args[1], token)
	}),
}

var repoDisableCmd = &cobra.Command{
	Use:   "disable <project>",
	Short: "Stop syncing a project without removing its binding",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		return setRepoActive(cmd.Context(), e, args[0], false)
	}),
}

var repoEnableCmd = &cobra.Command{
	Use:   "enable <project>",
	Short: "Resume syncing a disabled project",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		return setRepoActive(cmd.Context(), e, args[0], true)
	}),
}

var repoShowCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Show the repository bound to a project",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		return showRepo(cmd.Context(), e, args[0])
	}),
}

func init() {
	repoLinkCmd.Flags().String("token", "", "token stored with the binding (default: config, gh CLI, GITHUB_TOKEN)")

	repoCmd.AddCommand(repoLinkCmd, repoDisableCmd, repoEnableCmd, repoShowCmd)
	rootCmd.AddCommand(initCmd, repoCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()
	fmt.Fprintf(e.out, "database at %s\n", e.db.Path())
	return nil
}

func linkRepo(ctx context.Context, e *env, projectID, repoArg, token string) error {
	owner, name, err := gh.ParseRepo(repoArg)
	if err != nil {
		return err
	}

	binding := model.Repository{ProjectID: projectID, Owner: owner, Name: name, Token: token, Active: true}
	client, err := e.clientFor(binding)
	if err != nil {
		return err
	}
	remote, err := client.GetRepository(ctx)
	if err != nil {
		return fmt.Errorf("cannot access %s/%s: %w", owner, name, err)
	}
	binding.FullName = remote.GetFullName()
	binding.HTMLURL = remote.GetHTMLURL()

	saved, err := e.db.SaveRepository(ctx, binding)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "linked %s to %s\n", projectID, saved.FullName)
	return nil
}

func setRepoActive(ctx context.Context, e *env, projectID string, active bool) error {
	if err := e.db.SetRepositoryActive(ctx, projectID, active); err != nil {
		return err
	}
	state := "disabled"
	if active {
		state = "enabled"
	}
	fmt.Fprintf(e.out, "sync %s for %s\n", state, projectID)
	return nil
}

func showRepo(ctx context.Context, e *env, projectID string) error {
	repo, err := e.db.GetRepository(ctx, projectID)
	if err != nil {
		return err
	}
	if repo == nil {
		return fmt.Errorf("no repository linked to %s; run 'ghsync repo link %s <owner/repo>'", projectID, projectID)
	}
	printRepo(e.out, repo)
	return nil
}

func printRepo(w io.Writer, repo *model.Repository) {
	state := color.New(color.FgGreen).Sprint("active")
	if !repo.Active {
		state = color.New(color.FgYellow).Sprint("disabled")
	}
	fmt.Fprintf(w, "project:    %s\n", repo.ProjectID)
	fmt.Fprintf(w, "repository: %s (%s)\n", repo.FullName, state)
	if repo.HTMLURL != "" {
		fmt.Fprintf(w, "url:        %s\n", repo.HTMLURL)
	}
	token := "from config or gh CLI"
	if repo.Token != "" {
		token = "stored with binding"
	}
	fmt.Fprintf(w, "token:      %s\n", token)
	fmt.Fprintf(w, "last sync:  %s\n", sinceOrNever(repo.LastSyncAt))
	fmt.Fprintf(w, "linked:     %s\n", humanize.Time(repo.CreatedAt))
}
