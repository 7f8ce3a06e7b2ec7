package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JohanCodinha/ghsync/internal/logger"
	"github.com/JohanCodinha/ghsync/internal/model"
	"github.com/JohanCodinha/ghsync/internal/sync"
)

var statusCmd = &cobra.Command{
	Use:   "status <project>",
	Short: "Show sync health of a project and the GitHub rate limit",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return showStatus(cmd.Context(), e, args[0], asJSON)
	}),
}

func init() {
	statusCmd.Flags().Bool("json", false, "print the status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func showStatus(ctx context.Context, e *env, projectID string, asJSON bool) error {
	var limits sync.RateLimiter
	repo, err := e.db.GetRepository(ctx, projectID)
	if err != nil {
		return err
	}
	if repo != nil {
		client, err := e.clientFor(*repo)
		if err != nil {
			logger.Debug("gh: no client for rate limit: %v", err)
		} else {
			limits = client
		}
	}

	status, err := sync.NewReporter(e.db, limits).Status(ctx, projectID)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}
	printStatus(e.out, repo, status)
	return nil
}

func printStatus(w io.Writer, repo *model.Repository, status *sync.Status) {
	fmt.Fprintf(w, "project:    %s\n", status.ProjectID)
	if repo != nil {
		fmt.Fprintf(w, "repository: %s\n", repo.FullName)
	} else {
		fmt.Fprintf(w, "repository: %s\n", color.New(color.FgYellow).Sprint("not linked"))
	}
	fmt.Fprintf(w, "last sync:  %s\n", sinceOrNever(status.LastSyncAt))
	fmt.Fprintf(w, "issues:     %d\n", status.Total)
	for _, s := range model.AllSyncStatuses {
		fmt.Fprintf(w, "  %-13s %d\n", syncStatusLabel(s), status.Counts[s])
	}

	switch {
	case status.RateLimit != nil:
		rl := status.RateLimit
		fmt.Fprintf(w, "rate limit: %s/%s remaining, resets %s\n",
			humanize.Comma(int64(rl.Remaining)), humanize.Comma(int64(rl.Limit)), humanize.Time(rl.Reset))
	case status.RateLimitError != "":
		fmt.Fprintf(w, "rate limit: %s\n", color.New(color.FgYellow).Sprint(status.RateLimitError))
	}
}

func sinceOrNever(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return humanize.Time(*t)
}
