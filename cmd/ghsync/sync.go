package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JohanCodinha/ghsync/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync <project>",
	Short: "Reconcile a project with its GitHub repository",
	Long: `Reconcile a project with its GitHub repository.

  pull   copy remote issues into the local database
  push   send every local issue to GitHub, creating unlinked ones
  both   pull, then push (default)

Per-issue failures are reported and do not stop the run; the command exits
non-zero only when the run could not start.`,
	Args: cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		opts, err := syncOptions(cmd, e)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		return runSync(cmd.Context(), e, args[0], opts, asJSON)
	}),
}

func init() {
	addSyncFlags(syncCmd)
	rootCmd.AddCommand(syncCmd)
}

func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("direction", "d", "both", "pull, push or both")
	cmd.Flags().Bool("labels", true, "sync labels (default from config)")
	cmd.Flags().Bool("comments", true, "pull comments (default from config)")
	cmd.Flags().Bool("milestones", false, "sync milestones (not implemented, ignored)")
	cmd.Flags().Bool("dry-run", false, "list what would be synced without writing")
	cmd.Flags().Bool("json", false, "print the result as JSON")
}

// syncOptions takes the config defaults and applies the flags that were set.
func syncOptions(cmd *cobra.Command, e *env) (sync.Options, error) {
	direction, _ := cmd.Flags().GetString("direction")
	dir, err := sync.ParseDirection(direction)
	if err != nil {
		return sync.Options{}, err
	}

	opts := sync.Options{
		Direction:      dir,
		SyncLabels:     e.cfg.Sync.Labels,
		SyncComments:   e.cfg.Sync.Comments,
		SyncMilestones: e.cfg.Sync.Milestones,
	}
	flags := cmd.Flags()
	if flags.Changed("labels") {
		opts.SyncLabels, _ = flags.GetBool("labels")
	}
	if flags.Changed("comments") {
		opts.SyncComments, _ = flags.GetBool("comments")
	}
	if flags.Changed("milestones") {
		opts.SyncMilestones, _ = flags.GetBool("milestones")
	}
	opts.DryRun, _ = flags.GetBool("dry-run")
	return opts, nil
}

func runSync(ctx context.Context, e *env, projectID string, opts sync.Options, asJSON bool) error {
	runner := sync.NewRunner(e.db, e.db, e.trackerFactory())
	result, err := runner.Sync(ctx, projectID, opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(e.out, opts, result)
	return nil
}

func printResult(w io.Writer, opts sync.Options, result *sync.Result) {
	label := string(opts.Direction)
	if opts.DryRun {
		label += " (dry run)"
	}
	fmt.Fprintf(w, "%s %s: %d synced (%d created, %d updated), %d skipped\n",
		outcome(result.Success), label, result.Synced, result.Created, result.Updated, result.Skipped)

	for _, item := range result.Errors {
		fmt.Fprintf(w, "  %s %s\n", errorMark(), itemLocation(item))
		fmt.Fprintf(w, "      %s\n", item.Message)
	}
}
