// Package main provides the CLI entrypoint for ghsync.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JohanCodinha/ghsync/internal/config"
	"github.com/JohanCodinha/ghsync/internal/gh"
	"github.com/JohanCodinha/ghsync/internal/logger"
	"github.com/JohanCodinha/ghsync/internal/model"
	"github.com/JohanCodinha/ghsync/internal/store"
	"github.com/JohanCodinha/ghsync/internal/sync"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ghsync",
	Short: "Synchronize a local issue database with GitHub",
	Long: `ghsync keeps issues in a local SQLite database and reconciles them
with the issues of a GitHub repository: pull remote changes, push local
edits, or both.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/ghsync/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}

// env is what every command needs once config is loaded.
type env struct {
	cfg *config.Config
	db  *store.DB
	out io.Writer

	// newClient builds a GitHub client for a repository. Replaced in tests.
	newClient func(owner, repo, token string) (*gh.Client, error)
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

// loadEnv reads config, sets up logging and opens the database. The caller
// must close the returned env.
func loadEnv(cmd *cobra.Command) (*env, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(cfg.Level())
	if verbose {
		logger.SetLevel(logger.LevelDebug)
	}
	if cfg.LogFile != "" {
		if err := logger.SetLogFile(cfg.LogOptions()); err != nil {
			return nil, err
		}
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Close()
		return nil, err
	}

	return &env{
		cfg:       cfg,
		db:        db,
		out:       cmd.OutOrStdout(),
		newClient: newGitHubClient,
	}, nil
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		logger.Warn("store: failed to close database: %v", err)
	}
	logger.Close()
}

func newGitHubClient(owner, repo, token string) (*gh.Client, error) {
	return gh.New(token, owner, repo), nil
}

// token picks the binding's token, then the configured one, then whatever
// the gh CLI or GITHUB_TOKEN provide.
func (e *env) token(bindingToken string) (string, error) {
	if bindingToken != "" {
		return bindingToken, nil
	}
	if e.cfg.GitHubToken != "" {
		return e.cfg.GitHubToken, nil
	}
	token, err := gh.GetToken()
	if err != nil {
		return "", fmt.Errorf("failed to get GitHub token: %w\nRun 'gh auth login' or set github_token", err)
	}
	return token, nil
}

func (e *env) clientFor(repo model.Repository) (*gh.Client, error) {
	token, err := e.token(repo.Token)
	if err != nil {
		return nil, err
	}
	return e.newClient(repo.Owner, repo.Name, token)
}

func (e *env) trackerFactory() sync.TrackerFactory {
	return func(repo model.Repository) (sync.Tracker, error) {
		client, err := e.clientFor(repo)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// withEnv runs fn with a loaded env and closes it afterwards.
func withEnv(fn func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()
		return fn(cmd, e, args)
	}
}
