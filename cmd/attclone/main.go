package main

// Must be first import - fixes Warp terminal delay before lipgloss loads
import _ "github.com/wahlandcase/attuned.cloner/internal/termfix"

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/wahlandcase/attuned.cloner/internal/app"
	"github.com/wahlandcase/attuned.cloner/internal/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	flagOrg         string
	flagDest        string
	flagBaseURL     string
	flagPatEnv      string
	flagPatUsername string
	flagConcurrency int
	dryRun          bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "attclone",
		Short: "TUI for cloning every repository of an Azure DevOps organization",
		RunE:  run,
	}

	rootCmd.Flags().StringVar(&flagOrg, "org", "", "Azure DevOps organization name")
	rootCmd.Flags().StringVar(&flagDest, "dest", "", "Directory to clone repositories into")
	rootCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "Azure DevOps base URL")
	rootCmd.Flags().StringVar(&flagPatEnv, "pat-env", "", "Environment variable holding the PAT")
	rootCmd.Flags().StringVar(&flagPatUsername, "pat-username", "", "Username embedded in clone URLs")
	rootCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Maximum clones running at once")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate operations without making changes")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags override the config file
	if flagOrg != "" {
		cfg.Azdo.Org = flagOrg
	}
	if flagDest != "" {
		cfg.Clone.Dest = flagDest
	}
	if flagBaseURL != "" {
		cfg.Azdo.BaseURL = flagBaseURL
	}
	if flagPatEnv != "" {
		cfg.Azdo.PatEnv = flagPatEnv
	}
	if flagPatUsername != "" {
		cfg.Azdo.PatUsername = flagPatUsername
	}
	if flagConcurrency > 0 {
		cfg.Clone.Concurrency = flagConcurrency
	}

	opts := app.Options{
		Org:         cfg.Azdo.Org,
		BaseURL:     cfg.Azdo.BaseURL,
		PatUsername: cfg.Azdo.PatUsername,
		Dest:        cfg.DestPath(),
		Concurrency: cfg.Clone.Concurrency,
		DryRun:      dryRun,
	}

	if !dryRun {
		if opts.Org == "" {
			return fmt.Errorf("no organization set: use --org or set org in %s", configPathHint())
		}
		opts.Pat = os.Getenv(cfg.Azdo.PatEnv)
		if opts.Pat == "" {
			return fmt.Errorf("no PAT found: set the %s environment variable", cfg.Azdo.PatEnv)
		}
		if _, err := exec.LookPath("git"); err != nil {
			return fmt.Errorf("git not found in PATH: %w", err)
		}
	}

	model := app.New(cfg, opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}

func configPathHint() string {
	path, err := config.Path()
	if err != nil {
		return "the config file"
	}
	return path
}
