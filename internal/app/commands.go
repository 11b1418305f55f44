package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wahlandcase/attuned.cloner/internal/azdo"
	"github.com/wahlandcase/attuned.cloner/internal/cloner"
	"github.com/wahlandcase/attuned.cloner/internal/creds"
	"github.com/wahlandcase/attuned.cloner/internal/git"
	"github.com/wahlandcase/attuned.cloner/internal/models"

	tea "github.com/charmbracelet/bubbletea"
)

// logBatchMsg carries every sink line that was waiting in the channel,
// oldest first
type logBatchMsg []string

// reposLoadedMsg carries the aggregated catalog (or the load error)
type reposLoadedMsg struct {
	repos  []models.Repository
	cloned map[string]bool
	err    error
}

// cloneFinishedMsg carries the outcome batch once every task finished
type cloneFinishedMsg struct {
	outcomes []models.CloneOutcome
}

// sendLog forwards a sink line without ever blocking the caller. When
// the buffer is full the line is dropped; the display tail is advisory.
func sendLog(ch chan string, line string) {
	select {
	case ch <- line:
	default:
	}
}

// listenForLogLines waits for the next sink line, then drains whatever
// else is already buffered into one batch. Draining in batches keeps
// the channel from filling up under a burst of clone output, where a
// one-line-per-Update subscription would fall behind and force sendLog
// to drop. Update re-issues this command after every logBatchMsg so the
// subscription stays alive.
func listenForLogLines(ch chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-ch
		if !ok {
			return nil
		}
		batch := []string{line}
		for {
			select {
			case next, ok := <-ch:
				if !ok {
					return logBatchMsg(batch)
				}
				batch = append(batch, next)
			default:
				return logBatchMsg(batch)
			}
		}
	}
}

// loadReposCmd fetches the full repository catalog and checks which
// repos already exist under the destination
func loadReposCmd(opts Options, logCh chan string) tea.Cmd {
	return func() tea.Msg {
		sink := func(line string) { sendLog(logCh, line) }

		if opts.DryRun {
			time.Sleep(600 * time.Millisecond)
			repos := fakeCatalog()
			sink(fmt.Sprintf("Loaded %d repositories.", len(repos)))
			return reposLoadedMsg{repos: repos, cloned: git.ClonedSet(opts.Dest, repos)}
		}

		client := azdo.NewClient(opts.Org, opts.Pat, opts.BaseURL)
		defer client.Close()

		repos, err := client.LoadRepositories(context.Background(), sink)
		if err != nil {
			return reposLoadedMsg{err: err}
		}
		return reposLoadedMsg{repos: repos, cloned: git.ClonedSet(opts.Dest, repos)}
	}
}

// startCloneCmd runs the clone batch and reports the outcomes when the
// whole batch is done. Per-repo progress arrives through the log channel.
func startCloneCmd(opts Options, repos []models.Repository, logCh chan string) tea.Cmd {
	return func() tea.Msg {
		sink := func(line string) { sendLog(logCh, line) }

		if opts.DryRun {
			outcomes := make([]models.CloneOutcome, 0, len(repos))
			for _, r := range repos {
				sink(fmt.Sprintf("→ CLONE %s: git clone --origin origin %s", r.FullName(), r.RemoteURL))
				time.Sleep(250 * time.Millisecond)
				sink(fmt.Sprintf("← CLONE %s: OK", r.FullName()))
				outcomes = append(outcomes, models.CloneOutcome{Repo: r, ExitCode: 0})
			}
			return cloneFinishedMsg{outcomes: outcomes}
		}

		o := cloner.New(opts.Dest, opts.Concurrency, opts.PatUsername, opts.Pat)
		outcomes := o.Run(context.Background(), repos, sink)
		return cloneFinishedMsg{outcomes: outcomes}
	}
}

func (m Model) handleReposLoaded(msg reposLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		masked := creds.Mask(msg.err.Error(), m.opts.Pat)
		if len(m.allRepos) > 0 {
			// Keep the previous catalog; surface the failure in the log
			m.appendLog("Refresh failed: " + masked)
			m.screen = ScreenRepoSelect
			return m, nil
		}
		m.errorMessage = masked
		m.screen = ScreenError
		return m, nil
	}

	m.allRepos = msg.repos
	m.cloned = msg.cloned
	m.selected = make(map[int]bool)
	m.cursor = 0
	m.applyFilter()
	m.screen = ScreenRepoSelect
	return m, nil
}

func (m Model) handleCloneFinished(msg cloneFinishedMsg) (tea.Model, tea.Cmd) {
	outcomes := msg.outcomes
	sort.Slice(outcomes, func(i, j int) bool {
		return strings.ToLower(outcomes[i].Repo.FullName()) < strings.ToLower(outcomes[j].Repo.FullName())
	})
	m.outcomes = outcomes

	if m.cloned == nil {
		m.cloned = make(map[string]bool)
	}
	for _, o := range outcomes {
		if o.Succeeded() && !m.opts.DryRun {
			m.cloned[o.Repo.RepoName] = true
		}
	}

	m.screen = ScreenSummary
	return m, nil
}

// fakeCatalog is the dry-run stand-in for the remote organization
func fakeCatalog() []models.Repository {
	main := "refs/heads/main"
	master := "refs/heads/master"
	return []models.Repository{
		models.NewRepository("Platform", "api-gateway", "https://dev.azure.com/fake/Platform/_git/api-gateway", &main),
		models.NewRepository("Platform", "auth-service", "https://dev.azure.com/fake/Platform/_git/auth-service", &main),
		models.NewRepository("Platform", "billing-service", "https://dev.azure.com/fake/Platform/_git/billing-service", &master),
		models.NewRepository("Platform", "notifications", "https://dev.azure.com/fake/Platform/_git/notifications", nil),
		models.NewRepository("Web", "customer-portal", "https://dev.azure.com/fake/Web/_git/customer-portal", &main),
		models.NewRepository("Web", "design-system", "https://dev.azure.com/fake/Web/_git/design-system", &main),
		models.NewRepository("Web", "marketing-site", "https://dev.azure.com/fake/Web/_git/marketing-site", &master),
		models.NewRepository("Data", "etl-pipelines", "https://dev.azure.com/fake/Data/_git/etl-pipelines", &main),
	}
}
