// Package cloner runs git clone for a batch of repositories with bounded
// concurrency, streaming masked output lines to a caller-supplied sink.
package cloner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wahlandcase/attuned.cloner/internal/creds"
	"github.com/wahlandcase/attuned.cloner/internal/models"

	"golang.org/x/sync/semaphore"
)

// Orchestrator clones repos with an embedded PAT. Repos that already
// exist under Dest are skipped, never touched.
type Orchestrator struct {
	// Dest is the directory clones are created under
	Dest string
	// Username embedded alongside the PAT in clone URLs
	Username string

	pat string
	sem *semaphore.Weighted

	// runGit launches the clone process; swapped out in tests
	runGit func(ctx context.Context, authURL, target string, emit func(string)) int
}

// New creates an Orchestrator running at most concurrency clones at once
func New(dest string, concurrency int, username, pat string) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	o := &Orchestrator{
		Dest:     dest,
		Username: username,
		pat:      pat,
		sem:      semaphore.NewWeighted(int64(concurrency)),
	}
	o.runGit = o.gitClone
	return o
}

// Run clones or skips every repo in the list and returns one outcome per
// repo. All tasks start immediately; the semaphore bounds how many clone
// processes run at once. Outcomes arrive in completion order, not input
// order.
func (o *Orchestrator) Run(ctx context.Context, repos []models.Repository, sink func(string)) []models.CloneOutcome {
	results := make(chan models.CloneOutcome, len(repos))

	var wg sync.WaitGroup
	for _, repo := range repos {
		wg.Add(1)
		go func(r models.Repository) {
			defer wg.Done()
			results <- o.CloneOne(ctx, r, sink)
		}(repo)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]models.CloneOutcome, 0, len(repos))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// CloneOne clones a single repo into Dest/<RepoName>, or skips it when a
// .git marker already exists there
func (o *Orchestrator) CloneOne(ctx context.Context, repo models.Repository, sink func(string)) models.CloneOutcome {
	target := filepath.Join(o.Dest, repo.RepoName)

	if _, err := os.Stat(filepath.Join(target, ".git")); err == nil {
		sink(fmt.Sprintf("→ SKIP %s: already exists", repo.FullName()))
		return models.CloneOutcome{Repo: repo, ExitCode: 0}
	}

	authURL, err := creds.Embed(repo.RemoteURL, o.Username, o.pat)
	if err != nil {
		sink(o.mask(fmt.Sprintf("← CLONE %s: FAIL(%d): %s", repo.FullName(), models.ExitNotStarted, err)))
		return models.CloneOutcome{Repo: repo, ExitCode: models.ExitNotStarted}
	}

	cmdLine := strings.Join([]string{"git", "clone", "--origin", "origin", authURL, target}, " ")
	sink(fmt.Sprintf("→ CLONE %s: %s", repo.FullName(), o.mask(cmdLine)))

	if err := o.sem.Acquire(ctx, 1); err != nil {
		sink(o.mask(fmt.Sprintf("← CLONE %s: FAIL(%d): %s", repo.FullName(), models.ExitNotStarted, err)))
		return models.CloneOutcome{Repo: repo, ExitCode: models.ExitNotStarted}
	}
	rc := func() int {
		defer o.sem.Release(1)
		return o.runGit(ctx, authURL, target, func(line string) {
			sink(" " + o.mask(line))
		})
	}()

	status := "OK"
	if rc != 0 {
		status = fmt.Sprintf("FAIL(%d)", rc)
	}
	sink(fmt.Sprintf("← CLONE %s: %s", repo.FullName(), status))

	return models.CloneOutcome{Repo: repo, ExitCode: rc}
}

// gitClone runs the external clone with stdin disconnected so a
// credential prompt fails fast instead of hanging. Stdout and stderr are
// merged into one pipe and emitted line by line.
func (o *Orchestrator) gitClone(ctx context.Context, authURL, target string, emit func(string)) int {
	cmd := exec.CommandContext(ctx, "git", "clone", "--origin", "origin", authURL, target)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			emit(scanner.Text())
		}
	}()

	err := cmd.Run()
	pw.Close()
	<-done

	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	emit(err.Error())
	return models.ExitNotStarted
}

func (o *Orchestrator) mask(line string) string {
	return creds.Mask(line, o.pat)
}
