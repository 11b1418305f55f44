// Package git inspects the local destination directory for repositories
// that have already been cloned.
package git

import (
	"path/filepath"

	"github.com/wahlandcase/attuned.cloner/internal/models"

	gogit "github.com/go-git/go-git/v5"
)

// IsGitRepo checks if the path is a git repository
func IsGitRepo(path string) bool {
	_, err := gogit.PlainOpen(path)
	return err == nil
}

// ClonedSet reports which repos already exist as git repositories under
// dest, keyed by repo name. Used to mark rows in the selection table;
// the orchestrator re-checks at clone time.
func ClonedSet(dest string, repos []models.Repository) map[string]bool {
	cloned := make(map[string]bool, len(repos))
	for _, r := range repos {
		if IsGitRepo(filepath.Join(dest, r.RepoName)) {
			cloned[r.RepoName] = true
		}
	}
	return cloned
}
