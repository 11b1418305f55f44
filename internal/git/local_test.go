package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wahlandcase/attuned.cloner/internal/models"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
)

func TestIsGitRepo(t *testing.T) {
	dir := t.TempDir()

	require.False(t, IsGitRepo(dir))
	require.False(t, IsGitRepo(filepath.Join(dir, "missing")))

	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	require.True(t, IsGitRepo(dir))
}

func TestClonedSet(t *testing.T) {
	dest := t.TempDir()

	repos := []models.Repository{
		models.NewRepository("Proj", "present", "https://x/_git/present", nil),
		models.NewRepository("Proj", "absent", "https://x/_git/absent", nil),
		models.NewRepository("Proj", "plain-dir", "https://x/_git/plain-dir", nil),
	}

	_, err := gogit.PlainInit(filepath.Join(dest, "present"), false)
	require.NoError(t, err)

	// A directory without git metadata does not count
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "plain-dir"), 0755))

	cloned := ClonedSet(dest, repos)
	require.True(t, cloned["present"])
	require.False(t, cloned["absent"])
	require.False(t, cloned["plain-dir"])
}
