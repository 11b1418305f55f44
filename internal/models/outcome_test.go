package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTallyOutcomes(t *testing.T) {
	branch := "refs/heads/main"
	repo := NewRepository("Proj", "svc", "https://x/_git/svc", &branch)

	outcomes := []CloneOutcome{
		{Repo: repo, ExitCode: 0},
		{Repo: repo, ExitCode: 128},
		{Repo: repo, ExitCode: ExitNotStarted},
		{Repo: repo, ExitCode: 0},
	}

	successes, failures := TallyOutcomes(outcomes)
	require.Equal(t, 2, successes)
	require.Equal(t, 2, failures)
}

func TestRepositoryNames(t *testing.T) {
	repo := NewRepository("Platform", "API-Gateway", "https://x/_git/API-Gateway", nil)
	require.Equal(t, "Platform/API-Gateway", repo.FullName())
	require.Equal(t, "platform/api-gateway", repo.SearchText())
}
