package models

import "strings"

// Repository describes one remote repository in the organization
type Repository struct {
	// ProjectName is the Azure DevOps project the repo belongs to
	ProjectName string
	// RepoName is the repository name, unique within its project
	RepoName string
	// RemoteURL is the https clone URL reported by the API
	RemoteURL string
	// DefaultBranch (e.g. "refs/heads/main"), nil if the API omitted it
	DefaultBranch *string
}

// NewRepository creates a new Repository
func NewRepository(projectName, repoName, remoteURL string, defaultBranch *string) Repository {
	return Repository{
		ProjectName:   projectName,
		RepoName:      repoName,
		RemoteURL:     remoteURL,
		DefaultBranch: defaultBranch,
	}
}

// FullName returns "project/repo" for display and log lines
func (r Repository) FullName() string {
	return r.ProjectName + "/" + r.RepoName
}

// SearchText returns the lowercase key used for filtering
func (r Repository) SearchText() string {
	return strings.ToLower(r.FullName())
}
