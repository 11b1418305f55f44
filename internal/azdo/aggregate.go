package azdo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wahlandcase/attuned.cloner/internal/models"

	"golang.org/x/sync/errgroup"
)

// LoadRepositories fetches every project's repository list concurrently
// and merges the results into one sorted catalog snapshot.
//
// One goroutine runs per project with no concurrency cap; the remote's
// own rate limiting is the only back-pressure. A TransportError from any
// project aborts the whole load (a 401/403 on a single project is
// absorbed by ListRepositories and just yields an empty list). Progress
// lines go through sink.
func (c *Client) LoadRepositories(ctx context.Context, sink func(string)) ([]models.Repository, error) {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	sink(fmt.Sprintf("Found %d projects. Fetching repos…", len(projects)))

	// Each goroutine writes only its own slot, so no lock is needed and
	// the merge below is independent of completion order.
	results := make([][]models.Repository, len(projects))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range projects {
		if p.Name == "" {
			continue
		}
		g.Go(func() error {
			repos, err := c.ListRepositories(ctx, p.Name)
			if err != nil {
				return err
			}
			if len(repos) == 0 {
				sink("No access or no repos in project: " + p.Name)
			}
			results[i] = repos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var repos []models.Repository
	for _, group := range results {
		repos = append(repos, group...)
	}

	sort.Slice(repos, func(i, j int) bool {
		pi, pj := strings.ToLower(repos[i].ProjectName), strings.ToLower(repos[j].ProjectName)
		if pi != pj {
			return pi < pj
		}
		return strings.ToLower(repos[i].RepoName) < strings.ToLower(repos[j].RepoName)
	})

	sink(fmt.Sprintf("Loaded %d repositories.", len(repos)))
	return repos, nil
}
