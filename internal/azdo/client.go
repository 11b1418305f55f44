// Package azdo talks to the Azure DevOps REST API to enumerate projects
// and git repositories across one organization.
package azdo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wahlandcase/attuned.cloner/internal/models"
)

const (
	apiVersionProjects = "7.1-preview.4"
	apiVersionRepos    = "7.1-preview.1"

	// Response header carrying the pagination cursor
	continuationHeader = "X-MS-ContinuationToken"
)

// Project is a transient project descriptor; only the name survives
// aggregation
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TransportError is a non-2xx API response (other than the tolerated
// 401/403 on repository listing)
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("azure devops API returned HTTP %d: %s", e.Status, e.Body)
}

// Client lists projects and repositories for one organization. It owns a
// single HTTP client for its lifetime; call Close when done.
type Client struct {
	org     string
	pat     string
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given organization. The PAT is sent
// as the basic-auth password with an empty username on every request.
func NewClient(org, pat, baseURL string) *Client {
	return &Client{
		org:     org,
		pat:     pat,
		baseURL: trimTrailingSlash(baseURL),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Close releases the client's pooled connections
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// ListProjects returns every project in the organization, following
// continuation tokens until the listing is exhausted
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	endpoint := fmt.Sprintf("%s/%s/_apis/projects?api-version=%s", c.baseURL, c.org, apiVersionProjects)

	var projects []Project
	token := ""
	for {
		reqURL := endpoint
		if token != "" {
			reqURL = endpoint + "&$top=1000&continuationToken=" + url.QueryEscape(token)
		}

		var page struct {
			Value []Project `json:"value"`
		}
		next, err := c.getJSON(ctx, reqURL, &page)
		if err != nil {
			return nil, err
		}
		projects = append(projects, page.Value...)

		if next == "" {
			break
		}
		token = next
	}

	return projects, nil
}

// ListRepositories returns the repositories of one project (by name or
// id). A 401/403 response means the PAT has no access to this project's
// repos; that is a normal partial-authorization outcome and yields an
// empty list, not an error.
func (c *Client) ListRepositories(ctx context.Context, project string) ([]models.Repository, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/_apis/git/repositories?api-version=%s&$top=1000",
		c.baseURL, c.org, url.PathEscape(project), apiVersionRepos)

	type repoItem struct {
		Name          string  `json:"name"`
		RemoteURL     string  `json:"remoteUrl"`
		DefaultBranch *string `json:"defaultBranch"`
		Project       struct {
			Name string `json:"name"`
		} `json:"project"`
	}

	var repos []models.Repository
	token := ""
	for {
		reqURL := endpoint
		if token != "" {
			reqURL = endpoint + "&continuationToken=" + url.QueryEscape(token)
		}

		var page struct {
			Value []repoItem `json:"value"`
		}
		next, err := c.getJSON(ctx, reqURL, &page)
		if err != nil {
			var terr *TransportError
			if errors.As(err, &terr) && (terr.Status == http.StatusUnauthorized || terr.Status == http.StatusForbidden) {
				return nil, nil
			}
			return nil, err
		}

		for _, item := range page.Value {
			projectName := item.Project.Name
			if projectName == "" {
				projectName = project
			}
			branch := item.DefaultBranch
			if branch != nil && *branch == "" {
				branch = nil
			}
			repos = append(repos, models.NewRepository(projectName, item.Name, item.RemoteURL, branch))
		}

		if next == "" {
			break
		}
		token = next
	}

	return repos, nil
}

// getJSON performs one authenticated GET, decodes the body into out, and
// returns the continuation token for the next page (empty when done)
func (c *Client) getJSON(ctx context.Context, reqURL string, out any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth("", c.pat)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &TransportError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", fmt.Errorf("decoding %s: %w", reqURL, err)
	}

	return resp.Header.Get(continuationHeader), nil
}
