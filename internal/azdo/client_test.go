package azdo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestListProjectsSendsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		writeJSON(t, w, map[string]any{"value": []Project{{ID: "1", Name: "Alpha"}}})
	}))
	defer srv.Close()

	c := NewClient("org", "tok123", srv.URL)
	defer c.Close()

	projects, err := c.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "Alpha", projects[0].Name)
	require.Equal(t, "", gotUser)
	require.Equal(t, "tok123", gotPass)
}

func TestListProjectsFollowsContinuationTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("continuationToken") {
		case "":
			w.Header().Set("X-MS-ContinuationToken", "page2")
			writeJSON(t, w, map[string]any{"value": []Project{{Name: "One"}, {Name: "Two"}}})
		case "page2":
			writeJSON(t, w, map[string]any{"value": []Project{{Name: "Three"}}})
		default:
			t.Errorf("unexpected token %q", r.URL.Query().Get("continuationToken"))
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	c := NewClient("org", "tok", srv.URL)
	defer c.Close()

	projects, err := c.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 3)
	require.Equal(t, "Three", projects[2].Name)
}

func TestListProjectsSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("org", "tok", srv.URL)
	defer c.Close()

	_, err := c.ListProjects(context.Background())
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	require.Equal(t, http.StatusInternalServerError, terr.Status)
}

func TestListRepositoriesToleratesDeniedProjects(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(fmt.Sprintf("status_%d", status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			defer srv.Close()

			c := NewClient("org", "tok", srv.URL)
			defer c.Close()

			repos, err := c.ListRepositories(context.Background(), "Locked")
			require.NoError(t, err)
			require.Empty(t, repos)
		})
	}
}

func TestListRepositoriesMapsFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"value": []map[string]any{
			{
				"name":          "api",
				"remoteUrl":     "https://dev.azure.com/org/Alpha/_git/api",
				"defaultBranch": "refs/heads/main",
				"project":       map[string]any{"name": "Alpha"},
			},
			{
				// Bare repo: no default branch, project name omitted
				"name":          "empty-repo",
				"remoteUrl":     "https://dev.azure.com/org/Alpha/_git/empty-repo",
				"defaultBranch": "",
			},
		}})
	}))
	defer srv.Close()

	c := NewClient("org", "tok", srv.URL)
	defer c.Close()

	repos, err := c.ListRepositories(context.Background(), "Alpha")
	require.NoError(t, err)
	require.Len(t, repos, 2)

	require.Equal(t, "Alpha", repos[0].ProjectName)
	require.Equal(t, "api", repos[0].RepoName)
	require.NotNil(t, repos[0].DefaultBranch)
	require.Equal(t, "refs/heads/main", *repos[0].DefaultBranch)

	// Falls back to the queried project name; empty branch becomes nil
	require.Equal(t, "Alpha", repos[1].ProjectName)
	require.Nil(t, repos[1].DefaultBranch)
}

func TestTrimTrailingSlash(t *testing.T) {
	require.Equal(t, "https://dev.azure.com", trimTrailingSlash("https://dev.azure.com///"))
	require.Equal(t, "https://dev.azure.com", trimTrailingSlash("https://dev.azure.com"))
}

func TestListRepositoriesFollowsContinuationTokens(t *testing.T) {
	repoPage := func(names ...string) map[string]any {
		items := make([]map[string]any, 0, len(names))
		for _, n := range names {
			items = append(items, map[string]any{
				"name":      n,
				"remoteUrl": "https://dev.azure.com/org/Alpha/_git/" + n,
				"project":   map[string]any{"name": "Alpha"},
			})
		}
		return map[string]any{"value": items}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("continuationToken") {
		case "":
			w.Header().Set("X-MS-ContinuationToken", "page2")
			writeJSON(t, w, repoPage("one", "two"))
		case "page2":
			writeJSON(t, w, repoPage("three"))
		default:
			t.Errorf("unexpected token %q", r.URL.Query().Get("continuationToken"))
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	c := NewClient("org", "tok", srv.URL)
	defer c.Close()

	repos, err := c.ListRepositories(context.Background(), "Alpha")
	require.NoError(t, err)
	require.Len(t, repos, 3)
	require.Equal(t, "three", repos[2].RepoName)
}

func TestListRepositoriesDeniedOnLaterPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("continuationToken") == "" {
			w.Header().Set("X-MS-ContinuationToken", "page2")
			writeJSON(t, w, map[string]any{"value": []map[string]any{
				{"name": "one", "remoteUrl": "https://x/_git/one", "project": map[string]any{"name": "Alpha"}},
			}})
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("org", "tok", srv.URL)
	defer c.Close()

	// Access revoked mid-listing is still a no-access outcome, not an
	// error; the whole project reads as empty
	repos, err := c.ListRepositories(context.Background(), "Alpha")
	require.NoError(t, err)
	require.Empty(t, repos)
}
