package azdo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeOrg serves a two-project organization where the Restricted project
// rejects the PAT
func fakeOrg(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/_apis/projects"):
			writeJSON(t, w, map[string]any{"value": []Project{
				{Name: "zeta"}, {Name: "Alpha"}, {Name: "Restricted"},
			}})
		case strings.Contains(r.URL.Path, "/Restricted/"):
			w.WriteHeader(http.StatusForbidden)
		case strings.Contains(r.URL.Path, "/Alpha/"):
			writeJSON(t, w, map[string]any{"value": []map[string]any{
				{"name": "Zebra", "remoteUrl": "https://x/Alpha/_git/Zebra", "project": map[string]any{"name": "Alpha"}},
				{"name": "ant", "remoteUrl": "https://x/Alpha/_git/ant", "project": map[string]any{"name": "Alpha"}},
			}})
		case strings.Contains(r.URL.Path, "/zeta/"):
			writeJSON(t, w, map[string]any{"value": []map[string]any{
				{"name": "tool", "remoteUrl": "https://x/zeta/_git/tool", "project": map[string]any{"name": "zeta"}},
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestLoadRepositoriesSortsCaseInsensitively(t *testing.T) {
	srv := fakeOrg(t)
	defer srv.Close()

	c := NewClient("org", "tok", srv.URL)
	defer c.Close()

	repos, err := c.LoadRepositories(context.Background(), func(string) {})
	require.NoError(t, err)
	require.Len(t, repos, 3)

	// Alpha/ant before Alpha/Zebra before zeta/tool
	require.Equal(t, "Alpha/ant", repos[0].FullName())
	require.Equal(t, "Alpha/Zebra", repos[1].FullName())
	require.Equal(t, "zeta/tool", repos[2].FullName())
}

func TestLoadRepositoriesReportsDeniedProjects(t *testing.T) {
	srv := fakeOrg(t)
	defer srv.Close()

	c := NewClient("org", "tok", srv.URL)
	defer c.Close()

	var mu sync.Mutex
	var lines []string
	_, err := c.LoadRepositories(context.Background(), func(line string) {
		mu.Lock()
		lines = append(lines, line)
		mu.Unlock()
	})
	require.NoError(t, err)

	joined := strings.Join(lines, "\n")
	require.Contains(t, joined, "Found 3 projects")
	require.Contains(t, joined, "No access or no repos in project: Restricted")
	require.Contains(t, joined, "Loaded 3 repositories.")
}

func TestLoadRepositoriesFailsOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/_apis/projects") {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"value": []Project{{Name: "Alpha"}}})
			return
		}
		http.Error(w, "backend down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("org", "tok", srv.URL)
	defer c.Close()

	repos, err := c.LoadRepositories(context.Background(), func(string) {})
	require.Error(t, err)
	require.Nil(t, repos)
}
