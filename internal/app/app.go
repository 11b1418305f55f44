package app

import (
	"strings"
	"time"

	"github.com/wahlandcase/attuned.cloner/internal/config"
	"github.com/wahlandcase/attuned.cloner/internal/models"

	tea "github.com/charmbracelet/bubbletea"
)

// logBufferSize bounds the sink channel so a burst of clone output never
// blocks the orchestrator while the UI is between reads
const logBufferSize = 1024

// logTailMax is how many sink lines the model retains for display
const logTailMax = 500

// Options carries the resolved command-line/config settings into the TUI
type Options struct {
	Org         string
	BaseURL     string
	Pat         string
	PatUsername string
	Dest        string
	Concurrency int
	DryRun      bool
}

// Model is the main application state
type Model struct {
	// Configuration
	config *config.Config
	opts   Options

	// Navigation
	screen     Screen
	shouldQuit bool

	// Catalog state
	allRepos []models.Repository
	filtered []int           // indices into allRepos matching the filter
	selected map[int]bool    // keyed by allRepos index
	cloned   map[string]bool // repo names already present under dest
	cursor   int             // position within filtered
	filter   string

	// Log plumbing: the core's sink feeds logChan, the UI re-subscribes
	// one read at a time and keeps a tail for display
	logChan  chan string
	logLines []string

	// Clone state
	cloneTotal int
	cloneDone  int // completion markers seen so far in this batch
	outcomes   []models.CloneOutcome

	// UI state
	loadingMessage   string
	errorMessage     string
	confirmSelection int // 0=Yes, 1=No
	spinnerFrame     int

	// Window size
	width  int
	height int
}

// New creates a new application model
func New(cfg *config.Config, opts Options) Model {
	return Model{
		config:         cfg,
		opts:           opts,
		screen:         ScreenLoading,
		loadingMessage: "Fetching projects and repositories...",
		selected:       make(map[int]bool),
		logChan:        make(chan string, logBufferSize),
		width:          80,
		height:         24,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(),
		loadReposCmd(m.opts, m.logChan),
		listenForLogLines(m.logChan),
	)
}

// tickMsg is sent on each tick for the spinner
type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

// appendLog adds a sink line to the display tail
func (m *Model) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > logTailMax {
		m.logLines = m.logLines[len(m.logLines)-logTailMax:]
	}
}

// selectedRepos returns the chosen repositories in catalog order
func (m *Model) selectedRepos() []models.Repository {
	var repos []models.Repository
	for i := range m.allRepos {
		if m.selected[i] {
			repos = append(repos, m.allRepos[i])
		}
	}
	return repos
}

// selectedCount counts chosen rows
func (m *Model) selectedCount() int {
	count := 0
	for _, on := range m.selected {
		if on {
			count++
		}
	}
	return count
}

// applyFilter recomputes the visible row set from the current filter
func (m *Model) applyFilter() {
	filter := strings.ToLower(m.filter)
	m.filtered = m.filtered[:0]
	for i, r := range m.allRepos {
		if filter == "" || strings.Contains(r.SearchText(), filter) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
