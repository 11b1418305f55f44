package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// isCompletionMarker reports whether a sink line closes one clone task.
// The orchestrator emits exactly one of these per repo: a skip notice
// or the final OK/FAIL line.
func isCompletionMarker(line string) bool {
	return strings.HasPrefix(line, "← CLONE ") || strings.HasPrefix(line, "→ SKIP ")
}

// Update handles all messages and updates state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % 10
		return m, tickCmd()

	case logBatchMsg:
		for _, line := range msg {
			m.appendLog(line)
			if m.screen == ScreenCloning && isCompletionMarker(line) {
				m.cloneDone++
			}
		}
		// Continue listening for more sink lines
		return m, listenForLogLines(m.logChan)

	case reposLoadedMsg:
		return m.handleReposLoaded(msg)

	case cloneFinishedMsg:
		return m.handleCloneFinished(msg)
	}

	return m, nil
}

// handleKey processes keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.Type == tea.KeyCtrlC {
		m.shouldQuit = true
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenLoading:
		return m.handleLoadingKey(msg)
	case ScreenRepoSelect:
		return m.handleRepoSelectKey(msg)
	case ScreenCloneConfirm:
		return m.handleCloneConfirmKey(msg)
	case ScreenCloning:
		// Clones run to completion; only ctrl+c (above) interrupts
		return m, nil
	case ScreenSummary:
		return m.handleSummaryKey(msg)
	case ScreenError:
		return m.handleErrorKey(msg)
	}

	return m, nil
}

func (m Model) handleLoadingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		m.shouldQuit = true
		return m, tea.Quit
	}
	return m, nil
}

// handleRepoSelectKey drives the selection table. All printable runes go
// to the filter, so the commands live on control chords.
func (m Model) handleRepoSelectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case tea.KeyPgUp:
		m.cursor -= m.tableHeight()
		if m.cursor < 0 {
			m.cursor = 0
		}
	case tea.KeyPgDown:
		m.cursor += m.tableHeight()
		if m.cursor > len(m.filtered)-1 {
			m.cursor = len(m.filtered) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
	case tea.KeySpace:
		if m.cursor < len(m.filtered) {
			idx := m.filtered[m.cursor]
			m.selected[idx] = !m.selected[idx]
		}
	case tea.KeyCtrlA:
		// Select everything the filter currently shows
		for _, idx := range m.filtered {
			m.selected[idx] = true
		}
	case tea.KeyCtrlN:
		m.selected = make(map[int]bool)
	case tea.KeyCtrlR:
		m.screen = ScreenLoading
		m.loadingMessage = "Refreshing repositories..."
		return m, loadReposCmd(m.opts, m.logChan)
	case tea.KeyTab, tea.KeyEnter:
		// Do nothing if no repos are selected
		if m.selectedCount() == 0 {
			return m, nil
		}
		m.confirmSelection = 0
		m.screen = ScreenCloneConfirm
	case tea.KeyEsc:
		if m.filter != "" {
			m.filter = ""
			m.cursor = 0
			m.applyFilter()
			return m, nil
		}
		m.shouldQuit = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
			m.cursor = 0
			m.applyFilter()
		}
	case tea.KeyRunes:
		// Type to filter - all printable characters go to filter
		m.filter += string(msg.Runes)
		m.cursor = 0
		m.applyFilter()
	}
	return m, nil
}

func (m Model) handleCloneConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h", "y":
		m.confirmSelection = 0
		if msg.String() == "y" {
			return m.startCloning()
		}
	case "right", "l", "n":
		m.confirmSelection = 1
		if msg.String() == "n" {
			m.screen = ScreenRepoSelect
		}
	case "enter":
		if m.confirmSelection == 0 {
			return m.startCloning()
		}
		m.screen = ScreenRepoSelect
	case "esc":
		m.screen = ScreenRepoSelect
	case "q":
		m.shouldQuit = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) startCloning() (tea.Model, tea.Cmd) {
	repos := m.selectedRepos()
	m.cloneTotal = len(repos)
	m.cloneDone = 0
	m.outcomes = nil
	m.screen = ScreenCloning
	return m, startCloneCmd(m.opts, repos, m.logChan)
}

func (m Model) handleSummaryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.shouldQuit = true
		return m, tea.Quit
	case "enter", "esc":
		// Back to the table; successful rows now carry the cloned marker
		m.selected = make(map[int]bool)
		m.screen = ScreenRepoSelect
	case "r":
		m.selected = make(map[int]bool)
		m.screen = ScreenLoading
		m.loadingMessage = "Refreshing repositories..."
		return m, loadReposCmd(m.opts, m.logChan)
	}
	return m, nil
}

func (m Model) handleErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.errorMessage = ""
		m.screen = ScreenLoading
		m.loadingMessage = "Fetching projects and repositories..."
		return m, loadReposCmd(m.opts, m.logChan)
	case "enter", "esc":
		if len(m.allRepos) > 0 {
			m.errorMessage = ""
			m.screen = ScreenRepoSelect
			return m, nil
		}
		m.shouldQuit = true
		return m, tea.Quit
	case "q":
		m.shouldQuit = true
		return m, tea.Quit
	}
	return m, nil
}
