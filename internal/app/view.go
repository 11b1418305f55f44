package app

import (
	"fmt"
	"strings"

	"github.com/wahlandcase/attuned.cloner/internal/models"
	"github.com/wahlandcase/attuned.cloner/internal/ui"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) contentWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	return w
}

// tableHeight is how many repo rows fit between the filter box and the
// log pane
func (m Model) tableHeight() int {
	bannerLines := len(ui.Banner)
	if m.opts.DryRun {
		bannerLines += 2
	}
	// banner gap + filter box + table chrome + log pane + status bar
	h := m.height - bannerLines - 3 - 3 - 4 - (logPaneLines + 2) - 3
	if h < 5 {
		h = 5
	}
	return h
}

// logPaneLines is the height of the log tail shown under the table
const logPaneLines = 6

// View renders the application
func (m Model) View() string {
	if m.shouldQuit {
		return ""
	}

	bannerLines := len(ui.Banner)
	if m.opts.DryRun {
		bannerLines += 2
	}
	statusHeight := 3

	availableHeight := m.height - bannerLines - 3 - statusHeight
	if availableHeight < 10 {
		availableHeight = 10
	}

	var sections []string
	sections = append(sections, ui.RenderBanner(m.opts.DryRun))
	sections = append(sections, "")

	contentWidth := m.contentWidth()

	// Screens that manage their own full layout (no outer box)
	fullLayoutScreens := m.screen == ScreenRepoSelect ||
		m.screen == ScreenCloning ||
		m.screen == ScreenSummary

	if fullLayoutScreens {
		sections = append(sections, m.renderContentWithHeight(availableHeight))
	} else {
		outerBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorPurple).
			Width(contentWidth).
			Padding(1, 2)
		sections = append(sections, outerBox.Render(m.renderContentWithHeight(availableHeight)))
	}

	sections = append(sections, "")
	sections = append(sections, m.renderStatusBar())

	content := strings.Join(sections, "\n")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, content)
}

func (m Model) renderContentWithHeight(availableHeight int) string {
	switch m.screen {
	case ScreenLoading:
		return m.renderLoading()
	case ScreenRepoSelect:
		return m.renderRepoSelectWithHeight(availableHeight)
	case ScreenCloneConfirm:
		return m.renderCloneConfirm()
	case ScreenCloning:
		return m.renderCloningWithHeight(availableHeight)
	case ScreenSummary:
		return m.renderSummaryWithHeight(availableHeight)
	case ScreenError:
		return m.renderError()
	default:
		return ""
	}
}

func (m Model) renderLoading() string {
	spinner := ui.Spinner(m.spinnerFrame)
	spinnerStyle := lipgloss.NewStyle().Foreground(ui.ColorCyan)
	textStyle := lipgloss.NewStyle().Foreground(ui.ColorCyan)

	loadingText := fmt.Sprintf("%s %s", spinnerStyle.Render(spinner), textStyle.Render(m.loadingMessage))

	innerWidth := m.contentWidth() - 6
	centeredStyle := lipgloss.NewStyle().Width(innerWidth).Align(lipgloss.Center)

	lines := []string{"", centeredStyle.Render(loadingText), ""}

	// Show the newest progress lines under the spinner
	tail := m.logTail(4)
	if len(tail) > 0 {
		dimStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray)
		for _, l := range tail {
			lines = append(lines, dimStyle.Render(ui.PadTrunc(l, innerWidth)))
		}
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderRepoSelectWithHeight(availableHeight int) string {
	contentWidth := m.contentWidth()
	var sections []string

	sections = append(sections, ui.FilterInput(m.filter, "Filter", ui.ColorCyan, contentWidth-2))

	// Column layout: arrow(2) checkbox(4) project repo branch cloned(8)
	inner := contentWidth - 4
	projectW := inner / 4
	branchW := 16
	clonedW := 8
	repoW := inner - 2 - 4 - projectW - branchW - clonedW - 4
	if repoW < 10 {
		repoW = 10
	}

	headerStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray).Bold(true)
	header := "      " +
		ui.PadTrunc("PROJECT", projectW) + " " +
		ui.PadTrunc("REPOSITORY", repoW) + " " +
		ui.PadTrunc("BRANCH", branchW) + " " +
		ui.PadTrunc("CLONED", clonedW)

	rows := []string{headerStyle.Render(header)}

	visible := m.tableHeight()
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.filtered) {
		end = len(m.filtered)
	}

	for pos := start; pos < end; pos++ {
		idx := m.filtered[pos]
		repo := m.allRepos[idx]

		arrow := ui.Arrow(pos == m.cursor)
		checkbox := ui.Checkbox(m.selected[idx])

		branch := shortBranch(repo.DefaultBranch)
		branchStyle := lipgloss.NewStyle().Foreground(ui.BranchColor(branch))

		clonedMark := ""
		if m.cloned[repo.RepoName] {
			clonedMark = "✓"
		}
		clonedStyle := lipgloss.NewStyle().Foreground(ui.ColorGreen)

		rowStyle := lipgloss.NewStyle().Foreground(ui.ColorWhite)
		if pos == m.cursor {
			rowStyle = rowStyle.Foreground(ui.ColorCyan).Bold(true)
		}

		row := arrow + checkbox + " " +
			rowStyle.Render(ui.PadTrunc(repo.ProjectName, projectW)) + " " +
			rowStyle.Render(ui.PadTrunc(repo.RepoName, repoW)) + " " +
			branchStyle.Render(ui.PadTrunc(branch, branchW)) + " " +
			clonedStyle.Render(ui.PadTrunc(clonedMark, clonedW))
		rows = append(rows, row)
	}

	if len(m.filtered) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray)
		rows = append(rows, emptyStyle.Render("  No repositories match the filter"))
	}

	countLine := fmt.Sprintf("%d/%d repos  •  %d selected", len(m.filtered), len(m.allRepos), m.selectedCount())
	title := "Repositories  " + lipgloss.NewStyle().Foreground(ui.ColorDarkGray).Render(countLine)
	sections = append(sections, ui.ColumnBox(strings.Join(rows, "\n"), title, ui.ColorCyan, true, contentWidth-2, visible+2))

	sections = append(sections, m.renderLogPane(contentWidth, logPaneLines))

	return strings.Join(sections, "\n")
}

func (m Model) renderCloneConfirm() string {
	repos := m.selectedRepos()
	innerWidth := m.contentWidth() - 6

	var lines []string
	lines = append(lines, ui.SectionHeader("CLONE", ui.ColorGreen))
	lines = append(lines, "")

	promptStyle := lipgloss.NewStyle().Foreground(ui.ColorWhite).Bold(true)
	lines = append(lines, promptStyle.Render(fmt.Sprintf("  Clone %d repositories into %s?", len(repos), m.opts.Dest)))
	lines = append(lines, "")

	nameStyle := lipgloss.NewStyle().Foreground(ui.ColorCyan)
	shown := repos
	if len(shown) > 8 {
		shown = shown[:8]
	}
	for _, r := range shown {
		lines = append(lines, nameStyle.Render(ui.PadTrunc("    "+r.FullName(), innerWidth)))
	}
	if len(repos) > len(shown) {
		moreStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray)
		lines = append(lines, moreStyle.Render(fmt.Sprintf("    … and %d more", len(repos)-len(shown))))
	}

	lines = append(lines, "")
	lines = append(lines, ui.YesNoButtons(m.confirmSelection))

	return strings.Join(lines, "\n")
}

func (m Model) renderCloningWithHeight(availableHeight int) string {
	contentWidth := m.contentWidth()
	var sections []string

	spinnerStyle := lipgloss.NewStyle().Foreground(ui.ColorCyan)
	textStyle := lipgloss.NewStyle().Foreground(ui.ColorWhite).Bold(true)
	headline := fmt.Sprintf("%s %s",
		spinnerStyle.Render(ui.Spinner(m.spinnerFrame)),
		textStyle.Render(fmt.Sprintf("Cloning %d repositories...", m.cloneTotal)))
	sections = append(sections, lipgloss.NewStyle().Width(contentWidth).Align(lipgloss.Center).Render(headline))

	barWidth := contentWidth - 20
	if barWidth < 10 {
		barWidth = 10
	}
	bar := fmt.Sprintf("%s %d/%d", ui.ProgressBar(m.cloneDone, m.cloneTotal, barWidth), m.cloneDone, m.cloneTotal)
	sections = append(sections, lipgloss.NewStyle().Width(contentWidth).Align(lipgloss.Center).Render(bar))
	sections = append(sections, "")

	logHeight := availableHeight - 5
	if logHeight < 6 {
		logHeight = 6
	}
	sections = append(sections, m.renderLogPane(contentWidth, logHeight))

	return strings.Join(sections, "\n")
}

func (m Model) renderSummaryWithHeight(availableHeight int) string {
	contentWidth := m.contentWidth()
	successes, failures := models.TallyOutcomes(m.outcomes)

	var lines []string
	tallyStyle := lipgloss.NewStyle().Foreground(ui.ColorWhite).Bold(true)
	tally := fmt.Sprintf("%d succeeded, %d failed", successes, failures)
	if failures == 0 {
		tallyStyle = tallyStyle.Foreground(ui.ColorGreen)
	} else {
		tallyStyle = tallyStyle.Foreground(ui.ColorYellow)
	}
	lines = append(lines, tallyStyle.Render(tally))
	lines = append(lines, "")

	listHeight := availableHeight - (logPaneLines + 2) - 5
	if listHeight < 4 {
		listHeight = 4
	}
	shown := m.outcomes
	if len(shown) > listHeight {
		shown = shown[:listHeight]
	}
	for _, o := range shown {
		status := "success"
		detail := "OK"
		if !o.Succeeded() {
			status = "failed"
			detail = fmt.Sprintf("FAIL(%d)", o.ExitCode)
		}
		icon, color := ui.StatusIcon(status)
		iconStyle := lipgloss.NewStyle().Foreground(color)
		nameStyle := lipgloss.NewStyle().Foreground(ui.ColorWhite)
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			iconStyle.Render(icon),
			nameStyle.Render(ui.PadTrunc(o.Repo.FullName(), contentWidth-20)),
			iconStyle.Render(detail)))
	}
	if len(m.outcomes) > len(shown) {
		moreStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray)
		lines = append(lines, moreStyle.Render(fmt.Sprintf("  … and %d more", len(m.outcomes)-len(shown))))
	}

	body := ui.ColumnBox(strings.Join(lines, "\n"), "Clone Summary", ui.ColorGreen, true, contentWidth-2, 0)

	return body + "\n" + m.renderLogPane(contentWidth, logPaneLines)
}

func (m Model) renderError() string {
	innerWidth := m.contentWidth() - 6

	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorRed).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(ui.ColorWhite).Width(innerWidth)

	var lines []string
	lines = append(lines, errorStyle.Render("  ✗ Error"))
	lines = append(lines, "")
	lines = append(lines, textStyle.Render("  "+m.errorMessage))

	return strings.Join(lines, "\n")
}

// renderLogPane shows the newest sink lines in a dimmed box
func (m Model) renderLogPane(width, height int) string {
	dimStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray)

	tail := m.logTail(height)
	lines := make([]string, 0, height)
	for _, l := range tail {
		lines = append(lines, dimStyle.Render(ui.PadTrunc(l, width-6)))
	}

	return ui.ColumnBox(strings.Join(lines, "\n"), "Log", ui.ColorDarkGray, false, width-2, height+1)
}

// logTail returns up to n of the newest log lines, oldest first
func (m Model) logTail(n int) []string {
	if len(m.logLines) <= n {
		return m.logLines
	}
	return m.logLines[len(m.logLines)-n:]
}

// shortBranch strips the refs/heads/ prefix for display
func shortBranch(branch *string) string {
	if branch == nil {
		return ""
	}
	return strings.TrimPrefix(*branch, "refs/heads/")
}

func (m Model) renderStatusBar() string {
	var hints []string

	switch m.screen {
	case ScreenLoading:
		hints = []string{
			ui.KeyBinding("q", "Quit", ui.ColorRed),
		}
	case ScreenRepoSelect:
		hints = []string{
			ui.KeyBinding("↑↓", "Navigate", ui.ColorWhite),
			ui.KeyBinding("Space", "Toggle", ui.ColorYellow),
			ui.KeyBinding("Type", "Filter", ui.ColorCyan),
			ui.KeyBinding("^A", "All", ui.ColorGreen),
			ui.KeyBinding("^N", "None", ui.ColorYellow),
			ui.KeyBinding("^R", "Refresh", ui.ColorBlue),
			ui.KeyBinding("Enter", "Clone", ui.ColorGreen),
			ui.KeyBinding("Esc", "Clear/Quit", ui.ColorRed),
		}
	case ScreenCloneConfirm:
		hints = []string{
			ui.KeyBinding("←→", "Select", ui.ColorWhite),
			ui.KeyBinding("y/n", "Quick", ui.ColorGreen),
			ui.KeyBinding("Enter", "Confirm", ui.ColorGreen),
			ui.KeyBinding("Esc", "Back", ui.ColorYellow),
		}
	case ScreenCloning:
		hints = []string{
			ui.KeyBinding("Ctrl+C", "Abort", ui.ColorRed),
		}
	case ScreenSummary:
		hints = []string{
			ui.KeyBinding("Enter", "Back", ui.ColorGreen),
			ui.KeyBinding("r", "Refresh", ui.ColorBlue),
			ui.KeyBinding("q", "Quit", ui.ColorRed),
		}
	case ScreenError:
		hints = []string{
			ui.KeyBinding("r", "Retry", ui.ColorBlue),
			ui.KeyBinding("Enter", "Back", ui.ColorGreen),
			ui.KeyBinding("q", "Quit", ui.ColorRed),
		}
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorDarkGray).
		Width(m.contentWidth()).
		Padding(0, 1)

	return borderStyle.Render(strings.Join(hints, "  │  "))
}
