package app

// Screen represents the current view in the application
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenRepoSelect
	ScreenCloneConfirm
	ScreenCloning
	ScreenSummary
	ScreenError
)

func (s Screen) String() string {
	names := []string{
		"Loading",
		"RepoSelect",
		"CloneConfirm",
		"Cloning",
		"Summary",
		"Error",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}
