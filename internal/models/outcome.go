package models

// CloneOutcome is the final result of one clone task.
// ExitCode 0 means success; a skipped repo also reports 0. Any other
// value is the git process's exit code, or ExitNotStarted when the
// clone never launched.
type CloneOutcome struct {
	// Repo that was cloned or skipped
	Repo Repository
	// ExitCode of the clone process
	ExitCode int
}

// ExitNotStarted marks a clone that failed before the process launched
// (unsupported URL scheme, spawn failure).
const ExitNotStarted = -1

// Succeeded returns true if the clone completed or was safely skipped
func (o CloneOutcome) Succeeded() bool {
	return o.ExitCode == 0
}

// TallyOutcomes counts successes and failures in a batch
func TallyOutcomes(outcomes []CloneOutcome) (successes, failures int) {
	for _, o := range outcomes {
		if o.Succeeded() {
			successes++
		} else {
			failures++
		}
	}
	return successes, failures
}
