package models

// SubmissionState is the lifecycle of a quote submission.
type SubmissionState int

const (
	// SubmissionIdle means the form is editable and nothing is in flight.
	SubmissionIdle SubmissionState = iota
	// SubmissionSubmitting means the transport has been handed the field set.
	SubmissionSubmitting
	// SubmissionSucceeded means the success message is shown; it reverts to idle after a delay.
	SubmissionSucceeded
)

func (s SubmissionState) String() string {
	switch s {
	case SubmissionIdle:
		return "idle"
	case SubmissionSubmitting:
		return "submitting"
	case SubmissionSucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

// Receipt is the typed answer of a submission transport.
type Receipt struct {
	ID       string `json:"id"`       // ID is generated per submission.
	Status   int    `json:"status"`   // Status is the upstream status code, when the transport has one.
	Accepted bool   `json:"accepted"` // Accepted reports whether the receiving system took the data.
}
