package result

// TrialMeta records how one trial ran. It is written next to the pipeline's
// scratch files whether or not a result was reported.
type TrialMeta struct {
	TrialJobID      string            `json:"trial_job_id"`
	ParameterID     int               `json:"parameter_id"`
	Platform        string            `json:"platform,omitempty"`
	Hyperparameters map[string]string `json:"hyperparameters"`
	DurationS       int               `json:"duration_s"`
	ExitCode        int               `json:"exit_code"`
	ExitReason      string            `json:"exit_reason"`
	// Metric is the canonical form of the reported value; empty when the
	// trial reported nothing.
	Metric   string `json:"metric,omitempty"`
	Reported bool   `json:"reported"`
}

func ExitReasonFromCode(code int, timedOut bool) string {
	if timedOut {
		return "timeout"
	}
	switch code {
	case 0:
		return "completed"
	default:
		return "crashed"
	}
}
