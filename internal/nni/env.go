package nni

import "os"

// Environment variables exported by the NNI orchestrator to each trial.
const (
	EnvSysDir     = "NNI_SYS_DIR"
	EnvTrialJobID = "NNI_TRIAL_JOB_ID"
	EnvPlatform   = "NNI_PLATFORM"
)

const (
	// LocalPlatform is the platform tag of trials co-located with the
	// orchestrator. Only these report through the metrics file.
	LocalPlatform = "local"

	defaultTrialJobID = "local"
)

// Env is the trial's execution context, captured once at startup.
// Empty strings mean the variable was absent.
type Env struct {
	SysDir     string
	TrialJobID string
	Platform   string
}

// LoadEnv builds an Env from lookup, which has the shape of os.LookupEnv.
func LoadEnv(lookup func(string) (string, bool)) Env {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	return Env{
		SysDir:     get(EnvSysDir),
		TrialJobID: get(EnvTrialJobID),
		Platform:   get(EnvPlatform),
	}
}

// EnvFromOS snapshots the process environment.
func EnvFromOS() Env {
	return LoadEnv(os.LookupEnv)
}

// JobID returns the trial job id, or "local" when none was assigned.
func (e Env) JobID() string {
	if e.TrialJobID == "" {
		return defaultTrialJobID
	}
	return e.TrialJobID
}

// IsLocal reports whether results go to the local metrics file rather than
// stdout. An absent platform tag is treated as non-local.
func (e Env) IsLocal() bool {
	return e.Platform == LocalPlatform
}
