package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// Job is one pipeline invocation.
type Job struct {
	Command []string
	Dir     string
	Env     []string
	Timeout time.Duration
	Output  io.Writer
}

type ExecResult struct {
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// RunLocal runs job as a child process. A timeout kills the process and is
// reported with exit code 124, like timeout(1).
func RunLocal(ctx context.Context, job *Job) (*ExecResult, error) {
	if len(job.Command) == 0 {
		return nil, errors.New("empty pipeline command")
	}
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, job.Command[0], job.Command[1:]...)
	cmd.Dir = job.Dir
	cmd.Env = job.Env
	cmd.Stdout = job.Output
	cmd.Stderr = job.Output
	// Grandchildren may hold the output pipe open after a kill.
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	err := cmd.Run()
	res := &ExecResult{Duration: time.Since(start)}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.ExitCode = 124
		res.TimedOut = true
		return res, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("starting pipeline: %w", err)
	}
	return res, nil
}
