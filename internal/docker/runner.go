package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"
)

// WorkDirTarget is where the trial work dir is mounted inside the container.
const WorkDirTarget = "/trial"

type RunOpts struct {
	Image       string
	Command     []string
	WorkDir     string
	Env         []string
	Timeout     time.Duration
	CPULimit    float64
	MemoryLimit int64
	UserID      string
	// Logs receives the container's demultiplexed stdout and stderr after it
	// exits.
	Logs io.Writer
}

type RunResult struct {
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// RunContainer runs one pipeline invocation in a fresh container with the
// trial work dir bind-mounted at WorkDirTarget. The container is removed on
// return. Hitting opts.Timeout kills it and reports exit code 124.
func RunContainer(ctx context.Context, opts *RunOpts) (*RunResult, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerConfig(opts),
		HostConfig: hostConfig(opts),
	})
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}
	id := createResp.ID
	defer cli.ContainerRemove(context.Background(), id, client.ContainerRemoveOptions{Force: true})

	start := time.Now()
	if _, err := cli.ContainerStart(ctx, id, client.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("starting container: %w", err)
	}

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	code, err := waitExit(waitCtx, cli, id)
	res := &RunResult{ExitCode: code, Duration: time.Since(start)}
	if err != nil {
		if !errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("waiting for container: %w", err)
		}
		cli.ContainerKill(context.Background(), id, client.ContainerKillOptions{Signal: "SIGKILL"})
		res.ExitCode = 124
		res.TimedOut = true
	}
	copyLogs(cli, id, opts.Logs)
	return res, nil
}

func containerConfig(opts *RunOpts) *container.Config {
	return &container.Config{
		Image:      opts.Image,
		Cmd:        opts.Command,
		Env:        opts.Env,
		User:       opts.UserID,
		WorkingDir: WorkDirTarget,
		Labels:     map[string]string{"nni-trial": "true"},
	}
}

func hostConfig(opts *RunOpts) *container.HostConfig {
	cfg := &container.HostConfig{
		Mounts: []mount.Mount{{
			Type:   mount.TypeBind,
			Source: opts.WorkDir,
			Target: WorkDirTarget,
		}},
	}
	if opts.CPULimit > 0 {
		cfg.NanoCPUs = int64(opts.CPULimit * 1e9)
	}
	if opts.MemoryLimit > 0 {
		cfg.Memory = opts.MemoryLimit
	}
	return cfg
}

func waitExit(ctx context.Context, cli *client.Client, id string) (int, error) {
	wait := cli.ContainerWait(ctx, id, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	select {
	case err := <-wait.Error:
		if err == nil {
			err = ctx.Err()
		}
		if err == nil {
			err = errors.New("wait ended without a status")
		}
		return 0, err
	case status := <-wait.Result:
		return int(status.StatusCode), nil
	}
}

// copyLogs is best-effort; a trial's outcome does not depend on its logs.
func copyLogs(cli *client.Client, id string, w io.Writer) {
	if w == nil {
		return
	}
	logs, err := cli.ContainerLogs(context.Background(), id, client.ContainerLogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil || logs == nil {
		return
	}
	defer logs.Close()
	// Without a TTY the stream is multiplexed; both halves go to w.
	stdcopy.StdCopy(w, w, logs)
}
