package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/eerhardt/nni-mlnet/internal/config"
	"github.com/eerhardt/nni-mlnet/internal/docker"
	"github.com/eerhardt/nni-mlnet/internal/hparams"
	"github.com/eerhardt/nni-mlnet/internal/nni"
	"github.com/eerhardt/nni-mlnet/internal/result"
)

const (
	hyperparametersFile = "hyperparameters.json"

	EnvHyperparameters = "TRIAL_HYPERPARAMETERS"
	EnvMetricFile      = "TRIAL_METRIC_FILE"
)

type TrialOpts struct {
	Client *nni.Client
	Config *config.Config
	// Timeout overrides the configured pipeline timeout when positive.
	Timeout time.Duration
	// Output receives the pipeline's stdout and stderr. Defaults to
	// os.Stderr so the trial's own stdout stays free for metric lines.
	Output io.Writer
	Logger *slog.Logger
}

// RunTrial loads this trial's parameters, runs the training pipeline with
// them, and reports the metric it produced. The result is reported exactly
// once, and only when the pipeline succeeds. Once the pipeline has run, the
// trial's meta.json is written on every exit path.
func RunTrial(ctx context.Context, opts *TrialOpts) (*result.TrialMeta, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	pipeline := &opts.Config.Pipeline
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = pipeline.Timeout()
	}
	env := opts.Client.Env()

	params, err := opts.Client.GetNextParameter()
	if err != nil {
		return nil, fmt.Errorf("loading parameters: %w", err)
	}
	set, err := hparams.Bind(opts.Config.Specs(), params)
	if err != nil {
		return nil, fmt.Errorf("binding hyperparameters: %w", err)
	}
	for _, name := range set.Unknown() {
		log.Warn("ignoring undeclared parameter", "name", name, "value", params[name])
	}

	workDir, err := TrialDir(env)
	if err != nil {
		return nil, err
	}
	if err := prepareWorkDir(workDir, pipeline.MetricFile, set.Map()); err != nil {
		return nil, err
	}

	log.Info("starting pipeline",
		"parameter_id", opts.Client.ParameterID(),
		"command", strings.Join(pipeline.Command, " "),
		"image", pipeline.Image,
		"timeout", timeout)

	var res *ExecResult
	if pipeline.Image != "" {
		res, err = runDocker(ctx, pipeline, workDir, set, timeout, output)
	} else {
		res, err = RunLocal(ctx, &Job{
			Command: pipeline.Command,
			Env:     localEnv(pipeline, workDir, set),
			Timeout: timeout,
			Output:  output,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("running pipeline: %w", err)
	}

	meta := &result.TrialMeta{
		TrialJobID:      env.JobID(),
		ParameterID:     opts.Client.ParameterID(),
		Platform:        env.Platform,
		Hyperparameters: set.Map(),
		DurationS:       int(res.Duration.Seconds()),
		ExitCode:        res.ExitCode,
		ExitReason:      result.ExitReasonFromCode(res.ExitCode, res.TimedOut),
	}
	trialErr := finishTrial(opts.Client, meta, res, timeout, filepath.Join(workDir, pipeline.MetricFile))
	if err := result.WriteTrialMeta(workDir, meta); err != nil {
		if trialErr != nil {
			return nil, trialErr
		}
		// The result is already reported; a missing meta.json is not fatal.
		log.Warn("writing trial meta", "error", err)
	}
	if trialErr != nil {
		return nil, trialErr
	}
	log.Info("reported final result", "parameter_id", meta.ParameterID, "metric", meta.Metric, "duration", res.Duration.Round(time.Millisecond))
	return meta, nil
}

func finishTrial(client *nni.Client, meta *result.TrialMeta, res *ExecResult, timeout time.Duration, metricPath string) error {
	if res.TimedOut {
		return fmt.Errorf("pipeline timed out after %s", timeout)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("pipeline exited with code %d", res.ExitCode)
	}
	metric, err := ReadMetric(metricPath)
	if err != nil {
		meta.ExitReason = "no_metric"
		return err
	}
	if err := client.ReportFinalResult(metric); err != nil {
		return fmt.Errorf("reporting result: %w", err)
	}
	meta.Metric = nni.FormatFloat(metric)
	meta.Reported = true
	return nil
}

// TrialDir is the scratch directory shared with the pipeline:
// {base dir or cwd}/.nni/trial.
func TrialDir(env nni.Env) (string, error) {
	base := env.SysDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		base = wd
	}
	dir, err := filepath.Abs(filepath.Join(base, ".nni", "trial"))
	if err != nil {
		return "", fmt.Errorf("resolving trial dir: %w", err)
	}
	return dir, nil
}

func prepareWorkDir(dir, metricFile string, values map[string]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating trial dir: %w", err)
	}
	if err := os.Remove(filepath.Join(dir, metricFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stale metric file: %w", err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling hyperparameters: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, hyperparametersFile), data, 0o644)
}

func pipelineEnv(p *config.Pipeline, dir string, set *hparams.Set) []string {
	var env []string
	for k, v := range p.Env {
		env = append(env, k+"="+v)
	}
	env = append(env, set.Env(p.EnvPrefix)...)
	env = append(env,
		EnvHyperparameters+"="+filepath.Join(dir, hyperparametersFile),
		EnvMetricFile+"="+filepath.Join(dir, p.MetricFile),
	)
	return env
}

// localEnv inherits the process environment; later entries win in os/exec.
func localEnv(p *config.Pipeline, dir string, set *hparams.Set) []string {
	return append(os.Environ(), pipelineEnv(p, dir, set)...)
}

func runDocker(ctx context.Context, p *config.Pipeline, workDir string, set *hparams.Set, timeout time.Duration, output io.Writer) (*ExecResult, error) {
	res, err := docker.RunContainer(ctx, &docker.RunOpts{
		Image:       p.Image,
		Command:     p.Command,
		WorkDir:     workDir,
		Env:         pipelineEnv(p, docker.WorkDirTarget, set),
		Timeout:     timeout,
		CPULimit:    p.CPULimit,
		MemoryLimit: p.MemoryLimit,
		UserID:      fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
		Logs:        output,
	})
	if err != nil {
		return nil, err
	}
	return &ExecResult{ExitCode: res.ExitCode, TimedOut: res.TimedOut, Duration: res.Duration}, nil
}

// ReadMetric parses the single number a pipeline writes to its metric file.
func ReadMetric(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading metric: %w", err)
	}
	s := strings.TrimSpace(string(data))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing metric %q from %s: %w", s, path, err)
	}
	return f, nil
}
