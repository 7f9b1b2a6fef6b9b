package nni

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/eerhardt/nni-mlnet/internal/metrics"
)

const (
	metricsDir  = ".nni"
	metricsFile = "metrics"
)

// ReportFinalResult reports metric as this trial's final result. Local trials
// append a frame to .nni/metrics under the base directory (or the working
// directory when none is set); all others print a single tagged line to
// stdout. Each call emits exactly one record.
func (c *Client) ReportFinalResult(metric float64) error {
	rec := metrics.NewFinal(c.parameterID, c.env.JobID(), FormatFloat(metric))
	payload, err := metrics.Marshal(rec)
	if err != nil {
		return err
	}
	if !c.env.IsLocal() {
		if _, err := c.stdout.Write(metrics.StdoutLine(payload)); err != nil {
			return fmt.Errorf("writing result to stdout: %w", err)
		}
		c.log.Debug("reported final result", "channel", "stdout", "parameter_id", rec.ParameterID, "value", rec.Value)
		return nil
	}

	path, err := c.MetricsPath()
	if err != nil {
		return err
	}
	frame, err := metrics.Frame(payload)
	if err != nil {
		return err
	}
	if err := appendFile(path, frame); err != nil {
		return err
	}
	c.log.Debug("reported final result", "channel", "file", "path", path, "parameter_id", rec.ParameterID, "value", rec.Value)
	return nil
}

// MetricsPath is the local metrics file: {base dir or cwd}/.nni/metrics.
func (c *Client) MetricsPath() (string, error) {
	dir := c.env.SysDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		dir = wd
	}
	return filepath.Join(dir, metricsDir, metricsFile), nil
}

func appendFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening metrics file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing metrics file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing metrics file: %w", err)
	}
	return nil
}
