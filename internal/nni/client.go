// Package nni is the trial-side client of the NNI file protocol. A trial
// reads its assigned parameters from NNI_SYS_DIR/parameter.cfg and reports a
// final metric either to stdout or to NNI_SYS_DIR/.nni/metrics, depending on
// NNI_PLATFORM.
//
// A Client serves exactly one trial and is not safe for concurrent use.
// Appends to the metrics file are not synchronized across processes, so
// trials must not share a base directory.
package nni

import (
	"io"
	"log/slog"
	"os"
)

type ClientOpts struct {
	Env    Env
	Stdout io.Writer    // defaults to os.Stdout
	Logger *slog.Logger // defaults to slog.Default()
}

type Client struct {
	env    Env
	stdout io.Writer
	log    *slog.Logger

	// parameterID comes from the last successful GetNextParameter; 0 before.
	parameterID int
}

func NewClient(opts *ClientOpts) *Client {
	c := &Client{
		env:    opts.Env,
		stdout: opts.Stdout,
		log:    opts.Logger,
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

func (c *Client) Env() Env { return c.env }

// ParameterID returns the id of the most recently loaded parameter set.
func (c *Client) ParameterID() int { return c.parameterID }
