// Package metrics implements the two wire encodings NNI uses to collect trial
// results: length-prefixed frames in the local .nni/metrics file, and tagged
// lines scraped from a trial's stdout.
package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TypeFinal marks a trial's final result.
const TypeFinal = "FINAL"

// Record is one reported result. Field order is the wire order.
type Record struct {
	ParameterID int    `json:"parameter_id"`
	TrialJobID  string `json:"trial_job_id"`
	Type        string `json:"type"`
	Sequence    int    `json:"sequence"`
	Value       string `json:"value"`
}

// NewFinal returns the final-result record for a trial.
func NewFinal(parameterID int, trialJobID, value string) Record {
	return Record{
		ParameterID: parameterID,
		TrialJobID:  trialJobID,
		Type:        TypeFinal,
		Sequence:    0,
		Value:       value,
	}
}

// Marshal encodes r as a single line of JSON without a trailing newline.
// HTML characters are not escaped.
func Marshal(r Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("marshaling record: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func unmarshal(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("parsing record: %w", err)
	}
	return r, nil
}
