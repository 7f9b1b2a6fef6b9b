package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/eerhardt/nni-mlnet/internal/metrics"
	"github.com/eerhardt/nni-mlnet/internal/nni"
)

// TrialSummary aggregates the records reported by one trial job.
type TrialSummary struct {
	TrialJobID string  `json:"trial_job_id"`
	Records    int     `json:"records"`
	Parameters []int   `json:"parameter_ids"`
	Last       string  `json:"last"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Mean       float64 `json:"mean"`
	// Invalid counts values that are not finite numbers; they are left out of
	// Min, Max and Mean.
	Invalid int `json:"invalid,omitempty"`
}

// ReadRecords loads records from a metrics file, or from captured stdout
// when fromLog is set.
func ReadRecords(path string, fromLog bool) ([]metrics.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if fromLog {
		return metrics.ParseLog(f)
	}
	return metrics.ReadFrames(f)
}

// CheckFormat reports whether Generate can render format.
func CheckFormat(format string) error {
	switch format {
	case "table", "markdown", "json":
		return nil
	}
	return fmt.Errorf("unknown format %q (want table, markdown or json)", format)
}

// Generate summarizes records in the given format (table, markdown, json).
func Generate(records []metrics.Record, format string, w io.Writer) error {
	if err := CheckFormat(format); err != nil {
		return err
	}
	summaries := aggregate(records)

	switch format {
	case "markdown":
		return writeMarkdown(summaries, w)
	case "json":
		return writeJSON(summaries, w)
	default:
		return writeTable(summaries, w)
	}
}

func aggregate(records []metrics.Record) []TrialSummary {
	type accum struct {
		count   int
		ids     map[int]bool
		last    string
		numeric int
		sum     float64
		min     float64
		max     float64
		invalid int
	}
	byTrial := map[string]*accum{}

	for _, r := range records {
		a, ok := byTrial[r.TrialJobID]
		if !ok {
			a = &accum{ids: map[int]bool{}, min: math.Inf(1), max: math.Inf(-1)}
			byTrial[r.TrialJobID] = a
		}
		a.count++
		a.ids[r.ParameterID] = true
		a.last = r.Value
		v, err := strconv.ParseFloat(r.Value, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			a.invalid++
			continue
		}
		a.numeric++
		a.sum += v
		a.min = math.Min(a.min, v)
		a.max = math.Max(a.max, v)
	}

	var summaries []TrialSummary
	for id, a := range byTrial {
		s := TrialSummary{
			TrialJobID: id,
			Records:    a.count,
			Last:       a.last,
			Invalid:    a.invalid,
		}
		for pid := range a.ids {
			s.Parameters = append(s.Parameters, pid)
		}
		sort.Ints(s.Parameters)
		if a.numeric > 0 {
			s.Min = a.min
			s.Max = a.max
			s.Mean = a.sum / float64(a.numeric)
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TrialJobID < summaries[j].TrialJobID
	})
	return summaries
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func writeTable(summaries []TrialSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRIAL\tRECORDS\tPARAMETER IDS\tLAST\tMIN\tMAX\tMEAN")
	fmt.Fprintln(tw, strings.Repeat("-", 72))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			s.TrialJobID, s.Records, joinIDs(s.Parameters), s.Last,
			nni.FormatFloat(s.Min), nni.FormatFloat(s.Max), nni.FormatFloat(s.Mean))
	}
	return tw.Flush()
}

func writeMarkdown(summaries []TrialSummary, w io.Writer) error {
	fmt.Fprintln(w, "| Trial | Records | Parameter IDs | Last | Min | Max | Mean |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|")
	for _, s := range summaries {
		fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %s | %s |\n",
			s.TrialJobID, s.Records, joinIDs(s.Parameters), s.Last,
			nni.FormatFloat(s.Min), nni.FormatFloat(s.Max), nni.FormatFloat(s.Mean))
	}
	return nil
}

func writeJSON(summaries []TrialSummary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
