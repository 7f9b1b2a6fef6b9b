package metrics

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// stdoutPrefix mirrors the repr of a Python bytes literal, which is what the
// orchestrator's log scraper matches on.
const stdoutPrefix = "NNISDK_MEb'"

const maxLogLine = 4 << 20

// StdoutLine renders payload as a single stdout line including the newline.
func StdoutLine(payload []byte) []byte {
	out := make([]byte, 0, len(stdoutPrefix)+len(payload)+2)
	out = append(out, stdoutPrefix...)
	out = append(out, payload...)
	out = append(out, '\'', '\n')
	return out
}

// ParseLog extracts records from captured trial stdout. Lines that are not
// metric lines are skipped; a metric line with a bad payload is an error.
func ParseLog(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLogLine)
	var records []Record
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimRight(sc.Bytes(), "\r")
		// The prefix itself ends in a quote, so require at least one more byte.
		if len(line) <= len(stdoutPrefix) || !bytes.HasPrefix(line, []byte(stdoutPrefix)) || line[len(line)-1] != '\'' {
			continue
		}
		rec, err := unmarshal(line[len(stdoutPrefix) : len(line)-1])
		if err != nil {
			return records, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return records, fmt.Errorf("scanning log: %w", err)
	}
	return records, nil
}
