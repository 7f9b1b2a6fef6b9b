package metrics

import (
	"fmt"
	"io"
	"strconv"
)

const (
	frameTag       = "ME"
	frameLenDigits = 6

	// MaxPayload is the largest payload a six-digit length field can describe.
	MaxPayload = 999999
)

// Frame wraps payload as a metrics-file record: "ME", the payload's byte
// length as six zero-padded digits, the payload, and a newline.
func Frame(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("payload of %d bytes exceeds frame limit of %d", len(payload), MaxPayload)
	}
	out := make([]byte, 0, len(frameTag)+frameLenDigits+len(payload)+1)
	out = append(out, frameTag...)
	out = fmt.Appendf(out, "%0*d", frameLenDigits, len(payload))
	out = append(out, payload...)
	out = append(out, '\n')
	return out, nil
}

// ReadFrames decodes every record in a metrics file.
func ReadFrames(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading metrics: %w", err)
	}
	var records []Record
	off := 0
	for off < len(data) {
		payload, next, err := nextFrame(data, off)
		if err != nil {
			return records, err
		}
		rec, err := unmarshal(payload)
		if err != nil {
			return records, fmt.Errorf("frame at offset %d: %w", off, err)
		}
		records = append(records, rec)
		off = next
	}
	return records, nil
}

func nextFrame(data []byte, off int) (payload []byte, next int, err error) {
	header := len(frameTag) + frameLenDigits
	if len(data)-off < header {
		return nil, 0, fmt.Errorf("truncated frame header at offset %d", off)
	}
	if string(data[off:off+len(frameTag)]) != frameTag {
		return nil, 0, fmt.Errorf("bad frame tag %q at offset %d", data[off:off+len(frameTag)], off)
	}
	digits := string(data[off+len(frameTag) : off+header])
	n, err := strconv.Atoi(digits)
	if err != nil || !allDigits(digits) {
		return nil, 0, fmt.Errorf("bad frame length %q at offset %d", digits, off)
	}
	start := off + header
	end := start + n
	if end >= len(data) {
		return nil, 0, fmt.Errorf("truncated frame at offset %d: want %d payload bytes", off, n)
	}
	if data[end] != '\n' {
		return nil, 0, fmt.Errorf("missing frame terminator at offset %d", end)
	}
	return data[start:end], end + 1, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
