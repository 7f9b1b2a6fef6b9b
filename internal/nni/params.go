package nni

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// ParameterFile is the name of the parameter file inside NNI_SYS_DIR.
const ParameterFile = "parameter.cfg"

// parameterConfig mirrors parameter.cfg. Pointer fields detect absence.
type parameterConfig struct {
	ParameterID     *int                       `json:"parameter_id"`
	ParameterSource *string                    `json:"parameter_source"`
	Parameters      map[string]json.RawMessage `json:"parameters"`
	ParameterIndex  *int                       `json:"parameter_index"`
}

// GetNextParameter returns the parameters assigned to this trial, each
// rendered in canonical form. Without a base directory it returns an empty
// map and touches no files.
func (c *Client) GetNextParameter() (map[string]string, error) {
	values, err := c.GetNextParameterValues()
	if err != nil {
		return nil, err
	}
	params := make(map[string]string, len(values))
	for k, v := range values {
		params[k] = v.String()
	}
	return params, nil
}

// GetNextParameterValues is GetNextParameter without the string conversion.
func (c *Client) GetNextParameterValues() (map[string]Value, error) {
	if c.env.SysDir == "" {
		return map[string]Value{}, nil
	}
	path := filepath.Join(c.env.SysDir, ParameterFile)
	data, err := readParameterFile(path)
	if err != nil {
		return nil, err
	}
	id, values, err := parseParameterConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrParameterParse, path, err)
	}
	c.parameterID = id
	c.log.Debug("loaded parameters", "path", path, "parameter_id", id, "count", len(values))
	return values, nil
}

func readParameterFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParameterNotFound, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrParameterNotFound, path, err)
	}
	return data, nil
}

func parseParameterConfig(data []byte) (int, map[string]Value, error) {
	var cfg parameterConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return 0, nil, err
	}
	switch {
	case cfg.ParameterID == nil:
		return 0, nil, errors.New("missing parameter_id")
	case cfg.ParameterSource == nil:
		return 0, nil, errors.New("missing parameter_source")
	case cfg.Parameters == nil:
		return 0, nil, errors.New("missing parameters")
	case cfg.ParameterIndex == nil:
		return 0, nil, errors.New("missing parameter_index")
	}
	values := make(map[string]Value, len(cfg.Parameters))
	for name, raw := range cfg.Parameters {
		v, err := decodeValue(raw)
		if err != nil {
			return 0, nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		values[name] = v
	}
	return *cfg.ParameterID, values, nil
}

// decodeValue maps a raw JSON scalar onto Value. Numbers without a fraction
// or exponent that fit in an int64 become integers.
func decodeValue(raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}, errors.New("empty value")
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case c == 't' || c == 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case c == '-' || (c >= '0' && c <= '9'):
		text := string(raw)
		if !bytes.ContainsAny(raw, ".eE") {
			if i, err := strconv.ParseInt(text, 10, 64); err == nil {
				return IntValue(i), nil
			}
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("bad number %s: %w", text, err)
		}
		return FloatValue(f), nil
	default:
		return Value{}, fmt.Errorf("unsupported value %s: want a number, boolean or string", raw)
	}
}
