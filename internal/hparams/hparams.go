// Package hparams binds the string parameters handed out by the orchestrator
// onto typed training options with defaults.
package hparams

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/eerhardt/nni-mlnet/internal/nni"
)

// ErrFormat is returned when a parameter string cannot be parsed as the
// option's declared type.
var ErrFormat = errors.New("invalid hyperparameter format")

// Spec declares one tunable option.
type Spec struct {
	Name    string
	Kind    nni.Kind
	Default nni.Value
}

// Set is the result of Bind: every declared option resolved to a value.
type Set struct {
	values  map[string]nni.Value
	order   []string
	tuned   map[string]bool
	unknown []string
}

// ParseKind maps a config type name onto a Kind.
func ParseKind(s string) (nni.Kind, error) {
	switch strings.ToLower(s) {
	case "int", "integer":
		return nni.KindInt, nil
	case "float", "double", "number":
		return nni.KindFloat, nil
	case "bool", "boolean":
		return nni.KindBool, nil
	case "string", "choice":
		return nni.KindString, nil
	}
	return nni.KindInvalid, fmt.Errorf("unknown hyperparameter type %q", s)
}

// Parse converts s into a value of the given kind.
func Parse(kind nni.Kind, s string) (nni.Value, error) {
	switch kind {
	case nni.KindInt:
		i, err := ParseInt(s)
		if err != nil {
			return nni.Value{}, err
		}
		return nni.IntValue(i), nil
	case nni.KindFloat:
		f, err := ParseFloat(s)
		if err != nil {
			return nni.Value{}, err
		}
		return nni.FloatValue(f), nil
	case nni.KindBool:
		b, err := ParseBool(s)
		if err != nil {
			return nni.Value{}, err
		}
		return nni.BoolValue(b), nil
	case nni.KindString:
		return nni.StringValue(s), nil
	}
	return nni.Value{}, fmt.Errorf("unsupported kind %v", kind)
}

// ParseInt accepts an integer literal, or a float literal truncated toward
// zero, since tuners often hand out integral options as "30.0".
func ParseInt(s string) (int64, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: can't parse %q into an int", ErrFormat, s)
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q overflows an int", ErrFormat, s)
	}
	return int64(t), nil
}

func ParseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: can't parse %q into a float", ErrFormat, s)
	}
	return f, nil
}

func ParseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: can't parse %q into a bool", ErrFormat, s)
	}
	return b, nil
}

// Bind resolves each spec against params: a present key is parsed into the
// spec's kind, an absent key takes the default. Keys with no spec are kept
// aside in Unknown.
func Bind(specs []Spec, params map[string]string) (*Set, error) {
	set := &Set{
		values: make(map[string]nni.Value, len(specs)),
		tuned:  make(map[string]bool),
	}
	declared := make(map[string]bool, len(specs))
	for _, s := range specs {
		declared[s.Name] = true
		set.order = append(set.order, s.Name)
		raw, ok := params[s.Name]
		if !ok {
			set.values[s.Name] = s.Default
			continue
		}
		v, err := Parse(s.Kind, raw)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", s.Name, err)
		}
		set.values[s.Name] = v
		set.tuned[s.Name] = true
	}
	for k := range params {
		if !declared[k] {
			set.unknown = append(set.unknown, k)
		}
	}
	sort.Strings(set.unknown)
	return set, nil
}

func (s *Set) Get(name string) (nni.Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Tuned reports whether name came from the orchestrator rather than a default.
func (s *Set) Tuned(name string) bool { return s.tuned[name] }

// Names returns option names in declaration order.
func (s *Set) Names() []string { return s.order }

// Unknown returns parameter names that matched no spec, sorted.
func (s *Set) Unknown() []string { return s.unknown }

// Map returns every option with a value in canonical string form. Options
// with neither an assignment nor a default are left out, as in Env.
func (s *Set) Map() map[string]string {
	m := make(map[string]string, len(s.values))
	for k, v := range s.values {
		if !v.IsValid() {
			continue
		}
		m[k] = v.String()
	}
	return m
}

// Env renders the options as KEY=value pairs, KEY being prefix + the option
// name upper-cased with non-alphanumerics replaced by underscores.
func (s *Set) Env(prefix string) []string {
	env := make([]string, 0, len(s.order))
	for _, name := range s.order {
		v := s.values[name]
		if !v.IsValid() {
			continue
		}
		env = append(env, prefix+EnvName(name)+"="+v.String())
	}
	return env
}

func EnvName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
