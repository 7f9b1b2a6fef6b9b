package nni_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/eerhardt/nni-mlnet/internal/nni"
)

const sampleConfig = `{"parameter_id":7,"parameter_source":"x","parameters":{"LearningRate":0.5,"NumberOfLeaves":31,"UseSoftmax":true},"parameter_index":0}`

func writeParameterFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, nni.ParameterFile), []byte(content), 0o644); err != nil {
		t.Fatalf("writing parameter file: %v", err)
	}
}

func TestLoadEnv(t *testing.T) {
	vars := map[string]string{
		"NNI_SYS_DIR":      "/tmp/trial",
		"NNI_TRIAL_JOB_ID": "Ab3dE",
		"NNI_PLATFORM":     "local",
	}
	env := nni.LoadEnv(func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
	if env.SysDir != "/tmp/trial" {
		t.Errorf("SysDir: got %q", env.SysDir)
	}
	if env.JobID() != "Ab3dE" {
		t.Errorf("JobID: got %q", env.JobID())
	}
	if !env.IsLocal() {
		t.Error("expected local platform")
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	env := nni.LoadEnv(func(string) (string, bool) { return "", false })
	if env.SysDir != "" {
		t.Errorf("SysDir: got %q, want empty", env.SysDir)
	}
	if env.JobID() != "local" {
		t.Errorf("JobID: got %q, want %q", env.JobID(), "local")
	}
	if env.IsLocal() {
		t.Error("absent platform should not be local")
	}
}

func TestGetNextParameter(t *testing.T) {
	dir := t.TempDir()
	writeParameterFile(t, dir, sampleConfig)

	c := nni.NewClient(&nni.ClientOpts{Env: nni.Env{SysDir: dir}})
	got, err := c.GetNextParameter()
	if err != nil {
		t.Fatalf("GetNextParameter: %v", err)
	}
	want := map[string]string{
		"LearningRate":   "0.5",
		"NumberOfLeaves": "31",
		"UseSoftmax":     "true",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d parameters, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: got %q, want %q", k, got[k], v)
		}
	}
	if c.ParameterID() != 7 {
		t.Errorf("ParameterID: got %d, want 7", c.ParameterID())
	}
}

func TestGetNextParameterValueKinds(t *testing.T) {
	dir := t.TempDir()
	writeParameterFile(t, dir, `{"parameter_id":1,"parameter_source":"algorithm","parameter_index":0,
		"parameters":{"iters":100,"lr":1e-3,"whole":30.0,"huge":1e21,"opt":"adam","on":false}}`)

	c := nni.NewClient(&nni.ClientOpts{Env: nni.Env{SysDir: dir}})
	values, err := c.GetNextParameterValues()
	if err != nil {
		t.Fatalf("GetNextParameterValues: %v", err)
	}
	tests := []struct {
		name string
		kind nni.Kind
		str  string
	}{
		{"iters", nni.KindInt, "100"},
		{"lr", nni.KindFloat, "0.001"},
		{"whole", nni.KindFloat, "30"},
		{"huge", nni.KindFloat, "1e+21"},
		{"opt", nni.KindString, "adam"},
		{"on", nni.KindBool, "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := values[tt.name]
			if v.Kind() != tt.kind {
				t.Errorf("kind: got %v, want %v", v.Kind(), tt.kind)
			}
			if v.String() != tt.str {
				t.Errorf("string: got %q, want %q", v.String(), tt.str)
			}
		})
	}
}

func TestGetNextParameterNoSysDir(t *testing.T) {
	// A parameter file in the working directory must not be picked up.
	wd := t.TempDir()
	writeParameterFile(t, wd, sampleConfig)
	t.Chdir(wd)

	c := nni.NewClient(&nni.ClientOpts{})
	got, err := c.GetNextParameter()
	if err != nil {
		t.Fatalf("GetNextParameter: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil map, got %v", got)
	}
	if c.ParameterID() != 0 {
		t.Errorf("ParameterID: got %d, want 0", c.ParameterID())
	}
}

func TestGetNextParameterMissingFile(t *testing.T) {
	c := nni.NewClient(&nni.ClientOpts{Env: nni.Env{SysDir: t.TempDir()}})
	_, err := c.GetNextParameter()
	if !errors.Is(err, nni.ErrParameterNotFound) {
		t.Fatalf("expected ErrParameterNotFound, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestGetNextParameterParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `parameter_id=7`},
		{"truncated", `{"parameter_id":7,`},
		{"array", `[1,2,3]`},
		{"missing parameter_id", `{"parameter_source":"x","parameters":{},"parameter_index":0}`},
		{"missing parameter_source", `{"parameter_id":1,"parameters":{},"parameter_index":0}`},
		{"missing parameters", `{"parameter_id":1,"parameter_source":"x","parameter_index":0}`},
		{"null parameters", `{"parameter_id":1,"parameter_source":"x","parameters":null,"parameter_index":0}`},
		{"missing parameter_index", `{"parameter_id":1,"parameter_source":"x","parameters":{}}`},
		{"fractional id", `{"parameter_id":1.5,"parameter_source":"x","parameters":{},"parameter_index":0}`},
		{"nested value", `{"parameter_id":1,"parameter_source":"x","parameters":{"a":{"_name":"b"}},"parameter_index":0}`},
		{"array value", `{"parameter_id":1,"parameter_source":"x","parameters":{"a":[1]},"parameter_index":0}`},
		{"null value", `{"parameter_id":1,"parameter_source":"x","parameters":{"a":null},"parameter_index":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeParameterFile(t, dir, tt.content)
			c := nni.NewClient(&nni.ClientOpts{Env: nni.Env{SysDir: dir}})
			_, err := c.GetNextParameter()
			if !errors.Is(err, nni.ErrParameterParse) {
				t.Fatalf("expected ErrParameterParse, got %v", err)
			}
			if c.ParameterID() != 0 {
				t.Errorf("ParameterID changed on failed load: %d", c.ParameterID())
			}
		})
	}
}

func TestGetNextParameterIgnoresExtraFields(t *testing.T) {
	dir := t.TempDir()
	writeParameterFile(t, dir, `{"parameter_id":3,"parameter_source":"resumed","parameters":{"a":1},"parameter_index":2,"trial_concurrency":4}`)
	c := nni.NewClient(&nni.ClientOpts{Env: nni.Env{SysDir: dir}})
	got, err := c.GetNextParameter()
	if err != nil {
		t.Fatalf("GetNextParameter: %v", err)
	}
	if got["a"] != "1" || c.ParameterID() != 3 {
		t.Errorf("got %v, id %d", got, c.ParameterID())
	}
}
