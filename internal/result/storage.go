package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const metaFile = "meta.json"

func MetaPath(trialDir string) string {
	return filepath.Join(trialDir, metaFile)
}

func WriteTrialMeta(trialDir string, meta *TrialMeta) error {
	if err := os.MkdirAll(trialDir, 0o755); err != nil {
		return fmt.Errorf("creating trial dir: %w", err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	return os.WriteFile(MetaPath(trialDir), data, 0o644)
}

func ReadTrialMeta(path string) (*TrialMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}
	var meta TrialMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing meta: %w", err)
	}
	return &meta, nil
}
