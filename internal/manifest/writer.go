package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// New creates an empty manifest with defaults.
func New(profileName string) *Manifest {
	return &Manifest{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
		BasePath:    "./",
		Entries:     make(map[string]Entry),
	}
}

// ComputeStats recalculates aggregate statistics from entries.
func (m *Manifest) ComputeStats() {
	var s Stats
	s.TotalEntries = len(m.Entries)
	for _, e := range m.Entries {
		s.TotalInputBytes += e.Source.Size
		s.TotalOutputBytes += e.Output.Size
		for _, op := range e.Ops {
			if op == "remove-bg" {
				s.MattedEntries++
				break
			}
		}
	}
	m.Stats = s
}

// WriteJSON serializes the manifest to a JSON file. Map keys are sorted by
// encoding/json, so output is stable.
func WriteJSON(m *Manifest, path string) error {
	m.ComputeStats()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// Read loads a manifest from a file, or from FileName inside a directory.
// Unknown fields are ignored so newer manifests still load.
func Read(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
