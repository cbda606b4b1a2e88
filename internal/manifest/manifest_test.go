package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnyUserName/photoedit/internal/adjust"
)

func sampleEntry(path string, size int64) Entry {
	return Entry{
		Source: SourceInfo{
			Path: "photos/cat.jpg", Width: 800, Height: 600,
			Format: "jpeg", Size: 100000, Hash: "0123456789abcdef",
		},
		Ops:    []string{"rotate", "remove-bg"},
		Params: adjust.Params{Brightness: 20, Contrast: 1.2, Sepia: 40},
		Output: Output{
			Format: "jpeg", Width: 600, Height: 800,
			Size: size, Hash: "abcd1234abcd1234", Path: path,
		},
		AspectRatio: 0.75,
	}
}

func TestManifestRoundtrip(t *testing.T) {
	m := New("canvas")
	m.BuildInfo = &BuildInfo{Workers: 4, Matte: "http"}
	m.Recipe = "ops=rotate,remove-bg brightness=20 contrast=1.20 sepia=40"
	m.Entries["photos/cat"] = sampleEntry("photos/cat.abcd1234.jpg", 5000)

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := WriteJSON(m, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	m2, err := Read(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m2.Version != SupportedManifestVersion {
		t.Errorf("version: got %d, want %d", m2.Version, SupportedManifestVersion)
	}
	if m2.Profile != "canvas" || m2.Recipe != m.Recipe {
		t.Errorf("header: got profile=%q recipe=%q", m2.Profile, m2.Recipe)
	}
	if m2.BuildInfo == nil || m2.BuildInfo.Workers != 4 || m2.BuildInfo.Matte != "http" {
		t.Errorf("build_info: got %+v", m2.BuildInfo)
	}

	e, ok := m2.Entries["photos/cat"]
	if !ok {
		t.Fatal("entry photos/cat missing")
	}
	if e.Params != (adjust.Params{Brightness: 20, Contrast: 1.2, Sepia: 40}) {
		t.Errorf("params: got %+v", e.Params)
	}
	if len(e.Ops) != 2 || e.Ops[1] != "remove-bg" {
		t.Errorf("ops: got %v", e.Ops)
	}

	s := m2.Stats
	if s.TotalEntries != 1 || s.TotalInputBytes != 100000 || s.TotalOutputBytes != 5000 || s.MattedEntries != 1 {
		t.Errorf("stats: got %+v", s)
	}
}

func TestManifestVersion(t *testing.T) {
	m := New("v-test")
	if m.Version != SupportedManifestVersion {
		t.Errorf("new manifest version: got %d, want %d", m.Version, SupportedManifestVersion)
	}
}

func TestManifestIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"version": 1,
		"generated_at": "2025-01-01T00:00:00Z",
		"profile": "canvas",
		"base_path": "./",
		"future_field": "should be ignored",
		"build_info": { "workers": 8, "new_flag": true },
		"entries": {},
		"stats": { "total_input_bytes": 0, "total_output_bytes": 0, "total_entries": 0, "new_stat": 42 }
	}`

	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	if m.Version != 1 {
		t.Errorf("version: got %d", m.Version)
	}
	if m.BuildInfo == nil || m.BuildInfo.Workers != 8 {
		t.Error("build_info not parsed correctly")
	}
}

func TestValidate_OK(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "photos"), 0o755)
	os.WriteFile(filepath.Join(dir, "photos", "cat.abcd1234.jpg"), make([]byte, 5000), 0o644)

	m := New("canvas")
	m.Entries["photos/cat"] = sampleEntry("photos/cat.abcd1234.jpg", 5000)
	m.ComputeStats()

	if errs := Validate(m, dir); len(errs) != 0 {
		t.Errorf("expected valid manifest, got %v", errs)
	}
}

func TestValidate_Problems(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.jpg"), make([]byte, 10), 0o644)

	bad := sampleEntry("a.jpg", 99)
	bad.Params.Sepia = 500
	bad.Source.Hash = ""

	missing := sampleEntry("gone.jpg", 1)
	dup := sampleEntry("a.jpg", 10)

	m := New("canvas")
	m.Version = 7
	m.Entries["a"] = bad
	m.Entries["b"] = missing
	m.Entries["c"] = dup
	// Stats deliberately stale.

	errs := strings.Join(Validate(m, dir), "\n")
	for _, want := range []string{
		"unsupported manifest version: 7",
		`entry "a": size mismatch`,
		`entry "a": missing source hash`,
		`entry "a": params out of range`,
		`entry "b": file not found: gone.jpg`,
		`entry "c": output path "a.jpg" already used by "a"`,
		"stats.total_entries mismatch",
	} {
		if !strings.Contains(errs, want) {
			t.Errorf("missing %q in:\n%s", want, errs)
		}
	}
}

func TestRead_Missing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing manifest")
	}
}
