// Package manifest is the JSON sidecar written next to edited images.
package manifest

import "github.com/AnyUserName/photoedit/internal/adjust"

// FileName is the manifest name inside an output directory.
const FileName = "photoedit.manifest.json"

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// Manifest is the top-level output of an edit or batch run.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	Recipe      string           `json:"recipe,omitempty"` // one-line recipe summary
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Entries     map[string]Entry `json:"entries"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures run parameters for diagnostics.
type BuildInfo struct {
	Workers int    `json:"workers"`
	Matte   string `json:"matte,omitempty"` // exec, http or none
}

// Entry describes one source image and the file its edit produced.
type Entry struct {
	Source      SourceInfo    `json:"source"`
	Ops         []string      `json:"ops"`
	Params      adjust.Params `json:"params"`
	Output      Output        `json:"output"`
	RasterHash  string        `json:"raster_hash"`         // xxhash64 of the baked pixels
	AspectRatio float64       `json:"aspect_ratio"`        // output width / height
	AvgColor    *[3]uint8     `json:"avg_color,omitempty"` // [R,G,B] of the output
}

// SourceInfo holds metadata about the input file.
type SourceInfo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
	Hash   string `json:"hash"` // xxhash64 of the file bytes
}

// Output is the encoded result of an edit.
type Output struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"` // bytes on disk
	Hash   string `json:"hash"` // first 16 hex chars of xxhash64
	Path   string `json:"path"` // relative to base_path
}

// Stats aggregates run metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalEntries     int   `json:"total_entries"`
	MattedEntries    int   `json:"matted_entries,omitempty"` // entries with a remove-bg op
}
