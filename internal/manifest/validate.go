package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Validate checks the manifest for internal consistency and that every
// output file exists under baseDir with the recorded size. It returns one
// message per problem, in a stable order.
func Validate(m *Manifest, baseDir string) []string {
	var errs []string

	if m.Version != SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}

	keys := make([]string, 0, len(m.Entries))
	for k := range m.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seenPaths := map[string]string{}
	var inBytes, outBytes int64
	for _, key := range keys {
		e := m.Entries[key]
		inBytes += e.Source.Size
		outBytes += e.Output.Size

		if e.Source.Width <= 0 || e.Source.Height <= 0 {
			errs = append(errs, fmt.Sprintf("entry %q: invalid source dimensions %dx%d",
				key, e.Source.Width, e.Source.Height))
		}
		if e.Source.Hash == "" {
			errs = append(errs, fmt.Sprintf("entry %q: missing source hash", key))
		}
		if e.AspectRatio <= 0 {
			errs = append(errs, fmt.Sprintf("entry %q: invalid aspect ratio %.4f", key, e.AspectRatio))
		}
		if p := e.Params.Clamp(); p != e.Params {
			errs = append(errs, fmt.Sprintf("entry %q: params out of range: %+v", key, e.Params))
		}

		o := e.Output
		if o.Format == "" {
			errs = append(errs, fmt.Sprintf("entry %q: empty output format", key))
		}
		if o.Width <= 0 || o.Height <= 0 {
			errs = append(errs, fmt.Sprintf("entry %q: invalid output dimensions %dx%d", key, o.Width, o.Height))
		}
		if o.Hash == "" {
			errs = append(errs, fmt.Sprintf("entry %q: missing output hash", key))
		}
		if o.Path == "" {
			errs = append(errs, fmt.Sprintf("entry %q: missing output path", key))
			continue
		}

		if other, ok := seenPaths[o.Path]; ok {
			errs = append(errs, fmt.Sprintf("entry %q: output path %q already used by %q", key, o.Path, other))
		}
		seenPaths[o.Path] = key

		info, err := os.Stat(filepath.Join(baseDir, filepath.FromSlash(o.Path)))
		if err != nil {
			errs = append(errs, fmt.Sprintf("entry %q: file not found: %s", key, o.Path))
		} else if o.Size > 0 && info.Size() != o.Size {
			errs = append(errs, fmt.Sprintf("entry %q: size mismatch: manifest=%d, disk=%d",
				key, o.Size, info.Size()))
		}
	}

	if m.Stats.TotalEntries != len(m.Entries) {
		errs = append(errs, fmt.Sprintf("stats.total_entries mismatch: %d != %d", m.Stats.TotalEntries, len(m.Entries)))
	}
	if m.Stats.TotalInputBytes != inBytes {
		errs = append(errs, fmt.Sprintf("stats.total_input_bytes mismatch: %d != %d", m.Stats.TotalInputBytes, inBytes))
	}
	if m.Stats.TotalOutputBytes != outBytes {
		errs = append(errs, fmt.Sprintf("stats.total_output_bytes mismatch: %d != %d", m.Stats.TotalOutputBytes, outBytes))
	}

	return errs
}
