package cmd

import (
	"fmt"
	"sort"

	"github.com/AnyUserName/photoedit/internal/manifest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a batch output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	m, err := manifest.Read(args[0])
	if err != nil {
		return err
	}
	printStats(m)
	return nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Profile:          %s\n", m.Profile)
	if m.Recipe != "" {
		fmt.Printf("  Recipe:           %s\n", m.Recipe)
	}
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:          %d\n", m.BuildInfo.Workers)
		fmt.Printf("  Matte backend:    %s\n", m.BuildInfo.Matte)
	}
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total entries:    %d\n", s.TotalEntries)
	fmt.Printf("  Matted:           %d\n", s.MattedEntries)
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if s.TotalInputBytes > 0 {
		ratio := float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
		fmt.Printf("  Size ratio:       %.1f%% of original\n", ratio)
	}
	fmt.Println()

	type bucket struct {
		count int
		bytes int64
	}
	formatStats := map[string]bucket{}
	opStats := map[string]int{}
	rotated := 0
	for _, e := range m.Entries {
		b := formatStats[e.Output.Format]
		b.count++
		b.bytes += e.Output.Size
		formatStats[e.Output.Format] = b
		for _, op := range e.Ops {
			opStats[op]++
		}
		if e.Source.Width != e.Output.Width {
			rotated++
		}
	}

	fmt.Println("  Format breakdown:")
	for _, f := range sortedKeys(formatStats) {
		fs := formatStats[f]
		fmt.Printf("    %-6s  %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
	}
	fmt.Println()

	if len(opStats) > 0 {
		fmt.Println("  Operation breakdown:")
		for _, op := range sortedKeys(opStats) {
			fmt.Printf("    %-10s  %4d\n", op, opStats[op])
		}
		fmt.Printf("  Reoriented:       %d / %d entries\n", rotated, len(m.Entries))
		fmt.Println()
	}

	// Warnings.
	var warnings []string
	seenPixels := map[string]string{}
	for _, key := range sortedKeys(m.Entries) {
		e := m.Entries[key]
		if e.RasterHash != "" {
			if other, ok := seenPixels[e.RasterHash]; ok {
				warnings = append(warnings, fmt.Sprintf("entry %q has the same pixels as %q", key, other))
			} else {
				seenPixels[e.RasterHash] = key
			}
		}
		if e.Output.Path == "" {
			warnings = append(warnings, fmt.Sprintf("entry %q has no output", key))
		}
		if e.Params.IsNeutral() && len(e.Ops) == 0 {
			warnings = append(warnings, fmt.Sprintf("entry %q is an unedited copy", key))
		}
	}
	if len(warnings) > 0 {
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
		fmt.Println()
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
