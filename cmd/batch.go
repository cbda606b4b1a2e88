package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/AnyUserName/photoedit/internal/apperr"
	"github.com/AnyUserName/photoedit/internal/logger"
	"github.com/AnyUserName/photoedit/internal/manifest"
	"github.com/AnyUserName/photoedit/internal/pipeline"
	"github.com/AnyUserName/photoedit/internal/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	batchOutDir  string
	batchProfile string
	batchFormat  string
	batchWorkers int
	batchQuality int
	batchFlagSet editFlags
)

var batchCmd = &cobra.Command{
	Use:   "batch <input_dir>",
	Short: "Replay one edit over every image in a directory",
	Long: `Scans the input directory for images (png, jpg, jpeg, webp, gif, bmp,
tiff), runs the same recipe on each in its own edit session, and writes
the results plus a manifest.

Output filenames are content-addressed: <key>.<hash>.ext`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "./photoedit_out", "output directory")
	batchCmd.Flags().StringVarP(&batchProfile, "profile", "p", profile.DefaultName, "export profile")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "output format (default from profile)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (0 = PHOTOEDIT_WORKERS or NumCPU)")
	batchCmd.Flags().IntVarP(&batchQuality, "quality", "q", 0, "quality 1-100 (0 = profile default)")
	batchFlagSet.register(batchCmd)
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputDir := args[0]
	start := time.Now()

	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(batchOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	r, err := batchFlagSet.recipe(cmd)
	if err != nil {
		return err
	}
	bg, err := batchFlagSet.backgroundColor()
	if err != nil {
		return err
	}
	gen, matteName := newGenerator(cfg)

	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Workers
	}

	logger.WithFields(logrus.Fields{
		"input":   absInput,
		"output":  absOutput,
		"profile": batchProfile,
		"matte":   matteName,
	}).Debug("batch configured")

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return apperr.NewIOError("create output dir", err)
	}

	p := pipeline.New(pipeline.Config{
		InputDir:     absInput,
		OutputDir:    absOutput,
		Recipe:       r,
		Profile:      profile.Get(batchProfile),
		Format:       batchFormat,
		Quality:      batchQuality,
		Workers:      workers,
		Matte:        gen,
		MatteName:    matteName,
		MatteTimeout: cfg.MatteTimeout,
		Background:   bg,
		Log:          logrus.NewEntry(logger.Logger),
	})

	m, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return apperr.NewIOError("write manifest", err)
	}

	printBatchReport(m, time.Since(start))
	return nil
}

func printBatchReport(m *manifest.Manifest, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("  photoedit batch complete")
	fmt.Println()

	stats := m.Stats
	ratio := float64(0)
	if stats.TotalInputBytes > 0 {
		ratio = float64(stats.TotalOutputBytes) / float64(stats.TotalInputBytes) * 100
	}

	fmt.Printf("  Recipe:      %s\n", m.Recipe)
	fmt.Printf("  Images:      %d\n", stats.TotalEntries)
	if stats.MattedEntries > 0 {
		fmt.Printf("  Matted:      %d\n", stats.MattedEntries)
	}
	fmt.Printf("  Input size:  %s\n", formatBytes(stats.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(stats.TotalOutputBytes))
	fmt.Printf("  Ratio:       %.1f%% of original\n", ratio)
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:     %d  (matte: %s)\n", m.BuildInfo.Workers, m.BuildInfo.Matte)
	}
	fmt.Println()

	// Top 10 largest outputs.
	if len(m.Entries) > 0 {
		type entrySize struct {
			key        string
			inputSize  int64
			outputSize int64
		}
		var items []entrySize
		for key, e := range m.Entries {
			items = append(items, entrySize{key, e.Source.Size, e.Output.Size})
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].outputSize != items[j].outputSize {
				return items[i].outputSize > items[j].outputSize
			}
			return items[i].key < items[j].key
		})
		n := min(len(items), 10)
		fmt.Printf("  Top %d largest (original → edited):\n", n)
		for _, it := range items[:n] {
			fmt.Printf("    %-40s %8s → %8s\n",
				truncKey(it.key, 40),
				formatBytes(it.inputSize),
				formatBytes(it.outputSize),
			)
		}
		fmt.Println()
	}

	fmt.Printf("  Formats:     %s\n", strings.Join(outputFormats(m), ", "))

	data, _ := json.Marshal(m)
	fmt.Printf("  Manifest:    %s (%s)\n", manifest.FileName, formatBytes(int64(len(data))))
	fmt.Println()
}

func outputFormats(m *manifest.Manifest) []string {
	set := map[string]bool{}
	for _, e := range m.Entries {
		set[e.Output.Format] = true
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
