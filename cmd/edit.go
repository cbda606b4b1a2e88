package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/AnyUserName/photoedit/internal/apperr"
	"github.com/AnyUserName/photoedit/internal/manifest"
	"github.com/AnyUserName/photoedit/internal/pipeline"
	"github.com/AnyUserName/photoedit/internal/profile"
	"github.com/spf13/cobra"
)

var (
	editOut      string
	editQuality  int
	editManifest string
	editFlagSet  editFlags
)

var editCmd = &cobra.Command{
	Use:   "edit <input>",
	Short: "Edit one image and export it",
	Long: `Loads an image, applies operations in the order given, bakes the tonal
parameters and writes the result. The output format follows the -o
extension (jpg, png, webp, avif, tiff, bmp); no extension means JPEG.

Example:
  photoedit edit cat.jpg -o cat.png --op rotate --op remove-bg --sepia 60`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editOut, "out", "o", "", "output file (default <input>.edited.jpg)")
	editCmd.Flags().IntVarP(&editQuality, "quality", "q", 0, "quality 1-100 (0 = 95)")
	editCmd.Flags().StringVar(&editManifest, "manifest", "", "also write a manifest describing the edit")
	editFlagSet.register(editCmd)
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	in := args[0]
	start := time.Now()

	out := editOut
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".edited.jpg"
	}

	r, err := editFlagSet.recipe(cmd)
	if err != nil {
		return err
	}
	bg, err := editFlagSet.backgroundColor()
	if err != nil {
		return err
	}
	gen, matteName := newGenerator(cfg)
	if r.NeedsMatte() && gen == nil {
		return apperr.NewMatteGeneratorError(
			fmt.Sprintf("remove-bg needs a matte backend (matte=%s, rembg=%s)", cfg.Matte, cfg.RembgPath), nil)
	}

	pc := pipeline.Config{
		Recipe:       r,
		Profile:      profile.Get(profile.DefaultName),
		Quality:      editQuality,
		Matte:        gen,
		MatteName:    matteName,
		MatteTimeout: cfg.MatteTimeout,
		Background:   bg,
	}
	if editManifest != "" {
		pc.OutputDir = filepath.Dir(editManifest)
	}

	entry, err := pipeline.EditFile(cmd.Context(), pc, in, out)
	if err != nil {
		return err
	}

	if editManifest != "" {
		m := manifest.New(pc.Profile.Name)
		m.Recipe = r.Summary()
		m.BuildInfo = &manifest.BuildInfo{Workers: 1, Matte: matteName}
		key := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		m.Entries[key] = entry
		if err := manifest.WriteJSON(m, editManifest); err != nil {
			return apperr.NewIOError("write manifest", err)
		}
	}

	fmt.Printf("  %s → %s\n", in, out)
	fmt.Printf("  %s\n", r.Summary())
	fmt.Printf("  %dx%d → %dx%d %s, %s in %s\n",
		entry.Source.Width, entry.Source.Height,
		entry.Output.Width, entry.Output.Height, entry.Output.Format,
		formatBytes(entry.Output.Size), time.Since(start).Round(time.Millisecond))
	return nil
}
