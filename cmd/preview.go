package cmd

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/photoedit/internal/apperr"
	"github.com/AnyUserName/photoedit/internal/display"
	"github.com/AnyUserName/photoedit/internal/encoder"
	"github.com/AnyUserName/photoedit/internal/logger"
	"github.com/AnyUserName/photoedit/internal/profile"
	"github.com/AnyUserName/photoedit/internal/session"
	"github.com/spf13/cobra"
)

var (
	previewOut      string
	previewProfile  string
	previewViewport string
	previewFlagSet  editFlags
)

var previewCmd = &cobra.Command{
	Use:   "preview <input>",
	Short: "Render the on-screen preview of an edit",
	Long: `Applies an edit like "edit" does, then scales the result to the largest
size that fits the profile's viewport, preserving aspect ratio. The
canvas and hd profiles letterbox the image into the full viewport; thumb
writes just the scaled image.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "", "output file (default <input>.preview.png)")
	previewCmd.Flags().StringVarP(&previewProfile, "profile", "p", profile.DefaultName,
		"display profile: "+strings.Join(profile.Names(), ", "))
	previewCmd.Flags().StringVar(&previewViewport, "viewport", "", "viewport WxH (overrides profile)")
	previewFlagSet.register(previewCmd)
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	in := args[0]
	out := previewOut
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".preview.png"
	}

	prof := profile.Get(previewProfile)
	if !profile.Known(previewProfile) {
		logger.Warnf("unknown profile %q, using %s settings", previewProfile, profile.DefaultName)
	}
	if previewViewport != "" {
		vp, err := parseViewport(previewViewport)
		if err != nil {
			return err
		}
		prof.Viewport = vp
	}

	r, err := previewFlagSet.recipe(cmd)
	if err != nil {
		return err
	}
	bg, err := previewFlagSet.backgroundColor()
	if err != nil {
		return err
	}
	gen, _ := newGenerator(cfg)

	enc, err := encoder.NewRegistry().ForPath(out)
	if err != nil {
		return apperr.NewEncodeError(out, err)
	}

	s := session.New(
		session.WithMatteGenerator(gen),
		session.WithBackground(bg),
		session.WithViewport(prof.Viewport),
		session.WithLogger(logger.WithField("input", in)),
	)
	defer s.Close()

	if _, err := s.LoadFile(in); err != nil {
		return err
	}

	ctx := cmd.Context()
	if cfg.MatteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MatteTimeout)
		defer cancel()
	}
	if err := r.Apply(ctx, s); err != nil {
		return err
	}

	frame, ok := s.PreviewFrame(prof.Viewport)
	if !ok {
		return apperr.NewNoImageError("preview")
	}
	var img image.Image = frame.Image
	if prof.Letterbox {
		img = frame.Compose(bg)
	}

	data, err := enc.Encode(img, prof.Quality)
	if err != nil {
		return apperr.NewEncodeError(enc.Format(), err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return apperr.NewIOError("write "+out, err)
	}

	fmt.Printf("  %s → %s (%s)\n", in, out, formatBytes(int64(len(data))))
	fmt.Printf("  viewport %s, image %dx%d at (%d,%d)\n",
		prof.Viewport, frame.Image.Bounds().Dx(), frame.Image.Bounds().Dy(), frame.OffsetX, frame.OffsetY)
	return nil
}

func parseViewport(s string) (display.Viewport, error) {
	var vp display.Viewport
	if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &vp.W, &vp.H); err != nil || !vp.Valid() {
		return display.Viewport{}, fmt.Errorf("invalid viewport %q (want WxH)", s)
	}
	return vp, nil
}
