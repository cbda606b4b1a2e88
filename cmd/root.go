package cmd

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/AnyUserName/photoedit/internal/config"
	"github.com/AnyUserName/photoedit/internal/logger"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
	logJSON bool

	// cfg is loaded from the environment before any command runs and then
	// patched with whichever matte flags were set explicitly.
	cfg *config.Config

	matteBackend string
	rembgPath    string
	rembgURL     string
	rembgModel   string
	maskOnly     bool
	matteTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "photoedit",
	Short: "Non-destructive photo edits from the command line",
	Long: `photoedit applies tonal adjustments (brightness, contrast, sepia) and
destructive transforms (rotate, flip, invert, background removal) to images.

Edits can be given as flags or as a JSON/YAML recipe and replayed over a
whole directory. Background removal calls rembg, either as a local binary
or over HTTP.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the CLI. Cancelling ctx aborts in-flight background
// removal and batch work.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")
	pf.StringVar(&matteBackend, "matte", "", "background removal backend: exec, http or none (env PHOTOEDIT_MATTE)")
	pf.StringVar(&rembgPath, "rembg", "", "rembg binary for the exec backend (env PHOTOEDIT_REMBG_PATH)")
	pf.StringVar(&rembgURL, "rembg-url", "", "rembg server endpoint for the http backend (env PHOTOEDIT_REMBG_URL)")
	pf.StringVar(&rembgModel, "model", "", "rembg model name (env PHOTOEDIT_REMBG_MODEL)")
	pf.BoolVar(&maskOnly, "mask-only", false, "request a bare mask instead of a cutout")
	pf.DurationVar(&matteTimeout, "matte-timeout", 0, "deadline per background removal, 0 for none")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"photoedit %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if logJSON {
		logger.SetJSON()
	}

	c, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("matte") {
		c.Matte = matteBackend
	}
	if flags.Changed("rembg") {
		c.RembgPath = rembgPath
	}
	if flags.Changed("rembg-url") {
		c.RembgURL = rembgURL
	}
	if flags.Changed("model") {
		c.RembgModel = rembgModel
	}
	if flags.Changed("mask-only") {
		c.MaskOnly = maskOnly
	}
	if flags.Changed("matte-timeout") {
		c.MatteTimeout = matteTimeout
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	logger.WithField("matte", cfg.Matte).Debug("configuration loaded")
	return nil
}
