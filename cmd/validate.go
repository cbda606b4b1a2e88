package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/photoedit/internal/manifest"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate a photoedit manifest and check referenced files exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	path := args[0]
	m, err := manifest.Read(path)
	if err != nil {
		return err
	}

	baseDir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		baseDir = filepath.Dir(path)
	}
	errs := manifest.Validate(m, filepath.Join(baseDir, filepath.FromSlash(m.BasePath)))

	if len(errs) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d entries, all files present\n", m.Stats.TotalEntries)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}
