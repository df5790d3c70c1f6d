// Package cmd implements the regionctl command line tool, which inspects,
// converts and reads region files without the editor.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"region-mapper/internal/export"
	"region-mapper/internal/version"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "regionctl",
	Short: "Region Mapper command line tools",
	Long: `regionctl works with region files saved by Region Mapper:
  - print the regions and groups of a file
  - export to CSV or an image mask
  - check a file for errors
  - read the text in every region with OCR

Examples:
  regionctl info form.json                 # List regions
  regionctl export form.json -f csv        # Write form.csv
  regionctl mask form.json -o mask.png     # Render the region mask
  regionctl ocr form.json --lang deu       # Read region text`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !verbose {
			log.SetOutput(io.Discard)
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// readRegions loads a region file named on the command line.
func readRegions(path string) (*export.Imported, error) {
	imp, err := export.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading regions: %w", err)
	}
	return imp, nil
}

// replaceExt swaps the extension of path.
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
