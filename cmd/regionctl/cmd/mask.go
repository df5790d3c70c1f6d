package cmd

import (
	"fmt"

	"region-mapper/internal/mask"

	"github.com/spf13/cobra"
)

var (
	maskOutput string
	maskWidth  int
	maskHeight int
)

var maskCmd = &cobra.Command{
	Use:   "mask <regions.json>",
	Short: "Render the region mask as a PNG",
	Long: `Renders a black image with every region filled white, at the page size
stored in the region file unless --width and --height are given.`,
	Args: cobra.ExactArgs(1),
	RunE: runMask,
}

func init() {
	rootCmd.AddCommand(maskCmd)
	maskCmd.Flags().StringVarP(&maskOutput, "output", "o", "", "output PNG (default <input>_mask.png)")
	maskCmd.Flags().IntVar(&maskWidth, "width", 0, "mask width in pixels")
	maskCmd.Flags().IntVar(&maskHeight, "height", 0, "mask height in pixels")
}

func runMask(cmd *cobra.Command, args []string) error {
	imp, err := readRegions(args[0])
	if err != nil {
		return err
	}
	w, h := imp.Meta.Width, imp.Meta.Height
	if maskWidth > 0 && maskHeight > 0 {
		w, h = maskWidth, maskHeight
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("region file has no page size; use --width and --height")
	}

	out := maskOutput
	if out == "" {
		out = replaceExt(args[0], "_mask.png")
	}
	m := mask.FromState(w, h, imp.State)
	if err := mask.WritePNG(out, m); err != nil {
		return fmt.Errorf("error writing mask: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d, %.1f%% covered)\n", out, w, h, mask.Coverage(m)*100)
	return nil
}
