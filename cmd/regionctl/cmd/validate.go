package cmd

import (
	"fmt"

	"region-mapper/internal/region"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <regions.json>",
	Short: "Check a region file for errors",
	Long: `Parses a region file and checks group membership. Entries that were
skipped while reading and regions with zero area are reported as warnings; the command fails only when the file cannot be used.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	imp, err := readRegions(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	store := region.NewStore()
	store.Restore(imp.State)
	if err := store.Validate(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	warnings := append([]string(nil), imp.Warnings...)
	for _, r := range imp.State.Regions {
		n := r.Coords.Normalized()
		if n.X1 == n.X2 || n.Y1 == n.Y2 {
			warnings = append(warnings, fmt.Sprintf("region %q has zero area", r.Name))
		}
	}
	for _, w := range warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	fmt.Fprintf(out, "%s: %d regions, %d groups, %d warnings\n",
		args[0], len(imp.State.Regions), len(imp.State.Groups), len(warnings))
	return nil
}
