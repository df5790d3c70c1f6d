package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"region-mapper/internal/viewport"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <regions.json>",
	Short: "Show the regions and groups of a region file",
	Long: `Prints the document a region file belongs to, then one line per region
with its normalized and pixel rectangle, color and group.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	imp, err := readRegions(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	meta := imp.Meta

	fmt.Fprintf(out, "Document: %s\n", meta.DocumentPath)
	if meta.Page > 0 {
		fmt.Fprintf(out, "Page:     %d\n", meta.Page)
	}
	fmt.Fprintf(out, "Size:     %dx%d\n", meta.Width, meta.Height)
	fmt.Fprintf(out, "Regions:  %d\n", len(imp.State.Regions))
	fmt.Fprintf(out, "Groups:   %d\n", len(imp.State.Groups))

	if len(imp.State.Regions) > 0 {
		fmt.Fprintln(out)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tCOLOR\tGROUP\tNORMALIZED\tPIXELS")
		for _, r := range imp.State.Regions {
			n := r.Coords
			px := viewport.ImageRect(n, meta.Width, meta.Height)
			group := r.Group
			if group == "" {
				group = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f,%.4f,%.4f,%.4f\t%d,%d %dx%d\n",
				r.Name, r.Color, group, n.X1, n.Y1, n.X2, n.Y2, px.X, px.Y, px.Width, px.Height)
		}
		tw.Flush()
	}

	if len(imp.State.Groups) > 0 {
		fmt.Fprintln(out)
		groups := make([]string, 0, len(imp.State.Groups))
		for g := range imp.State.Groups {
			groups = append(groups, g)
		}
		sort.Strings(groups)
		for _, g := range groups {
			fmt.Fprintf(out, "%s: %v\n", g, imp.State.Groups[g])
		}
	}

	for _, w := range imp.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	return nil
}
