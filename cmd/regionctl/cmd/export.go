package cmd

import (
	"fmt"
	"log"

	"region-mapper/internal/export"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <regions.json>",
	Short: "Convert a region file to another format",
	Long: `Writes the regions of a file as json, csv or mask. The mask format writes
the JSON file together with a PNG mask beside it. An unknown format falls
back to json with a warning. Without -f the format follows the extension of
-o, or csv when no output is given. Without -o the output is written next to
the input with the format's extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(export.FormatCSV), "output format (json, csv, mask)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file")
}

func runExport(cmd *cobra.Command, args []string) error {
	f, err := export.ResolveFormat(exportFormat)
	if err != nil {
		log.Printf("Export: %v, using %s", err, f)
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v, using %s\n", err, f)
	} else if !cmd.Flags().Changed("format") && exportOutput != "" {
		f = export.FormatForPath(exportOutput)
	}
	imp, err := readRegions(args[0])
	if err != nil {
		return err
	}

	out := exportOutput
	if out == "" {
		out = replaceExt(args[0], f.Extension())
		if f == export.FormatJSON || f == export.FormatMask {
			out = replaceExt(args[0], ".export"+f.Extension())
		}
	}

	written, err := export.Write(out, f, imp.Meta, imp.State)
	if err != nil {
		return fmt.Errorf("error exporting: %w", err)
	}
	for _, path := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}
	return nil
}
