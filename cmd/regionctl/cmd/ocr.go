package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"region-mapper/internal/document"
	"region-mapper/internal/ocr"

	"github.com/spf13/cobra"
)

// OCROptions selects the recognizer configuration.
type OCROptions struct {
	Language  string
	Whitelist string
	PSM       int
}

// RecognizerFactory creates a recognizer and a function releasing it.
type RecognizerFactory func(opts OCROptions) (ocr.Recognizer, func(), error)

// ErrNoRecognizer is returned when no OCR engine was linked in.
var ErrNoRecognizer = errors.New("no OCR engine available")

var newRecognizer RecognizerFactory

// SetRecognizerFactory installs the OCR engine used by the ocr command.
func SetRecognizerFactory(f RecognizerFactory) {
	newRecognizer = f
}

var (
	ocrDocument  string
	ocrPage      int
	ocrLanguage  string
	ocrWhitelist string
	ocrPSM       int
	ocrJSON      bool
	ocrNoMask    bool
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <regions.json>",
	Short: "Read the text in every region",
	Long: `Rasterizes the document a region file belongs to and runs OCR on each
region. Everything outside the regions is blanked first. The document
recorded in the file is used unless --document is given. Failures of single regions are reported and do not stop the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	rootCmd.AddCommand(ocrCmd)
	ocrCmd.Flags().StringVar(&ocrDocument, "document", "", "document to read (default: the one recorded in the file)")
	ocrCmd.Flags().IntVar(&ocrPage, "page", 0, "page number (default: the one recorded in the file)")
	ocrCmd.Flags().StringVar(&ocrLanguage, "lang", "eng", "tesseract language")
	ocrCmd.Flags().StringVar(&ocrWhitelist, "whitelist", "", "characters to recognize")
	ocrCmd.Flags().IntVar(&ocrPSM, "psm", 6, "tesseract page segmentation mode")
	ocrCmd.Flags().BoolVar(&ocrJSON, "json", false, "print results as JSON")
	ocrCmd.Flags().BoolVar(&ocrNoMask, "no-mask", false, "read regions without blanking the rest of the page")
}

// ocrResult is the JSON form of one region's text.
type ocrResult struct {
	Name       string  `json:"name"`
	Group      string  `json:"group,omitempty"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

func runOCR(cmd *cobra.Command, args []string) error {
	if newRecognizer == nil {
		return ErrNoRecognizer
	}
	imp, err := readRegions(args[0])
	if err != nil {
		return err
	}

	docPath := imp.Meta.DocumentPath
	if ocrDocument != "" {
		docPath = ocrDocument
	}
	if docPath == "" {
		return fmt.Errorf("region file names no document; use --document")
	}
	pageNum := imp.Meta.Page
	if ocrPage > 0 {
		pageNum = ocrPage
	}
	if pageNum < 1 {
		pageNum = 1
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	doc, err := document.Open(ctx, docPath, pageNum)
	if err != nil {
		return err
	}
	if imp.Meta.Width > 0 && (doc.Width() != imp.Meta.Width || doc.Height() != imp.Meta.Height) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: regions were drawn on a %dx%d page, document is %dx%d\n",
			imp.Meta.Width, imp.Meta.Height, doc.Width(), doc.Height())
	}

	rec, release, err := newRecognizer(OCROptions{Language: ocrLanguage, Whitelist: ocrWhitelist, PSM: ocrPSM})
	if err != nil {
		return fmt.Errorf("error starting OCR: %w", err)
	}
	defer release()

	page := doc.Image
	if !ocrNoMask {
		page = ocr.Masked(page, imp.State)
	}
	results, err := ocr.ExtractRegions(ctx, rec, page, imp.State)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if printErr := printOCR(cmd, results); printErr != nil {
		return printErr
	}
	return err
}

func printOCR(cmd *cobra.Command, results []ocr.RegionText) error {
	out := cmd.OutOrStdout()
	if ocrJSON {
		rows := make([]ocrResult, len(results))
		for i, r := range results {
			rows[i] = ocrResult{Name: r.Name, Group: r.Group, Text: r.Text, Confidence: r.Confidence}
			if r.Err != nil {
				rows[i].Error = r.Err.Error()
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCONF\tTEXT")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t-\terror: %v\n", r.Name, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%.0f\t%q\n", r.Name, r.Confidence, r.Text)
	}
	return tw.Flush()
}
