// Package main provides the entry point for the regionctl tool.
package main

import (
	"region-mapper/cmd/regionctl/cmd"
	"region-mapper/internal/ocr"
	"region-mapper/internal/ocr/tesseract"
)

func main() {
	cmd.SetRecognizerFactory(func(opts cmd.OCROptions) (ocr.Recognizer, func(), error) {
		params := tesseract.DefaultParams()
		params.Language = opts.Language
		params.Whitelist = opts.Whitelist
		params.PSM = opts.PSM
		engine, err := tesseract.NewEngine(params)
		if err != nil {
			return nil, nil, err
		}
		return engine, func() { engine.Close() }, nil
	})
	cmd.Execute()
}
