package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"region-mapper/internal/region"
)

// CSVHeader is the first row of a CSV export.
var CSVHeader = []string{"Region Name", "Group", "Color", "X1 (%)", "Y1 (%)", "X2 (%)", "Y2 (%)", "Region Type"}

// WriteCSV writes one row per region, sorted by name. Coordinates are the
// stored normalized values with six decimals.
func WriteCSV(w io.Writer, st region.State) error {
	regions := append([]region.Region(nil), st.Regions...)
	sort.Slice(regions, func(i, j int) bool { return regions[i].Name < regions[j].Name })

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range regions {
		row := []string{r.Name, r.Group, string(r.Color)}
		for _, v := range r.Coords.Slice() {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		row = append(row, r.Kind.String())
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %q: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes a CSV export to path atomically.
func WriteCSVFile(path string, st region.State) error {
	return writeAtomic(path, func(w io.Writer) error { return WriteCSV(w, st) })
}
