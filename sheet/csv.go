package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes rows with a header line. A zero delimiter means comma.
func WriteCSV(w io.Writer, rows []Row, delimiter rune) error {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(r.Strings()); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
