package catalog

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

var exportHeader = []string{"Title", "Author", "Category", "ISBN", "Available", "Total", "Point Value", "Can Borrow"}

// Export writes items as CSV with a header row.
func Export(w io.Writer, items []core.BookSummary) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return err
	}

	for _, item := range items {
		row := []string{
			item.Title,
			item.AuthorName,
			item.CategoryName,
			item.ISBN,
			strconv.Itoa(item.AvailableCopies),
			strconv.Itoa(item.TotalCopies),
			item.PointValue.StringFixed(2),
			strconv.FormatBool(item.CanBorrow()),
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}
