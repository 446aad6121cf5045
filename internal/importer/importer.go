package importer

import (
	"io"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// Importer turns a spreadsheet export into fresh line items.
type Importer interface {
	Parse(r io.Reader) ([]invoice.LineItem, error)
}
