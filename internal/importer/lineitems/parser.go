package lineitems

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	enc "github.com/MrJamesThe3rd/invoicer/internal/encoding"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// Parser reads line item sheets exported from a spreadsheet. It detects the
// separator (';' or ',') and the header language by matching column names
// against known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

var separators = []rune{';', ','}

func (p *Parser) Parse(r io.Reader) ([]invoice.LineItem, error) {
	utf8r, charset, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	slog.Debug("decoding line item sheet", "charset", charset)

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var errs []error

	for _, sep := range separators {
		rows, err := readRows(data, sep)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		return parseRows(profile, cols, rows[headerIdx+1:], headerIdx)
	}

	if len(errs) == len(separators) {
		return nil, fmt.Errorf("read csv: %w", errors.Join(errs...))
	}

	return nil, errors.New("no matching header found: expected Description;Quantity;Price or Deskripsi;Jumlah;Harga")
}

func readRows(data []byte, sep rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) lookup(name string) int {
	if name == "" {
		return -1
	}

	if i, ok := c[name]; ok {
		return i
	}

	return -1
}

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows builds line items from the data rows under the header.
// headerRowNum is the 0-based index of the header record, used for the
// 1-based row numbers in error messages.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]invoice.LineItem, error) {
	descIdx := cols.lookup(p.DescCol)
	qtyIdx := cols.lookup(p.QuantityCol)
	priceIdx := cols.lookup(p.PriceCol)
	subIdx := cols.lookup(p.SubDescCol)
	detailsIdx := cols.lookup(p.DetailsCol)

	var items []invoice.LineItem

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		desc := cellValue(row, descIdx)
		qty := cellValue(row, qtyIdx)
		price := cellValue(row, priceIdx)

		if desc == "" && qty == "" && price == "" {
			continue
		}

		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		item := invoice.NewLineItem()
		item.Description = desc
		item.SubDescription = cellValue(row, subIdx)
		item.Details = cellValue(row, detailsIdx)

		if qty != "" {
			n, err := strconv.Atoi(qty)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid quantity %q", rowNum, qty)
			}

			item.Quantity = n
		}

		if price == "" {
			return nil, fmt.Errorf("row %d: missing price", rowNum)
		}

		amount, err := parseAmount(price, p.Amounts)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q", rowNum, price)
		}

		item.Price = amount

		if err := invoice.ValidateItem(item); err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		items = append(items, item)
	}

	return items, nil
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
