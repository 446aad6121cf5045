package importer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/invoicer/internal/importer/lineitems"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// MaxItems caps how many rows a single import may add.
const MaxItems = 500

var ErrTooManyItems = fmt.Errorf("import exceeds %d line items", MaxItems)

type Service struct {
	parser Importer
}

func NewService() *Service {
	return &Service{
		parser: lineitems.NewParser(),
	}
}

func (s *Service) Import(r io.Reader) ([]invoice.LineItem, error) {
	items, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, errors.New("file contains no line items")
	}

	if len(items) > MaxItems {
		return nil, ErrTooManyItems
	}

	slog.Info("imported line items", "count", len(items))

	return items, nil
}
