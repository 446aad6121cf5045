// Package editor owns the live document of an editing session. Every change
// is applied to a copy and validated before it replaces the live document,
// so a rejected change leaves the session untouched.
package editor

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

var (
	ErrLastItem     = errors.New("an invoice needs at least one line item")
	ErrItemNotFound = errors.New("line item not found")
	ErrUnknownField = errors.New("unknown field")
)

// Field names a plain text field of the document, using its JSON name.
type Field string

const (
	FieldCompanyName        Field = "companyName"
	FieldCompanyAddress     Field = "companyAddress"
	FieldCompanyPhone       Field = "companyPhone"
	FieldCompanyEmail       Field = "companyEmail"
	FieldClientName         Field = "clientName"
	FieldClientAddress      Field = "clientAddress"
	FieldClientPhone        Field = "clientPhone"
	FieldClientEmail        Field = "clientEmail"
	FieldInvoiceNumber      Field = "invoiceNumber"
	FieldInvoiceDate        Field = "invoiceDate"
	FieldDueDate            Field = "dueDate"
	FieldNotes              Field = "notes"
	FieldBankName           Field = "bankName"
	FieldBankAccountNumber  Field = "bankAccountNumber"
	FieldBankAccountName    Field = "bankAccountName"
	FieldTermsAndConditions Field = "termsAndConditions"
)

func fieldRef(d *invoice.Document, f Field) *string {
	switch f {
	case FieldCompanyName:
		return &d.CompanyName
	case FieldCompanyAddress:
		return &d.CompanyAddress
	case FieldCompanyPhone:
		return &d.CompanyPhone
	case FieldCompanyEmail:
		return &d.CompanyEmail
	case FieldClientName:
		return &d.ClientName
	case FieldClientAddress:
		return &d.ClientAddress
	case FieldClientPhone:
		return &d.ClientPhone
	case FieldClientEmail:
		return &d.ClientEmail
	case FieldInvoiceNumber:
		return &d.InvoiceNumber
	case FieldInvoiceDate:
		return &d.InvoiceDate
	case FieldDueDate:
		return &d.DueDate
	case FieldNotes:
		return &d.Notes
	case FieldBankName:
		return &d.BankName
	case FieldBankAccountNumber:
		return &d.BankAccountNumber
	case FieldBankAccountName:
		return &d.BankAccountName
	case FieldTermsAndConditions:
		return &d.TermsAndConditions
	}

	return nil
}

// Session holds the single live document. It is safe for concurrent use.
type Session struct {
	mu  sync.RWMutex
	doc *invoice.Document

	guard Guard
}

// NewSession starts a session on a copy of doc.
func NewSession(doc *invoice.Document) *Session {
	return &Session{doc: doc.Clone()}
}

// Document returns a copy of the live document.
func (s *Session) Document() *invoice.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.doc.Clone()
}

func (s *Session) mutate(fn func(d *invoice.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := fn(next); err != nil {
		return err
	}

	if err := next.Validate(); err != nil {
		return err
	}

	s.doc = next

	return nil
}

// Field returns the current value of a text field.
func (s *Session) Field(f Field) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref := fieldRef(s.doc, f)
	if ref == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, f)
	}

	return *ref, nil
}

func (s *Session) SetField(f Field, value string) error {
	return s.mutate(func(d *invoice.Document) error {
		ref := fieldRef(d, f)
		if ref == nil {
			return fmt.Errorf("%w: %q", ErrUnknownField, f)
		}

		*ref = value

		return nil
	})
}

// SetColors replaces the three theme colors.
func (s *Session) SetColors(primary, secondary, accent string) error {
	return s.mutate(func(d *invoice.Document) error {
		d.PrimaryColor = primary
		d.SecondaryColor = secondary
		d.AccentColor = accent

		return nil
	})
}

func (s *Session) ApplyTheme(t invoice.Theme) error {
	return s.mutate(func(d *invoice.Document) error {
		d.ApplyTheme(t)
		return nil
	})
}

func (s *Session) SetLocale(l invoice.Locale) error {
	return s.mutate(func(d *invoice.Document) error {
		d.Locale = l
		return nil
	})
}

// AddItem appends a blank row and returns it.
func (s *Session) AddItem() (invoice.LineItem, error) {
	item := invoice.NewLineItem()

	err := s.mutate(func(d *invoice.Document) error {
		d.Items = append(d.Items, item)
		return nil
	})
	if err != nil {
		return invoice.LineItem{}, err
	}

	return item, nil
}

// RemoveItem deletes the row with id. The last remaining row cannot be
// removed.
func (s *Session) RemoveItem(id string) error {
	return s.mutate(func(d *invoice.Document) error {
		i := itemIndex(d, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}

		if len(d.Items) == 1 {
			return ErrLastItem
		}

		d.Items = slices.Delete(d.Items, i, i+1)

		return nil
	})
}

// UpdateItem replaces the row whose ID matches item.ID.
func (s *Session) UpdateItem(item invoice.LineItem) error {
	if err := invoice.ValidateItem(item); err != nil {
		return err
	}

	return s.mutate(func(d *invoice.Document) error {
		i := itemIndex(d, item.ID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
		}

		d.Items[i] = item

		return nil
	})
}

// AppendItems adds imported rows after the existing ones.
func (s *Session) AppendItems(items []invoice.LineItem) error {
	return s.mutate(func(d *invoice.Document) error {
		d.Items = append(d.Items, items...)
		return nil
	})
}

// SetImage encodes an uploaded file into the slot. A rejected upload leaves
// the slot unchanged.
func (s *Session) SetImage(slot invoice.ImageSlot, contentType string, data []byte) error {
	uri, err := invoice.EncodeImage(contentType, data)
	if err != nil {
		return err
	}

	return s.mutate(func(d *invoice.Document) error {
		return d.SetImage(slot, uri)
	})
}

func (s *Session) ClearImage(slot invoice.ImageSlot) error {
	return s.mutate(func(d *invoice.Document) error {
		return d.SetImage(slot, "")
	})
}

// Replace overwrites the whole live document, as when a template is loaded.
func (s *Session) Replace(doc *invoice.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc.Clone()
	s.mu.Unlock()

	return nil
}

// Run executes fn unless the same action is already in flight.
func (s *Session) Run(action Action, fn func() error) error {
	return s.guard.Run(action, fn)
}

// Guard exposes the session's in-flight tracker.
func (s *Session) Guard() *Guard {
	return &s.guard
}

func itemIndex(d *invoice.Document, id string) int {
	return slices.IndexFunc(d.Items, func(it invoice.LineItem) bool { return it.ID == id })
}
