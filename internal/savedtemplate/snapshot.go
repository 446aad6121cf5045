package savedtemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// SchemaVersion is the version written by EncodeSnapshot.
const SchemaVersion = 2

var (
	ErrStaleSnapshot     = errors.New("snapshot does not match any known schema")
	ErrUnsupportedSchema = errors.New("snapshot schema is newer than this build")
)

type envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Document      json.RawMessage `json:"document"`
}

// EncodeSnapshot serializes an independent copy of doc.
func EncodeSnapshot(doc *invoice.Document) ([]byte, error) {
	body, err := json.Marshal(doc.Clone())
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	out, err := json.Marshal(envelope{SchemaVersion: SchemaVersion, Document: body})
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	return out, nil
}

// DecodeSnapshot reads a stored snapshot, migrating older schemas, and
// validates the result. Snapshots that do not fit a known schema fail
// instead of being partially applied.
func DecodeSnapshot(raw []byte) (*invoice.Document, error) {
	var probe struct {
		SchemaVersion *int `json:"schemaVersion"`
	}

	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStaleSnapshot, err)
	}

	var (
		doc *invoice.Document
		err error
	)

	switch {
	case probe.SchemaVersion == nil:
		doc, err = decodeV1(raw)
	case *probe.SchemaVersion == SchemaVersion:
		doc, err = decodeV2(raw)
	case *probe.SchemaVersion > SchemaVersion:
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedSchema, *probe.SchemaVersion)
	default:
		return nil, fmt.Errorf("%w: version %d", ErrStaleSnapshot, *probe.SchemaVersion)
	}

	if err != nil {
		return nil, err
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStaleSnapshot, err)
	}

	return doc, nil
}

func strictUnmarshal(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrStaleSnapshot, err)
	}

	return nil
}

func decodeV2(raw []byte) (*invoice.Document, error) {
	var env envelope
	if err := strictUnmarshal(raw, &env); err != nil {
		return nil, err
	}

	var doc invoice.Document
	if err := strictUnmarshal(env.Document, &doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// v1 snapshots are the bare document blob saved before versioning: no
// locale, and items carried only description, quantity and a numeric price.
type v1Item struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type v1Document struct {
	CompanyName        string   `json:"companyName"`
	CompanyAddress     string   `json:"companyAddress"`
	CompanyPhone       string   `json:"companyPhone"`
	CompanyEmail       string   `json:"companyEmail"`
	CompanyLogo        string   `json:"companyLogo"`
	HeaderImage        string   `json:"headerImage"`
	ClientName         string   `json:"clientName"`
	ClientAddress      string   `json:"clientAddress"`
	ClientPhone        string   `json:"clientPhone"`
	ClientEmail        string   `json:"clientEmail"`
	InvoiceNumber      string   `json:"invoiceNumber"`
	InvoiceDate        string   `json:"invoiceDate"`
	DueDate            string   `json:"dueDate"`
	Items              []v1Item `json:"items"`
	Notes              string   `json:"notes"`
	Signature          string   `json:"signature"`
	BankName           string   `json:"bankName"`
	BankAccountNumber  string   `json:"bankAccountNumber"`
	BankAccountName    string   `json:"bankAccountName"`
	TermsAndConditions string   `json:"termsAndConditions"`
	PrimaryColor       string   `json:"primaryColor"`
	SecondaryColor     string   `json:"secondaryColor"`
	AccentColor        string   `json:"accentColor"`
}

func decodeV1(raw []byte) (*invoice.Document, error) {
	var old v1Document
	if err := strictUnmarshal(raw, &old); err != nil {
		return nil, err
	}

	if len(old.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrStaleSnapshot)
	}

	doc := &invoice.Document{
		CompanyName:        old.CompanyName,
		CompanyAddress:     old.CompanyAddress,
		CompanyPhone:       old.CompanyPhone,
		CompanyEmail:       old.CompanyEmail,
		CompanyLogo:        old.CompanyLogo,
		HeaderImage:        old.HeaderImage,
		ClientName:         old.ClientName,
		ClientAddress:      old.ClientAddress,
		ClientPhone:        old.ClientPhone,
		ClientEmail:        old.ClientEmail,
		InvoiceNumber:      old.InvoiceNumber,
		InvoiceDate:        old.InvoiceDate,
		DueDate:            old.DueDate,
		Items:              make([]invoice.LineItem, len(old.Items)),
		Notes:              old.Notes,
		Signature:          old.Signature,
		BankName:           old.BankName,
		BankAccountNumber:  old.BankAccountNumber,
		BankAccountName:    old.BankAccountName,
		TermsAndConditions: old.TermsAndConditions,
		PrimaryColor:       old.PrimaryColor,
		SecondaryColor:     old.SecondaryColor,
		AccentColor:        old.AccentColor,
		Locale:             invoice.LocaleID,
	}

	for i, item := range old.Items {
		doc.Items[i] = invoice.LineItem{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}

	return doc, nil
}
