package invoice

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Locale selects the label language of the rendered preview.
type Locale string

const (
	LocaleID Locale = "id"
	LocaleEN Locale = "en"
)

// LineItem is a single billable row of an invoice.
type LineItem struct {
	ID             string          `json:"id" validate:"required"`
	Description    string          `json:"description"`
	SubDescription string          `json:"subDescription,omitempty"`
	Details        string          `json:"details,omitempty"`
	Quantity       int             `json:"quantity" validate:"gte=1"`
	Price          decimal.Decimal `json:"price" validate:"gte=0"`
}

// Total is quantity times unit price.
func (i LineItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Document is the complete editable invoice. Images are stored inline as
// data URIs so a document is self-contained.
type Document struct {
	CompanyName    string `json:"companyName"`
	CompanyAddress string `json:"companyAddress"`
	CompanyPhone   string `json:"companyPhone"`
	CompanyEmail   string `json:"companyEmail"`
	CompanyLogo    string `json:"companyLogo,omitempty" validate:"omitempty,datauri"`
	HeaderImage    string `json:"headerImage,omitempty" validate:"omitempty,datauri"`

	ClientName    string `json:"clientName"`
	ClientAddress string `json:"clientAddress"`
	ClientPhone   string `json:"clientPhone"`
	ClientEmail   string `json:"clientEmail"`

	InvoiceNumber string `json:"invoiceNumber"`
	InvoiceDate   string `json:"invoiceDate" validate:"omitempty,datetime=2006-01-02"`
	DueDate       string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`

	Items []LineItem `json:"items" validate:"required,min=1,unique=ID,dive"`

	Notes     string `json:"notes"`
	Signature string `json:"signature,omitempty" validate:"omitempty,datauri"`

	BankName          string `json:"bankName,omitempty"`
	BankAccountNumber string `json:"bankAccountNumber,omitempty"`
	BankAccountName   string `json:"bankAccountName,omitempty"`

	TermsAndConditions string `json:"termsAndConditions,omitempty"`

	PrimaryColor   string `json:"primaryColor" validate:"required,hexcolor"`
	SecondaryColor string `json:"secondaryColor" validate:"required,hexcolor"`
	AccentColor    string `json:"accentColor" validate:"required,hexcolor"`

	Locale Locale `json:"locale" validate:"oneof=id en"`
}

// Total is recomputed from the items on every call; no total is ever stored.
func (d *Document) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Total())
	}

	return total
}

// Clone returns a deep copy that shares no mutable state with d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}

	c := *d
	c.Items = slices.Clone(d.Items)

	return &c
}

// HasBankDetails reports whether any payment field is filled in.
func (d *Document) HasBankDetails() bool {
	return d.BankName != "" || d.BankAccountNumber != "" || d.BankAccountName != ""
}

// NewLineItem returns a blank row with a fresh identifier.
func NewLineItem() LineItem {
	return LineItem{
		ID:       uuid.NewString(),
		Quantity: 1,
		Price:    decimal.Zero,
	}
}

const dueDays = 30

// Default returns the starter document shown when a session begins.
func Default(now time.Time) *Document {
	theme := Themes[0]

	return &Document{
		CompanyName:    "PT. Perusahaan Anda",
		CompanyAddress: "Jl. Contoh No. 123, Jakarta",
		CompanyPhone:   "+62 812 3456 7890",
		CompanyEmail:   "info@perusahaan.com",
		ClientName:     "Nama Klien",
		ClientAddress:  "Alamat Klien",
		ClientPhone:    "+62 821 9876 5432",
		ClientEmail:    "klien@email.com",
		InvoiceNumber:  "INV-001",
		InvoiceDate:    now.Format(time.DateOnly),
		DueDate:        now.AddDate(0, 0, dueDays).Format(time.DateOnly),
		Items: []LineItem{
			{
				ID:          uuid.NewString(),
				Description: "Layanan Konsultasi",
				Quantity:    1,
				Price:       decimal.NewFromInt(500000),
			},
			{
				ID:          uuid.NewString(),
				Description: "Desain Logo",
				Quantity:    1,
				Price:       decimal.NewFromInt(1500000),
			},
		},
		Notes:          "Terima kasih atas kepercayaan Anda.",
		PrimaryColor:   theme.Primary,
		SecondaryColor: theme.Secondary,
		AccentColor:    theme.Accent,
		Locale:         LocaleID,
	}
}
