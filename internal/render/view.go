package render

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/i18n"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// Party is the display form of the issuer or the client.
type Party struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// Contact joins phone and email on one line.
func (p Party) Contact() string {
	switch {
	case p.Phone != "" && p.Email != "":
		return p.Phone + " · " + p.Email
	case p.Phone != "":
		return p.Phone
	}

	return p.Email
}

type Row struct {
	Description    string
	SubDescription string
	Details        []string
	Quantity       int
	Price          string
	Total          string
	Striped        bool
}

type Bank struct {
	Name          string
	AccountNumber string
	AccountName   string
}

type Palette struct {
	Primary   string
	Secondary string
	Accent    string
}

// View is the display projection of a document. It is derived purely from
// the document, so equal documents give equal views.
type View struct {
	Lang        string
	Palette     Palette
	HeaderImage string
	Logo        string
	Company     Party
	Client      Party
	Number      string
	IssueDate   string
	DueDate     string
	Rows        []Row
	Subtotal    string
	Total       string
	Amount      decimal.Decimal
	Bank        *Bank
	Notes       string
	Terms       string
	Signature   string
	Footer      string
}

// CustomHeader reports whether the uploaded header image replaces the
// generated gradient header.
func (v View) CustomHeader() bool {
	return v.HeaderImage != ""
}

// L returns the label for key in the view language.
func (v View) L(key string) string {
	return i18n.T(v.Lang, key)
}

// Project builds the view of doc.
func Project(doc *invoice.Document) View {
	lang := i18n.Normalize(string(doc.Locale))
	total := doc.Total()

	v := View{
		Lang: lang,
		Palette: Palette{
			Primary:   doc.PrimaryColor,
			Secondary: doc.SecondaryColor,
			Accent:    doc.AccentColor,
		},
		HeaderImage: doc.HeaderImage,
		Logo:        doc.CompanyLogo,
		Company: Party{
			Name:    doc.CompanyName,
			Address: doc.CompanyAddress,
			Phone:   doc.CompanyPhone,
			Email:   doc.CompanyEmail,
		},
		Client: Party{
			Name:    doc.ClientName,
			Address: doc.ClientAddress,
			Phone:   doc.ClientPhone,
			Email:   doc.ClientEmail,
		},
		Number:    doc.InvoiceNumber,
		IssueDate: i18n.FormatDate(lang, doc.InvoiceDate),
		DueDate:   i18n.FormatDate(lang, doc.DueDate),
		Rows:      make([]Row, len(doc.Items)),
		Subtotal:  i18n.FormatCurrency(total),
		Total:     i18n.FormatCurrency(total),
		Amount:    total,
		Notes:     strings.TrimSpace(doc.Notes),
		Terms:     strings.TrimSpace(doc.TermsAndConditions),
		Signature: doc.Signature,
		Footer:    i18n.T(lang, "thankYou") + " • " + doc.CompanyName,
	}

	for i, item := range doc.Items {
		v.Rows[i] = Row{
			Description:    item.Description,
			SubDescription: item.SubDescription,
			Details:        lines(item.Details),
			Quantity:       item.Quantity,
			Price:          i18n.FormatCurrency(item.Price),
			Total:          i18n.FormatCurrency(item.Total()),
			Striped:        i%2 == 1,
		}
	}

	if doc.HasBankDetails() {
		v.Bank = &Bank{
			Name:          doc.BankName,
			AccountNumber: doc.BankAccountNumber,
			AccountName:   doc.BankAccountName,
		}
	}

	return v
}

func lines(s string) []string {
	var out []string

	for l := range strings.SplitSeq(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}

	return out
}
