// Package i18n holds the label tables of the two preview locales and the
// currency and date formatting used on rendered invoices.
package i18n

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	ID      = "id"
	EN      = "en"
	Default = ID
)

// Supported lists the preview locales in menu order.
var Supported = []string{ID, EN}

var tables = map[string]map[string]string{
	ID: {
		"invoice":       "INVOICE",
		"billTo":        "Tagih Kepada",
		"invoiceNo":     "No. Invoice:",
		"date":          "Tanggal:",
		"dueDate":       "Jatuh Tempo:",
		"description":   "Deskripsi",
		"quantity":      "Jumlah",
		"price":         "Harga",
		"total":         "Total",
		"subtotal":      "Subtotal",
		"grandTotal":    "TOTAL",
		"notes":         "Catatan",
		"signature":     "Tanda Tangan",
		"payment":       "Informasi Pembayaran",
		"bankName":      "Bank:",
		"accountNumber": "No. Rekening:",
		"accountName":   "Atas Nama:",
		"terms":         "Syarat & Ketentuan",
		"thankYou":      "Terima kasih atas kepercayaan Anda",
	},
	EN: {
		"invoice":       "INVOICE",
		"billTo":        "Bill To",
		"invoiceNo":     "Invoice No:",
		"date":          "Date:",
		"dueDate":       "Due Date:",
		"description":   "Description",
		"quantity":      "Qty",
		"price":         "Price",
		"total":         "Total",
		"subtotal":      "Subtotal",
		"grandTotal":    "TOTAL",
		"notes":         "Notes",
		"signature":     "Signature",
		"payment":       "Payment Information",
		"bankName":      "Bank:",
		"accountNumber": "Account No:",
		"accountName":   "Account Name:",
		"terms":         "Terms & Conditions",
		"thankYou":      "Thank you for your business",
	},
}

var months = map[string][12]string{
	ID: {"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"},
	EN: {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
}

// Normalize maps unknown or empty languages to the default.
func Normalize(lang string) string {
	if _, ok := tables[lang]; ok {
		return lang
	}

	return Default
}

// T returns the label for key, falling back to the default language and
// then to the key itself.
func T(lang, key string) string {
	if v, ok := tables[Normalize(lang)][key]; ok {
		return v
	}

	if v, ok := tables[Default][key]; ok {
		return v
	}

	return key
}

var rupiah = message.NewPrinter(language.Indonesian)

// FormatCurrency renders an amount as Indonesian Rupiah. The currency and
// its grouping are fixed; they do not follow the document language.
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	return sign + "Rp " + rupiah.Sprint(number.Decimal(amount.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}

// FormatDate renders an ISO date in the long form of the language, for
// example "15 Oktober 2026". Empty input gives "-" and unparseable input is
// returned unchanged.
func FormatDate(lang, iso string) string {
	if iso == "" {
		return "-"
	}

	t, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}

	return longDate(lang, t)
}

// FormatDateTime renders a timestamp such as a template creation time.
func FormatDateTime(lang string, t time.Time) string {
	return fmt.Sprintf("%s %02d:%02d", longDate(lang, t), t.Hour(), t.Minute())
}

func longDate(lang string, t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), months[Normalize(lang)][t.Month()-1], t.Year())
}
