package invoice_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	return sizedPNG(t, 4, 4)
}

func sizedPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, width, height))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestDocument_Total(t *testing.T) {
	doc := invoice.Default(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	assert.True(t, decimal.NewFromInt(2000000).Equal(doc.Total()))

	doc.Items[0].Quantity = 3
	assert.True(t, decimal.NewFromInt(3000000).Equal(doc.Total()), "total follows item edits")

	doc.Items = append(doc.Items, invoice.NewLineItem())
	assert.True(t, decimal.NewFromInt(3000000).Equal(doc.Total()), "blank row adds nothing")
}

func TestDefault(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	doc := invoice.Default(now)

	assert.Equal(t, "2026-10-15", doc.InvoiceDate)
	assert.Equal(t, "2026-11-14", doc.DueDate)
	assert.Equal(t, invoice.LocaleID, doc.Locale)
	assert.Len(t, doc.Items, 2)
	assert.NotEqual(t, doc.Items[0].ID, doc.Items[1].ID)
	assert.NoError(t, doc.Validate())
}

func TestDocument_Clone(t *testing.T) {
	doc := invoice.Default(time.Now())
	clone := doc.Clone()

	clone.Items[0].Description = "changed"
	clone.Items = append(clone.Items, invoice.NewLineItem())
	clone.CompanyName = "Other"

	assert.Equal(t, "Layanan Konsultasi", doc.Items[0].Description)
	assert.Len(t, doc.Items, 2)
	assert.Equal(t, "PT. Perusahaan Anda", doc.CompanyName)
}

func TestNewLineItem(t *testing.T) {
	a := invoice.NewLineItem()
	b := invoice.NewLineItem()

	assert.Equal(t, 1, a.Quantity)
	assert.True(t, a.Price.IsZero())
	assert.Empty(t, a.Description)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestDocument_Validate(t *testing.T) {
	type testCase struct {
		name      string
		mutate    func(d *invoice.Document)
		wantField string
	}

	tests := []testCase{
		{
			name:   "Valid",
			mutate: func(*invoice.Document) {},
		},
		{
			name:      "ZeroQuantity",
			mutate:    func(d *invoice.Document) { d.Items[1].Quantity = 0 },
			wantField: "items[1].quantity",
		},
		{
			name:      "NegativePrice",
			mutate:    func(d *invoice.Document) { d.Items[0].Price = decimal.NewFromInt(-1) },
			wantField: "items[0].price",
		},
		{
			name:      "NoItems",
			mutate:    func(d *invoice.Document) { d.Items = nil },
			wantField: "items",
		},
		{
			name:      "DuplicateItemIDs",
			mutate:    func(d *invoice.Document) { d.Items[1].ID = d.Items[0].ID },
			wantField: "items",
		},
		{
			name:      "BadColor",
			mutate:    func(d *invoice.Document) { d.PrimaryColor = "green" },
			wantField: "primaryColor",
		},
		{
			name:      "BadDate",
			mutate:    func(d *invoice.Document) { d.DueDate = "15/10/2026" },
			wantField: "dueDate",
		},
		{
			name:      "UnknownLocale",
			mutate:    func(d *invoice.Document) { d.Locale = "fr" },
			wantField: "locale",
		},
		{
			name:   "EmptyDatesAllowed",
			mutate: func(d *invoice.Document) { d.InvoiceDate, d.DueDate = "", "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := invoice.Default(time.Now())
			tt.mutate(doc)

			err := doc.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *invoice.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Violations, tt.wantField)
		})
	}
}

func TestValidateItem(t *testing.T) {
	item := invoice.NewLineItem()
	assert.NoError(t, invoice.ValidateItem(item))

	item.Quantity = 0
	item.Price = decimal.NewFromInt(-5)

	var verr *invoice.ValidationError
	err := invoice.ValidateItem(item)
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 2)
	assert.EqualError(t, err, "invalid line item: price: must not be negative; quantity: must be at least 1")
}

func TestEncodeImage(t *testing.T) {
	valid := pngBytes(t)

	type args struct {
		contentType string
		data        []byte
	}

	type testCase struct {
		name    string
		args    args
		wantErr error
	}

	tests := []testCase{
		{
			name: "PNG",
			args: args{contentType: "image/png", data: valid},
		},
		{
			name:    "DeclaredText",
			args:    args{contentType: "text/plain", data: valid},
			wantErr: invoice.ErrUnsupportedImage,
		},
		{
			name:    "TooLarge",
			args:    args{contentType: "image/png", data: make([]byte, invoice.MaxImageSize+1)},
			wantErr: invoice.ErrImageTooLarge,
		},
		{
			name:    "TooTall",
			args:    args{contentType: "image/png", data: sizedPNG(t, 4, invoice.MaxImageDimension+1)},
			wantErr: invoice.ErrImageDimensions,
		},
		{
			name: "AtDimensionLimit",
			args: args{contentType: "image/png", data: sizedPNG(t, 4, invoice.MaxImageDimension)},
		},
		{
			name:    "ContentNotImage",
			args:    args{contentType: "image/png", data: []byte("hello, world")},
			wantErr: invoice.ErrUnsupportedImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := invoice.EncodeImage(tt.args.contentType, tt.args.data)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Empty(t, uri)

				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

			img, raw, err := invoice.DecodeImage(uri)
			require.NoError(t, err)
			assert.Equal(t, tt.args.data, raw)
			assert.Equal(t, 4, img.Bounds().Dx())
		})
	}
}

func TestDecodeImage_Invalid(t *testing.T) {
	for _, uri := range []string{"", "https://example.com/logo.png", "data:image/png,raw", "data:image/png;base64,@@@"} {
		_, _, err := invoice.DecodeImage(uri)
		assert.Error(t, err, uri)
	}
}

func TestDecodeImage_RejectsOversized(t *testing.T) {
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(sizedPNG(t, invoice.MaxImageDimension+1, 2))

	_, _, err := invoice.DecodeImage(uri)
	assert.ErrorIs(t, err, invoice.ErrImageDimensions)
}

func TestApplyTheme(t *testing.T) {
	doc := invoice.Default(time.Now())

	theme, ok := invoice.FindTheme("classic-blue")
	require.True(t, ok)

	doc.ApplyTheme(theme)
	assert.Equal(t, "#3B82F6", doc.PrimaryColor)
	assert.Equal(t, "#1D4ED8", doc.AccentColor)

	_, ok = invoice.FindTheme("neon")
	assert.False(t, ok)
}
