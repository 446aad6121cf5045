package lineitems

// amountStyle determines how prices are written in a file.
type amountStyle int

const (
	// amountPlain uses '.' for decimals and ',' for grouping (e.g. "1,500,000.50").
	amountPlain amountStyle = iota
	// amountEuropean uses ',' for decimals and '.' for grouping (e.g. "1.500.000,50").
	amountEuropean
)

// Profile describes the column layout of a line item sheet.
type Profile struct {
	Name        string
	DescCol     string
	QuantityCol string
	PriceCol    string
	SubDescCol  string // optional
	DetailsCol  string // optional
	Amounts     amountStyle
}

func (p Profile) requiredCols() []string {
	return []string{p.DescCol, p.QuantityCol, p.PriceCol}
}

// profiles is tried in order against every row until a header matches.
// Column names are compared case-insensitively.
var profiles = []Profile{
	{
		Name:        "en",
		DescCol:     "description",
		QuantityCol: "quantity",
		PriceCol:    "price",
		SubDescCol:  "subtitle",
		DetailsCol:  "details",
		Amounts:     amountPlain,
	},
	{
		Name:        "id",
		DescCol:     "deskripsi",
		QuantityCol: "jumlah",
		PriceCol:    "harga",
		SubDescCol:  "keterangan",
		DetailsCol:  "rincian",
		Amounts:     amountEuropean,
	},
}
