package importer_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/importer"
)

func TestService_Import(t *testing.T) {
	svc := importer.NewService()

	items, err := svc.Import(strings.NewReader("Description;Quantity;Price\nHosting;1;100\n"))
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.Import(strings.NewReader("Description;Quantity;Price\n"))
	assert.Error(t, err)

	var b strings.Builder

	b.WriteString("Description;Quantity;Price\n")

	for i := range importer.MaxItems + 1 {
		fmt.Fprintf(&b, "Row %d;1;100\n", i)
	}

	_, err = svc.Import(strings.NewReader(b.String()))
	assert.ErrorIs(t, err, importer.ErrTooManyItems)
}
