package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yourorg/estate-api/listing"
)

func TestWriteXLSX(t *testing.T) {
	props := []listing.Property{
		{ID: 3, Title: "Azure Heights", Type: listing.TypePenthouse, Price: 9800000, Bedrooms: 4, Bathrooms: 3, Area: 280, Location: "Bole", Featured: true},
		{ID: 1, Title: "Modern Villa", Type: listing.TypeVilla, Price: 4500000, Bedrooms: 4, Bathrooms: 3, Area: 320, Location: "CMC"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, props))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Title", rows[0][1])
	assert.Equal(t, "Azure Heights", rows[1][1])
	assert.Equal(t, "ETB 9,800,000", rows[1][4])
	assert.Equal(t, "1", rows[2][0])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
