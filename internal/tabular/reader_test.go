package tabular

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faxhealth/carebook/pkg/errors"
	"github.com/faxhealth/carebook/pkg/normalize"
)

func TestParseNormalizesRows(t *testing.T) {
	input := strings.Join([]string{
		"id,name,address,latitude,longitude,international_phone_number,fax_numbers,code",
		`ChIJ1,"  Clinique   Soleil ","123 Main St, H3Z 2Y7",45.5017,-73.5673,514-123-4567,514-999-8888,100`,
	}, "\n")

	rows, stats, err := parse(strings.NewReader(input), LoadOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, stats.TotalRows)

	row := rows[0]
	assert.Equal(t, "ChIJ1", row.ID)
	assert.Equal(t, "Clinique Soleil", row.Name)
	assert.Equal(t, "+15141234567", row.Phone)
	assert.Equal(t, "15149998888", row.FaxNumbers)
	assert.Equal(t, "100", row.BillingCode) // renamed from "code"
	assert.Equal(t, "123 MAIN ST", row.AddressKey)
	require.NotNil(t, row.Latitude)
	assert.InDelta(t, 45.5017, *row.Latitude, 1e-9)
	assert.Equal(t, 1, row.FaxEnabled) // derived from fax presence
}

func TestParseDropsRowsWithoutCoordinates(t *testing.T) {
	input := strings.Join([]string{
		"id,address,latitude,longitude",
		"ChIJ1,1 Main St,45.5,-73.5",
		"ChIJ2,2 Main St,,",
		"ChIJ3,3 Main St,46.8,",
	}, "\n")

	rows, stats, err := parse(strings.NewReader(input), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRows)
	assert.Equal(t, 1, stats.DroppedNoGeo)
	require.Len(t, rows, 2)
	assert.Equal(t, "ChIJ1", rows[0].ID)
	assert.Equal(t, "ChIJ3", rows[1].ID)
	assert.Nil(t, rows[1].Longitude)
}

func TestParseMissingRequiredColumn(t *testing.T) {
	input := "id,name,latitude,longitude\nChIJ1,Clinique,45.5,-73.5"

	_, _, err := parse(strings.NewReader(input), LoadOptions{})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "address")
}

func TestParseFaxEnabledColumnWins(t *testing.T) {
	input := strings.Join([]string{
		"id,address,latitude,longitude,fax_numbers,is_fax_enabled",
		"ChIJ1,1 Main St,45.5,-73.5,514-123-4567,0",
	}, "\n")

	rows, _, err := parse(strings.NewReader(input), LoadOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].FaxEnabled)
}

func TestParseCustomMapping(t *testing.T) {
	input := strings.Join([]string{
		"place_id,street,latitude,longitude",
		"ChIJ1,9 Cedar Ln,45.5,-73.5",
	}, "\n")

	mapping := map[string]string{
		"place_id": "id",
		"street":   "address",
	}

	rows, _, err := parse(strings.NewReader(input), LoadOptions{Mapping: mapping})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ChIJ1", rows[0].ID)
	assert.Equal(t, "9 Cedar Ln", rows[0].Address)
}

func TestParseAccentFoldingKeyer(t *testing.T) {
	input := strings.Join([]string{
		"id,address,latitude,longitude",
		"ChIJ1,1 Rue Québec,45.5,-73.5",
	}, "\n")

	keyer := normalize.NewKeyer(normalize.WithAccentFolding())
	rows, _, err := parse(strings.NewReader(input), LoadOptions{Keyer: keyer})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1 RUE QUEBEC", rows[0].AddressKey)
}

func TestParseRaggedRows(t *testing.T) {
	input := strings.Join([]string{
		"id,address,latitude,longitude,name",
		"ChIJ1,1 Main St,45.5,-73.5",
	}, "\n")

	rows, _, err := parse(strings.NewReader(input), LoadOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.csv"), LoadOptions{})
	require.Error(t, err)

	var ioErr *errors.IOError
	assert.True(t, stderrors.As(err, &ioErr))
}

func TestLoadMapping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns:\n  place_id: id\n  street: address\n"), 0o644))

	mapping, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"place_id": "id", "street": "address"}, mapping)
}

func TestLoadMappingEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns: {}\n"), 0o644))

	_, err := LoadMapping(path)
	assert.Error(t, err)
}
