package establishments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordValuesMatchTargetColumns(t *testing.T) {
	lat, lon := 45.5017, -73.5673
	record := Record{
		ID:         "ChIJabc123",
		Name:       "CLSC des Faubourgs",
		Address:    "1705 Rue de la Visitation",
		Latitude:   &lat,
		Longitude:  &lon,
		AddedTime:  1700000000,
		FaxEnabled: 1,
	}

	values := record.Values()
	require.Len(t, values, len(TargetColumns))

	byColumn := make(map[string]string, len(values))
	for i, column := range TargetColumns {
		byColumn[column] = values[i]
	}

	assert.Equal(t, "ChIJabc123", byColumn["id"])
	assert.Equal(t, "", byColumn["admin_user_id"])
	assert.Equal(t, "45.5017", byColumn["latitude"])
	assert.Equal(t, "-73.5673", byColumn["longitude"])
	assert.Equal(t, "1700000000", byColumn["added_time"])
	assert.Equal(t, "1", byColumn["is_fax_enabled"])
}

func TestRecordValuesAbsentCoordinates(t *testing.T) {
	values := Record{ID: "x"}.Values()
	byColumn := make(map[string]string, len(values))
	for i, column := range TargetColumns {
		byColumn[column] = values[i]
	}

	assert.Equal(t, "", byColumn["latitude"])
	assert.Equal(t, "", byColumn["longitude"])
}

func TestRowValuesMatchTargetColumns(t *testing.T) {
	row := Row{ID: "ChIJabc123", Name: "Clinique", AddressKey: "should not appear"}
	values := row.Values()
	require.Len(t, values, len(TargetColumns))
	assert.NotContains(t, values, "should not appear")
}

func TestHasIdentifier(t *testing.T) {
	assert.True(t, Row{ID: "ChIJabc123"}.HasIdentifier())
	assert.False(t, Row{}.HasIdentifier())
}

func TestRecordFromRowPreservesFields(t *testing.T) {
	lat := 46.8139
	row := Row{
		ID:          "ChIJdef456",
		Name:        "Hôpital",
		FaxNumbers:  "14181234567",
		Latitude:    &lat,
		FaxEnabled:  1,
		BillingCode: "12345",
	}

	record := RecordFromRow(row)
	assert.Equal(t, row.ID, record.ID)
	assert.Equal(t, row.Name, record.Name)
	assert.Equal(t, row.FaxNumbers, record.FaxNumbers)
	assert.Equal(t, row.Latitude, record.Latitude)
	assert.Equal(t, row.BillingCode, record.BillingCode)
	assert.Empty(t, record.AdminUserID)
}
