// Package tabular is the file boundary around the reconciliation engine:
// it loads delimited establishment data into typed rows (applying the
// column renaming and the normalization pass), and writes the engine's
// output streams back out as CSV or XLSX.
package tabular

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/faxhealth/carebook/pkg/errors"
	"github.com/faxhealth/carebook/pkg/establishments"
	"github.com/faxhealth/carebook/pkg/normalize"
)

// Required target columns. Loading fails fast when any is absent after
// renaming; everything downstream assumes they exist.
var requiredColumns = []string{"id", "address", "latitude", "longitude"}

// LoadOptions configures a load.
type LoadOptions struct {
	// Mapping renames source columns to target names. Nil means the
	// default mapping.
	Mapping map[string]string

	// Keyer computes address comparison keys. Nil means the default
	// keyer without accent folding.
	Keyer *normalize.Keyer
}

// LoadStats reports what happened during loading.
type LoadStats struct {
	TotalRows    int
	DroppedNoGeo int // rows missing both coordinates
}

// Load reads the input CSV, renames columns, normalizes every field, and
// drops rows missing both coordinates. The returned rows are ready for
// the reconciler.
func Load(path string, opts LoadOptions) ([]establishments.Row, LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, errors.WrapIO("open", path, err)
	}
	defer file.Close()

	rows, stats, err := parse(file, opts)
	if err != nil {
		return nil, stats, errors.WrapParse("csv", path, err)
	}
	return rows, stats, nil
}

// parse does the actual work against any reader, which keeps it testable
// without touching the filesystem.
func parse(r io.Reader, opts LoadOptions) ([]establishments.Row, LoadStats, error) {
	mapping := opts.Mapping
	if mapping == nil {
		mapping = establishments.DefaultColumnMapping
	}
	keyer := opts.Keyer
	if keyer == nil {
		keyer = normalize.NewKeyer()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, LoadStats{}, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = normalize.CleanString(name)
		if target, ok := mapping[name]; ok {
			name = target
		}
		if _, exists := index[name]; !exists {
			index[name] = i
		}
	}

	for _, required := range requiredColumns {
		if _, ok := index[required]; !ok {
			return nil, LoadStats{}, errors.NewValidationError(required, nil, errors.ErrMissingColumn.Error())
		}
	}

	var stats LoadStats
	var rows []establishments.Row

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, err
		}
		stats.TotalRows++

		get := func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		row := establishments.Row{
			ID:                normalize.CleanString(get("id")),
			Name:              normalize.CleanString(get("name")),
			Address:           normalize.CleanString(get("address")),
			Locality:          normalize.CleanString(get("locality")),
			Region:            normalize.CleanString(get("region")),
			Country:           normalize.CleanString(get("country")),
			AdminAreaLevel1:   normalize.CleanString(get("administrative_area_level_1")),
			AdminAreaLevel2:   normalize.CleanString(get("administrative_area_level_2")),
			Phone:             normalize.Phone(get("international_phone_number"), true),
			FaxNumbers:        normalize.Phone(get("fax_numbers"), false),
			FaxKeywordsEN:     get("fax_keywords_en"),
			FaxKeywordsFR:     get("fax_keywords_fr"),
			BillingCode:       normalize.CleanString(get("billing_code")),
			BillingCategories: get("billing_categories"),
			Type:              normalize.CleanString(get("type")),
			Website:           normalize.CleanString(get("website")),
			PlaceType:         normalize.CleanString(get("place_type")),
			AddedTime:         normalize.ParseTimestamp(get("added_time")),
		}

		if lat, ok := normalize.ParseCoordinate(get("latitude")); ok {
			row.Latitude = &lat
		}
		if lon, ok := normalize.ParseCoordinate(get("longitude")); ok {
			row.Longitude = &lon
		}

		// Rows with neither coordinate are unusable downstream and are
		// dropped here, before the reconciler ever sees them.
		if row.Latitude == nil && row.Longitude == nil {
			stats.DroppedNoGeo++
			continue
		}

		if _, ok := index["is_fax_enabled"]; ok {
			row.FaxEnabled = normalize.ParseFlag(get("is_fax_enabled"))
		} else if row.FaxNumbers != "" {
			row.FaxEnabled = 1
		}

		row.AddressKey = keyer.AddressKey(row.Address)
		rows = append(rows, row)
	}

	return rows, stats, nil
}
