// Package establishments defines the domain types for healthcare
// establishment records: the raw input row, the canonical output record,
// the target column schema, and the language-tagged fax keyword entries
// stored as JSON at the dataset boundary.
package establishments

import "strconv"

// TargetColumns is the exact column order of the clean dataset.
var TargetColumns = []string{
	"id", "admin_user_id", "name", "address", "locality", "region", "country",
	"administrative_area_level_1", "administrative_area_level_2",
	"international_phone_number", "fax_numbers", "fax_keywords_en", "fax_keywords_fr",
	"billing_code", "billing_categories", "type", "website",
	"latitude", "longitude", "added_time", "place_type", "is_fax_enabled",
}

// DefaultColumnMapping renames source columns to target names before
// processing. Columns absent from the mapping pass through unchanged.
var DefaultColumnMapping = map[string]string{
	"code":               "billing_code",
	"billing_categories": "billing_categories",
}

// Row is one raw input record after the normalization pass. Latitude and
// Longitude are pointers because "absent" must stay distinct from zero.
type Row struct {
	ID                string
	Name              string
	Address           string
	Locality          string
	Region            string
	Country           string
	AdminAreaLevel1   string
	AdminAreaLevel2   string
	Phone             string
	FaxNumbers        string
	FaxKeywordsEN     string
	FaxKeywordsFR     string
	BillingCode       string
	BillingCategories string
	Type              string
	Website           string
	Latitude          *float64
	Longitude         *float64
	AddedTime         int64
	PlaceType         string
	FaxEnabled        int

	// AddressKey is the derived comparison key. It is computed once
	// during loading and never written to the clean output.
	AddressKey string
}

// HasIdentifier reports whether the row carries a non-empty identifier.
func (r Row) HasIdentifier() bool {
	return r.ID != ""
}

// Record is one canonical output row per identifier group.
type Record struct {
	ID                string
	AdminUserID       string
	Name              string
	Address           string
	Locality          string
	Region            string
	Country           string
	AdminAreaLevel1   string
	AdminAreaLevel2   string
	Phone             string
	FaxNumbers        string
	FaxKeywordsEN     string
	FaxKeywordsFR     string
	BillingCode       string
	BillingCategories string
	Type              string
	Website           string
	Latitude          *float64
	Longitude         *float64
	AddedTime         int64
	PlaceType         string
	FaxEnabled        int
}

// RecordFromRow copies a row into a canonical record. The admin user
// placeholder stays empty; it is assigned downstream of this tool.
func RecordFromRow(row Row) Record {
	return Record{
		ID:                row.ID,
		Name:              row.Name,
		Address:           row.Address,
		Locality:          row.Locality,
		Region:            row.Region,
		Country:           row.Country,
		AdminAreaLevel1:   row.AdminAreaLevel1,
		AdminAreaLevel2:   row.AdminAreaLevel2,
		Phone:             row.Phone,
		FaxNumbers:        row.FaxNumbers,
		FaxKeywordsEN:     row.FaxKeywordsEN,
		FaxKeywordsFR:     row.FaxKeywordsFR,
		BillingCode:       row.BillingCode,
		BillingCategories: row.BillingCategories,
		Type:              row.Type,
		Website:           row.Website,
		Latitude:          row.Latitude,
		Longitude:         row.Longitude,
		AddedTime:         row.AddedTime,
		PlaceType:         row.PlaceType,
		FaxEnabled:        row.FaxEnabled,
	}
}

// Values returns the record fields in TargetColumns order.
func (r Record) Values() []string {
	return []string{
		r.ID,
		r.AdminUserID,
		r.Name,
		r.Address,
		r.Locality,
		r.Region,
		r.Country,
		r.AdminAreaLevel1,
		r.AdminAreaLevel2,
		r.Phone,
		r.FaxNumbers,
		r.FaxKeywordsEN,
		r.FaxKeywordsFR,
		r.BillingCode,
		r.BillingCategories,
		r.Type,
		r.Website,
		formatCoordinate(r.Latitude),
		formatCoordinate(r.Longitude),
		strconv.FormatInt(r.AddedTime, 10),
		r.PlaceType,
		strconv.Itoa(r.FaxEnabled),
	}
}

// Values returns the row fields in TargetColumns order, with an empty
// admin user placeholder. Used for the rejects and quarantine streams.
func (r Row) Values() []string {
	return Record{
		ID:                r.ID,
		Name:              r.Name,
		Address:           r.Address,
		Locality:          r.Locality,
		Region:            r.Region,
		Country:           r.Country,
		AdminAreaLevel1:   r.AdminAreaLevel1,
		AdminAreaLevel2:   r.AdminAreaLevel2,
		Phone:             r.Phone,
		FaxNumbers:        r.FaxNumbers,
		FaxKeywordsEN:     r.FaxKeywordsEN,
		FaxKeywordsFR:     r.FaxKeywordsFR,
		BillingCode:       r.BillingCode,
		BillingCategories: r.BillingCategories,
		Type:              r.Type,
		Website:           r.Website,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		AddedTime:         r.AddedTime,
		PlaceType:         r.PlaceType,
		FaxEnabled:        r.FaxEnabled,
	}.Values()
}

func formatCoordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
