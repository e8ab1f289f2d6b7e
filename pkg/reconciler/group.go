package reconciler

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/faxhealth/carebook/pkg/establishments"
)

// groupOutcome is what reconciling one identifier group produces.
type groupOutcome struct {
	record     establishments.Record
	quarantine []establishments.Row
	audit      *AuditEntry
	status     string
}

// Group shapes. A group is a singleton, homogeneous (all rows share one
// address key), or conflicting (two or more distinct keys). The decision
// is made once per group and is final.
const (
	shapeSingleton   = "singleton"
	shapeHomogeneous = "homogeneous"
	shapeConflicting = "conflicting"
)

// reconcileGroup routes a group to the path its shape dictates.
func (r *Reconciler) reconcileGroup(id string, rows []establishments.Row) groupOutcome {
	if len(rows) == 1 {
		return r.singleton(rows[0])
	}

	keys := distinctAddressKeys(rows)
	if len(keys) > 1 {
		return r.conflicting(id, rows, keys)
	}
	return r.homogeneous(id, rows, keys[0])
}

// singleton passes the single row through with fax fields normalized and
// keyword defaults generated where none were stored.
func (r *Reconciler) singleton(row establishments.Row) groupOutcome {
	record := establishments.RecordFromRow(row)

	if record.FaxNumbers != "" {
		record.FaxNumbers = MergeFaxNumbers(row.FaxNumbers)
		if isEmptyKeywordPayload(record.FaxKeywordsEN) && isEmptyKeywordPayload(record.FaxKeywordsFR) {
			en, fr := r.opts.defaultKeywords(record.FaxNumbers)
			record.FaxKeywordsEN = establishments.EncodeFaxKeywords(en, establishments.LanguageEN)
			record.FaxKeywordsFR = establishments.EncodeFaxKeywords(fr, establishments.LanguageFR)
		}
	} else {
		if record.FaxKeywordsEN == "" {
			record.FaxKeywordsEN = establishments.EmptyKeywordList
		}
		if record.FaxKeywordsFR == "" {
			record.FaxKeywordsFR = establishments.EmptyKeywordList
		}
	}

	return groupOutcome{record: record, status: shapeSingleton}
}

// homogeneous merges a group whose rows all describe the same place.
// Scalar fields take the most frequent non-empty value with first-seen
// tie-break; every field that had more than one distinct non-empty value
// is recorded as a conflict even though a value was chosen.
func (r *Reconciler) homogeneous(id string, rows []establishments.Row, addressKey string) groupOutcome {
	conflicts := make(map[string][]string)
	record := establishments.Record{ID: id}

	record.Name = mergeStringField(rows, "name", conflicts, func(r establishments.Row) string { return r.Name })
	record.Address = mergeStringField(rows, "address", conflicts, func(r establishments.Row) string { return r.Address })
	record.Locality = mergeStringField(rows, "locality", conflicts, func(r establishments.Row) string { return r.Locality })
	record.Region = mergeStringField(rows, "region", conflicts, func(r establishments.Row) string { return r.Region })
	record.Country = mergeStringField(rows, "country", conflicts, func(r establishments.Row) string { return r.Country })
	record.AdminAreaLevel1 = mergeStringField(rows, "administrative_area_level_1", conflicts, func(r establishments.Row) string { return r.AdminAreaLevel1 })
	record.AdminAreaLevel2 = mergeStringField(rows, "administrative_area_level_2", conflicts, func(r establishments.Row) string { return r.AdminAreaLevel2 })
	record.Phone = mergeStringField(rows, "international_phone_number", conflicts, func(r establishments.Row) string { return r.Phone })
	record.Type = mergeStringField(rows, "type", conflicts, func(r establishments.Row) string { return r.Type })
	record.Website = mergeStringField(rows, "website", conflicts, func(r establishments.Row) string { return r.Website })
	record.PlaceType = mergeStringField(rows, "place_type", conflicts, func(r establishments.Row) string { return r.PlaceType })

	record.Latitude = mergeCoordinateField(rows, "latitude", conflicts, func(r establishments.Row) *float64 { return r.Latitude })
	record.Longitude = mergeCoordinateField(rows, "longitude", conflicts, func(r establishments.Row) *float64 { return r.Longitude })
	record.AddedTime = mergeTimestampField(rows, "added_time", conflicts)
	record.FaxEnabled = mergeFlagField(rows, "is_fax_enabled", conflicts)

	record.BillingCode = mergeBillingCodes(rows)
	record.BillingCategories = mergeBillingCategories(rows)
	record.FaxNumbers = mergeGroupFaxNumbers(rows)

	en, fr := MergeFaxKeywords(rows)
	if len(en) == 0 && len(fr) == 0 {
		en, fr = r.opts.defaultKeywords(record.FaxNumbers)
	}
	record.FaxKeywordsEN = establishments.EncodeFaxKeywords(en, establishments.LanguageEN)
	record.FaxKeywordsFR = establishments.EncodeFaxKeywords(fr, establishments.LanguageFR)

	audit := &AuditEntry{
		ID:                 id,
		NormalizedAddress:  addressKey,
		SourceRowCount:     len(rows),
		MergedBillingCodes: record.BillingCode,
		MergedFaxNumbers:   record.FaxNumbers,
		FieldConflicts:     encodeConflicts(conflicts),
		Status:             StatusMerged,
	}

	return groupOutcome{record: record, audit: audit, status: shapeHomogeneous}
}

// conflicting handles a group with two or more distinct address keys.
// Scalar fields are not merged: the row with the lexically lowest key
// becomes the representative, a stable tie-break on an otherwise
// arbitrary pick. Fax numbers, fax keywords, and billing codes are still
// merged across the entire group because a shared identifier is assumed
// to mean one fax line and billing entity even when the street addresses
// disagree. Every row, representative included, goes to quarantine.
func (r *Reconciler) conflicting(id string, rows []establishments.Row, keys []string) groupOutcome {
	sorted := make([]establishments.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AddressKey < sorted[j].AddressKey
	})

	record := establishments.RecordFromRow(sorted[0])

	record.FaxNumbers = mergeGroupFaxNumbers(rows)
	en, fr := MergeFaxKeywords(rows)
	if len(en) == 0 && len(fr) == 0 {
		en, fr = r.opts.defaultKeywords(record.FaxNumbers)
	}
	record.FaxKeywordsEN = establishments.EncodeFaxKeywords(en, establishments.LanguageEN)
	record.FaxKeywordsFR = establishments.EncodeFaxKeywords(fr, establishments.LanguageFR)
	record.BillingCode = mergeBillingCodes(rows)

	audit := &AuditEntry{
		ID:                 id,
		NormalizedAddress:  multipleAddresses,
		SourceRowCount:     len(rows),
		MergedBillingCodes: record.BillingCode,
		MergedFaxNumbers:   record.FaxNumbers,
		FieldConflicts:     encodeConflicts(map[string][]string{"addresses": keys}),
		Status:             StatusKeptFirstQuarantinedOthers,
	}

	quarantine := make([]establishments.Row, len(rows))
	copy(quarantine, rows)

	return groupOutcome{record: record, quarantine: quarantine, audit: audit, status: shapeConflicting}
}

// distinctAddressKeys returns the group's address keys in first-seen order.
func distinctAddressKeys(rows []establishments.Row) []string {
	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = row.AddressKey
	}
	seen := make(map[string]struct{})
	var distinct []string
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		distinct = append(distinct, key)
	}
	return distinct
}

// mergeStringField picks the most frequent non-empty value and records a
// conflict when the group held more than one distinct non-empty value.
func mergeStringField(rows []establishments.Row, field string, conflicts map[string][]string, get func(establishments.Row) string) string {
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = get(row)
	}
	chosen, distinct := mostCommon(values, func(v string) bool { return v == "" })
	if len(distinct) > 1 {
		conflicts[field] = distinct
	}
	return chosen
}

// mergeCoordinateField merges latitude/longitude; absent values are
// skipped, and absence propagates when no row carried the coordinate.
func mergeCoordinateField(rows []establishments.Row, field string, conflicts map[string][]string, get func(establishments.Row) *float64) *float64 {
	var values []float64
	for _, row := range rows {
		if v := get(row); v != nil {
			values = append(values, *v)
		}
	}
	chosen, distinct := mostCommon(values, nil)
	if len(distinct) == 0 {
		return nil
	}
	if len(distinct) > 1 {
		formatted := make([]string, len(distinct))
		for i, v := range distinct {
			formatted[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		conflicts[field] = formatted
	}
	return &chosen
}

// mergeTimestampField merges the added-time column. Zero is a value
// here, not an absence: unparsable timestamps defaulted to zero during
// loading and still participate in the frequency count.
func mergeTimestampField(rows []establishments.Row, field string, conflicts map[string][]string) int64 {
	values := make([]int64, len(rows))
	for i, row := range rows {
		values[i] = row.AddedTime
	}
	chosen, distinct := mostCommon(values, nil)
	if len(distinct) > 1 {
		formatted := make([]string, len(distinct))
		for i, v := range distinct {
			formatted[i] = strconv.FormatInt(v, 10)
		}
		conflicts[field] = formatted
	}
	return chosen
}

// mergeFlagField merges the fax-enabled flag the same way.
func mergeFlagField(rows []establishments.Row, field string, conflicts map[string][]string) int {
	values := make([]int, len(rows))
	for i, row := range rows {
		values[i] = row.FaxEnabled
	}
	chosen, distinct := mostCommon(values, nil)
	if len(distinct) > 1 {
		formatted := make([]string, len(distinct))
		for i, v := range distinct {
			formatted[i] = strconv.Itoa(v)
		}
		conflicts[field] = formatted
	}
	return chosen
}

// mergeBillingCodes joins the distinct non-empty billing codes across
// the group with semicolons, first-seen order.
func mergeBillingCodes(rows []establishments.Row) string {
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row.BillingCode
	}
	return joinDistinct(values)
}

// mergeBillingCategories keeps a single shared value as-is; differing
// values are semicolon-joined as a distinct set in first-seen order.
func mergeBillingCategories(rows []establishments.Row) string {
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row.BillingCategories
	}
	return joinDistinct(values)
}

func joinDistinct(values []string) string {
	distinct := distinctNonEmpty(values)
	if len(distinct) == 0 {
		return ""
	}
	joined := distinct[0]
	for _, v := range distinct[1:] {
		joined += ";" + v
	}
	return joined
}

// mergeGroupFaxNumbers consolidates every row's fax value in row order.
func mergeGroupFaxNumbers(rows []establishments.Row) string {
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row.FaxNumbers
	}
	return MergeFaxNumbers(values...)
}

// encodeConflicts serializes the conflict map, "{}" when empty.
func encodeConflicts(conflicts map[string][]string) string {
	if len(conflicts) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(conflicts)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

// isEmptyKeywordPayload reports whether a stored keyword column holds no
// entries.
func isEmptyKeywordPayload(payload string) bool {
	return payload == "" || payload == establishments.EmptyKeywordList
}
