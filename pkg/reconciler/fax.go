package reconciler

import (
	"regexp"
	"strings"

	"github.com/faxhealth/carebook/pkg/establishments"
	"github.com/faxhealth/carebook/pkg/normalize"
)

// faxSeparatorPattern splits raw fax values that already carry several
// numbers joined by comma or semicolon.
var faxSeparatorPattern = regexp.MustCompile(`[;,]`)

// MergeFaxNumbers consolidates raw fax values into one comma-joined,
// deduplicated list of normalized numbers in first-seen order. Each raw
// value may itself contain several numbers separated by comma or
// semicolon; empty pieces are discarded.
func MergeFaxNumbers(values ...string) string {
	seen := make(map[string]struct{})
	var unique []string

	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		for _, piece := range faxSeparatorPattern.Split(value, -1) {
			normalized := normalize.Phone(piece, false)
			if normalized == "" {
				continue
			}
			if _, ok := seen[normalized]; ok {
				continue
			}
			seen[normalized] = struct{}{}
			unique = append(unique, normalized)
		}
	}

	return strings.Join(unique, ",")
}

// MergeFaxKeywords collects the stored keyword entries of every row in
// row order and deduplicates them per language by fax number. A later
// row's entry for the same fax number overwrites an earlier one while
// keeping the first-seen position. Payloads that fail to parse are
// skipped, not surfaced. Returns the merged English and French lists.
func MergeFaxKeywords(rows []establishments.Row) (en, fr []establishments.FaxKeyword) {
	en = dedupeByFax(collectKeywords(rows, establishments.LanguageEN))
	fr = dedupeByFax(collectKeywords(rows, establishments.LanguageFR))
	return en, fr
}

// collectKeywords decodes one language column across all rows in order.
func collectKeywords(rows []establishments.Row, lang establishments.Language) []establishments.FaxKeyword {
	var all []establishments.FaxKeyword
	for _, row := range rows {
		payload := row.FaxKeywordsEN
		if lang == establishments.LanguageFR {
			payload = row.FaxKeywordsFR
		}
		entries, err := establishments.DecodeFaxKeywords(payload, lang)
		if err != nil {
			// Malformed keyword payloads are dropped from the merge.
			continue
		}
		all = append(all, entries...)
	}
	return all
}

// dedupeByFax keeps one entry per fax number, last write wins, order of
// first appearance preserved.
func dedupeByFax(keywords []establishments.FaxKeyword) []establishments.FaxKeyword {
	index := make(map[string]int)
	var unique []establishments.FaxKeyword
	for _, kw := range keywords {
		if i, ok := index[kw.FaxNumber]; ok {
			unique[i] = kw
			continue
		}
		index[kw.FaxNumber] = len(unique)
		unique = append(unique, kw)
	}
	return unique
}

// defaultKeywords synthesizes one entry per fax number in both languages
// using the configured default phrases.
func (o *options) defaultKeywords(faxNumbers string) (en, fr []establishments.FaxKeyword) {
	if faxNumbers == "" {
		return nil, nil
	}
	for _, fax := range strings.Split(faxNumbers, ",") {
		fax = strings.TrimSpace(fax)
		if fax == "" {
			continue
		}
		en = append(en, establishments.FaxKeyword{
			FaxNumber: fax,
			Keyword:   o.defaultKeywordEN,
			Language:  establishments.LanguageEN,
		})
		fr = append(fr, establishments.FaxKeyword{
			FaxNumber: fax,
			Keyword:   o.defaultKeywordFR,
			Language:  establishments.LanguageFR,
		})
	}
	return en, fr
}
