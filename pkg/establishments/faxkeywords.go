package establishments

import (
	"encoding/json"
	"strings"
)

// Language tags a fax keyword entry.
type Language string

// Supported keyword languages.
const (
	LanguageEN Language = "en"
	LanguageFR Language = "fr"
)

// FaxKeyword associates a keyword phrase with one fax number in one
// language. The dataset stores these as JSON arrays in per-language
// columns; internally they are typed tuples and only (de)serialized at
// the storage boundary.
type FaxKeyword struct {
	FaxNumber string
	Keyword   string
	Language  Language
}

// faxKeywordJSON is the wire shape of one keyword entry. The keyword
// field name carries the language tag, matching the column it lives in.
type faxKeywordJSON struct {
	FaxNumber string `json:"fax_number"`
	KeywordEN string `json:"keyword_en,omitempty"`
	KeywordFR string `json:"keyword_fr,omitempty"`
}

// EmptyKeywordList is the serialized form of an empty keyword column.
const EmptyKeywordList = "[]"

// DecodeFaxKeywords parses a stored keyword column into typed entries.
// Entries without a fax number are dropped. An empty or "[]" payload
// decodes to nil without error.
func DecodeFaxKeywords(payload string, lang Language) ([]FaxKeyword, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" || trimmed == EmptyKeywordList {
		return nil, nil
	}

	var entries []faxKeywordJSON
	if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
		return nil, err
	}

	keywords := make([]FaxKeyword, 0, len(entries))
	for _, entry := range entries {
		if entry.FaxNumber == "" {
			continue
		}
		keyword := entry.KeywordEN
		if lang == LanguageFR {
			keyword = entry.KeywordFR
		}
		keywords = append(keywords, FaxKeyword{
			FaxNumber: entry.FaxNumber,
			Keyword:   keyword,
			Language:  lang,
		})
	}
	return keywords, nil
}

// EncodeFaxKeywords serializes entries of one language back to the
// stored column form. Entries tagged with other languages are ignored.
func EncodeFaxKeywords(keywords []FaxKeyword, lang Language) string {
	entries := make([]faxKeywordJSON, 0, len(keywords))
	for _, kw := range keywords {
		if kw.Language != lang {
			continue
		}
		entry := faxKeywordJSON{FaxNumber: kw.FaxNumber}
		if lang == LanguageFR {
			entry.KeywordFR = kw.Keyword
		} else {
			entry.KeywordEN = kw.Keyword
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return EmptyKeywordList
	}

	encoded, err := json.Marshal(entries)
	if err != nil {
		// Entries are plain strings; marshal cannot fail on them.
		return EmptyKeywordList
	}
	return string(encoded)
}
