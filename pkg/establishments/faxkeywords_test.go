package establishments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFaxKeywords(t *testing.T) {
	payload := `[{"fax_number":"15141234567","keyword_en":"oncology"},{"fax_number":"15149998888","keyword_en":"general"}]`

	keywords, err := DecodeFaxKeywords(payload, LanguageEN)
	require.NoError(t, err)
	require.Len(t, keywords, 2)
	assert.Equal(t, "15141234567", keywords[0].FaxNumber)
	assert.Equal(t, "oncology", keywords[0].Keyword)
	assert.Equal(t, LanguageEN, keywords[0].Language)
}

func TestDecodeFaxKeywordsEmptyPayloads(t *testing.T) {
	for _, payload := range []string{"", "  ", "[]"} {
		keywords, err := DecodeFaxKeywords(payload, LanguageEN)
		require.NoError(t, err)
		assert.Nil(t, keywords)
	}
}

func TestDecodeFaxKeywordsDropsEntriesWithoutFax(t *testing.T) {
	payload := `[{"fax_number":"","keyword_en":"orphan"},{"fax_number":"15141234567","keyword_en":"kept"}]`

	keywords, err := DecodeFaxKeywords(payload, LanguageEN)
	require.NoError(t, err)
	require.Len(t, keywords, 1)
	assert.Equal(t, "kept", keywords[0].Keyword)
}

func TestDecodeFaxKeywordsMalformed(t *testing.T) {
	_, err := DecodeFaxKeywords("{not json", LanguageEN)
	assert.Error(t, err)
}

func TestDecodeFaxKeywordsFrenchColumn(t *testing.T) {
	payload := `[{"fax_number":"15141234567","keyword_fr":"oncologie"}]`

	keywords, err := DecodeFaxKeywords(payload, LanguageFR)
	require.NoError(t, err)
	require.Len(t, keywords, 1)
	assert.Equal(t, "oncologie", keywords[0].Keyword)
	assert.Equal(t, LanguageFR, keywords[0].Language)
}

func TestEncodeFaxKeywords(t *testing.T) {
	keywords := []FaxKeyword{
		{FaxNumber: "15141234567", Keyword: "oncology", Language: LanguageEN},
		{FaxNumber: "15149998888", Keyword: "oncologie", Language: LanguageFR},
	}

	en := EncodeFaxKeywords(keywords, LanguageEN)
	assert.JSONEq(t, `[{"fax_number":"15141234567","keyword_en":"oncology"}]`, en)

	fr := EncodeFaxKeywords(keywords, LanguageFR)
	assert.JSONEq(t, `[{"fax_number":"15149998888","keyword_fr":"oncologie"}]`, fr)
}

func TestEncodeFaxKeywordsEmpty(t *testing.T) {
	assert.Equal(t, EmptyKeywordList, EncodeFaxKeywords(nil, LanguageEN))
	assert.Equal(t, EmptyKeywordList, EncodeFaxKeywords([]FaxKeyword{
		{FaxNumber: "1", Keyword: "fr only", Language: LanguageFR},
	}, LanguageEN))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := []FaxKeyword{
		{FaxNumber: "15141234567", Keyword: "general inquiries", Language: LanguageEN},
	}

	decoded, err := DecodeFaxKeywords(EncodeFaxKeywords(original, LanguageEN), LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}
