package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFencedBlock(t *testing.T) {
	text := "Here is the data:\n```json\n{\"document_type\": \"invoice\"}\n```\nDone."
	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"document_type":"invoice"}`, string(raw))
}

func TestExtractJSONFenceWithoutLanguageTag(t *testing.T) {
	text := "```\n{\"a\": 1}\n```"
	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))
}

func TestExtractJSONFencedWinsOverSurroundingBraces(t *testing.T) {
	text := "ignore {\"wrong\": true} above\n```json\n{\"right\": true}\n```"
	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"right":true}`, string(raw))
}

func TestExtractJSONRawObject(t *testing.T) {
	text := "The result is {\"document_type\": \"receipt\", \"items\": []} as requested."
	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"document_type":"receipt","items":[]}`, string(raw))
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := ExtractJSON("sorry, I could not read the document")
	assert.Error(t, err)
}
