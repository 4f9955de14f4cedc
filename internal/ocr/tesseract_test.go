package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tsvHeader = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext"

func tsvRow(cols ...string) string {
	return strings.Join(cols, "\t")
}

func TestParseTSVGroupsWordsIntoLines(t *testing.T) {
	tsv := strings.Join([]string{
		tsvHeader,
		// structural rows carry conf -1 and must be skipped
		tsvRow("4", "1", "1", "1", "1", "0", "10", "10", "100", "22", "-1", ""),
		tsvRow("5", "1", "1", "1", "1", "1", "10", "10", "50", "20", "90", "Hello"),
		tsvRow("5", "1", "1", "1", "1", "2", "70", "10", "40", "22", "80", "world"),
		tsvRow("5", "1", "1", "1", "2", "1", "10", "40", "30", "20", "70", "Bye"),
	}, "\n")

	lines := parseTSV(tsv)
	require.Len(t, lines, 2)

	assert.Equal(t, "Hello world", lines[0].Text)
	assert.InDelta(t, 0.85, lines[0].Confidence, 1e-6)
	assert.Equal(t, 10, lines[0].Box.Left)
	assert.Equal(t, 100, lines[0].Box.Width)
	assert.Equal(t, 22, lines[0].Box.Height)

	assert.Equal(t, "Bye", lines[1].Text)
	assert.InDelta(t, 0.70, lines[1].Confidence, 1e-6)
}

func TestParseTSVSkipsEmptyAndMalformedRows(t *testing.T) {
	tsv := strings.Join([]string{
		tsvHeader,
		"short\trow",
		tsvRow("5", "1", "1", "1", "1", "1", "10", "10", "50", "20", "95", "ok"),
		"",
	}, "\n")

	lines := parseTSV(tsv)
	require.Len(t, lines, 1)
	assert.Equal(t, "ok", lines[0].Text)
	assert.InDelta(t, 0.95, lines[0].Confidence, 1e-6)
}

func TestParseTSVEmptyInput(t *testing.T) {
	assert.Empty(t, parseTSV(""))
	assert.Empty(t, parseTSV(tsvHeader))
}
