package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-tarot/internal/domain/history"
	"github.com/yanqian/ai-tarot/internal/domain/reading"
)

func TestInterpretationMarkdown(t *testing.T) {
	got := interpretationMarkdown(`<h3>Love</h3><p>Text &amp; more.</p><h3>Career</h3><p>More <script>alert(1)</script>text.</p>`)
	require.Equal(t, "### Love\n\nText & more.\n\n### Career\n\nMore text.", got)
}

func TestReadingMarkdown(t *testing.T) {
	md := readingMarkdown(history.Reading{
		ID:          3,
		Name:        "Reading: my path...",
		Description: "Cards: The Fool, The Sun, The Moon",
		Data: history.ReadingData{
			Cards:              []reading.Card{{Name: "The Fool"}, {Name: "The Sun"}, {Name: "The Moon"}},
			Questions:          []string{"my path", "", "family"},
			InterpretationText: "**Past**\nA start.",
		},
	})
	require.True(t, strings.HasPrefix(md, "# Reading: my path...\n"))
	require.Contains(t, md, "- The Sun\n")
	require.Contains(t, md, "1. my path\n2. family\n")
	require.Contains(t, md, "### Past\n\nA start.")
}

func TestParseReadingID(t *testing.T) {
	id, err := parseReadingID(" 12 ")
	require.NoError(t, err)
	require.Equal(t, int64(12), id)

	_, err = parseReadingID("0")
	require.Error(t, err)
	_, err = parseReadingID("abc")
	require.Error(t, err)
}
