package report

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MaxCitationChars is the longest cited text shown before truncation.
	MaxCitationChars = 200
	// Ellipsis marks a truncated citation.
	Ellipsis = "..."

	pageLabelPrefix = "Pág. "
)

// RenderedCitation is a citation shaped for display.
type RenderedCitation struct {
	DocumentTitle string `json:"document_title" yaml:"document_title"`
	PageLabel     string `json:"page_label" yaml:"page_label"`
	Text          string `json:"text" yaml:"text"`
	Truncated     bool   `json:"truncated" yaml:"truncated"`
}

// ShapeCitedText replaces carriage returns with spaces and cuts the result at
// MaxCitationChars characters, appending Ellipsis when anything was cut. The
// cut is a raw character boundary, not a word boundary.
func ShapeCitedText(text string) (string, bool) {
	s := strings.ReplaceAll(text, "\r", " ")
	if utf8.RuneCountInString(s) <= MaxCitationChars {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:MaxCitationChars]) + Ellipsis, true
}

// PageLabel formats a page range. Ranges with start > end are rendered as
// given.
func PageLabel(start, end int) string {
	if start == end {
		return pageLabelPrefix + strconv.Itoa(start)
	}
	return pageLabelPrefix + strconv.Itoa(start) + "-" + strconv.Itoa(end)
}

func renderCitation(c Citation) RenderedCitation {
	text, truncated := ShapeCitedText(c.CitedText)
	return RenderedCitation{
		DocumentTitle: c.DocumentTitle,
		PageLabel:     PageLabel(c.StartPage, c.EndPage),
		Text:          text,
		Truncated:     truncated,
	}
}
