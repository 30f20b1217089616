// Package layout turns positioned text tokens into classified logical rows.
// Classification is a pure function of token geometry and cell text so it can
// be exercised against fixture token sets without a document.
package layout

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Token is one positioned text run on a page, in PDF user-space coordinates
// (origin bottom-left). W is the run's rendered width.
type Token struct {
	Text string
	X    float64
	Y    float64
	W    float64
}

var releaseDateRe = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+([0-9]{1,2}),\s*([0-9]{4})`)

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

// FindReleaseDate scans a page's tokens for a long-form calendar date, the
// way release headers state one ("... as of April 25, 2025").
func FindReleaseDate(tokens []Token) (time.Time, bool) {
	var sb strings.Builder
	for i, t := range tokens {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	m := releaseDateRe.FindStringSubmatch(sb.String())
	if m == nil {
		return time.Time{}, false
	}
	month := months[strings.ToLower(m[1])]
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}
