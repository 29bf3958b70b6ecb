// Package placeholder substitutes date tokens in notification message templates.
//
// Two token shapes are recognized:
//   - {date}           equivalent to {date:DD/MM/YYYY}
//   - {date:FMT}       where FMT combines DD, MM, YYYY with literal separators
//
// Anything else that merely looks like a token (unknown field names, empty
// format) is left untouched: a partially substituted message is preferred
// over a failed send.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const defaultFormat = "DD/MM/YYYY"

var reToken = regexp.MustCompile(`\{date(?::([^{}]*))?\}`)

// Format replaces every date token in template with now rendered through the
// token's format. Pure and deterministic given now; output digits are always
// Arabic numerals, zero-padded to the field width.
func Format(template string, now time.Time) string {
	return reToken.ReplaceAllStringFunc(template, func(tok string) string {
		m := reToken.FindStringSubmatch(tok)

		layout := defaultFormat
		if strings.HasPrefix(tok, "{date:") {
			layout = m[1]
		}

		out, ok := render(layout, now)
		if !ok {
			return tok
		}
		return out
	})
}

// render expands a DD/MM/YYYY mini-language layout. It returns ok=false when
// the layout is empty, contains no date field, or contains an unknown
// letter sequence.
func render(layout string, now time.Time) (string, bool) {
	if layout == "" {
		return "", false
	}

	var b strings.Builder
	fields := 0
	for i := 0; i < len(layout); {
		switch {
		case strings.HasPrefix(layout[i:], "YYYY"):
			fmt.Fprintf(&b, "%04d", now.Year())
			i += 4
			fields++
		case strings.HasPrefix(layout[i:], "MM"):
			fmt.Fprintf(&b, "%02d", int(now.Month()))
			i += 2
			fields++
		case strings.HasPrefix(layout[i:], "DD"):
			fmt.Fprintf(&b, "%02d", now.Day())
			i += 2
			fields++
		default:
			c := layout[i]
			if isLetter(c) {
				// Unknown field name; treat the whole token as malformed.
				return "", false
			}
			b.WriteByte(c)
			i++
		}
	}
	if fields == 0 {
		return "", false
	}
	return b.String(), true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
