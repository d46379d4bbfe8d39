// Package sanitize cleans free-text fields before they are persisted or
// broadcast: markup stripping, zalgo (combining mark) removal, whitespace
// normalization, and field-specific length caps.
package sanitize

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// Policy describes how a particular text field is cleaned.
type Policy struct {
	// MaxLen is the cap in code points. It applies to the raw input and is
	// re-applied after cleaning, since normalization can expand code points.
	MaxLen int
	// markup decides which tags survive cleaning. Allowed tags are kept in
	// their bare form; attributes never survive.
	markup *bluemonday.Policy
}

// Preset policies for the fields the server accepts.
var (
	// MessageBody allows no markup at all.
	MessageBody = Policy{MaxLen: 1000, markup: bluemonday.StrictPolicy()}
	// DisplayName keeps a small inline-emphasis subset.
	DisplayName = Policy{MaxLen: 255, markup: bluemonday.NewPolicy().AllowElements("b", "i", "em", "strong")}
	// ProfileBio allows no markup.
	ProfileBio = Policy{MaxLen: 500, markup: bluemonday.StrictPolicy()}
)

// Clean applies the policy to text and returns the cleaned result.
// It is pure and idempotent: Clean(Clean(s, p), p) == Clean(s, p).
//
// The pipeline runs to a fixed point: normalization can expand code points
// past the cap, stripping can uncover fresh markup, and entity decoding can
// uncover fresh combining marks. Every step shrinks the text apart from
// decomposition, which is bounded, so the loop terminates.
func Clean(text string, p Policy) string {
	s := truncate(text, p.MaxLen)
	for {
		prev := s
		s = stripCombining(norm.NFKD.String(s))
		s = stripMarkup(s, p.markup)
		s = collapseSpace(s)
		s = truncate(s, p.MaxLen)
		if s == prev {
			return s
		}
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// stripMarkup removes every tag the policy disallows, along with comments and
// the content of non-displayable elements such as script and style. The
// sanitizer escapes stray angle brackets in text; unescaping restores them so
// the result is plain text plus bare allowed tags.
func stripMarkup(s string, markup *bluemonday.Policy) string {
	return html.UnescapeString(markup.Sanitize(s))
}

// Combining mark ranges stacked by zalgo-style decoration.
var combiningRanges = [][2]rune{
	{0x0300, 0x036F},
	{0x1AB0, 0x1AFF},
	{0x1DC0, 0x1DFF},
	{0x20D0, 0x20FF},
	{0xFE20, 0xFE2F},
}

func stripCombining(s string) string {
	return strings.Map(func(r rune) rune {
		for _, rng := range combiningRanges {
			if r >= rng[0] && r <= rng[1] {
				return -1
			}
		}
		return r
	}, s)
}

func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
