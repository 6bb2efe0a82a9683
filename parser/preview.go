package parser

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bakape/forum/common"
	"github.com/microcosm-cc/bluemonday"
)

var (
	anchorRegexp     = regexp.MustCompile(`<a\s[^>]*>`)
	quoteOpenRegexp  = regexp.MustCompile(`<blockquote([^>]*)>(?:\s|<br>)*`)
	quoteCloseRegexp = regexp.MustCompile(`(?:\s|<br>)*</blockquote>(?:\s|<br>)*`)
	tagRegexp        = regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9]*)[^>]*>`)
	lineBreakRegexp  = regexp.MustCompile(`<br\s*/?>\n?`)
	bracketRegexp    = regexp.MustCompile(`\[[^\]\n]+\]`)

	stripTags = bluemonday.StrictPolicy()
)

// PostProcess finalizes the rendered body of m and generates its previews
func PostProcess(m *common.ProcessedMessage) {
	body := anchorRegexp.ReplaceAllStringFunc(m.DisplayBody, func(tag string) string {
		if strings.Contains(tag, "target=") {
			return tag
		}
		return `<a target="_blank" ` + tag[3:]
	})
	body = quoteOpenRegexp.ReplaceAllString(body, "<blockquote$1>")
	body = quoteCloseRegexp.ReplaceAllString(body, "</blockquote>")

	m.DisplayBody = strings.TrimSpace(body)
	m.ShortPreview = RenderPreview(m.DisplayBody, common.ShortPreviewLength, false)
	m.LongPreview = RenderPreview(m.DisplayBody, common.LongPreviewLength, true)
}

// RenderPreview produces a text preview of an HTML message body. Quotes and
// spoilers are omitted. Unless multiline is set, only the first line is kept.
//
// The result is HTML-safe text: entities are escaped and callers must not
// escape it again. maxLen limits the runes of the unescaped text, so the
// escaped result may be longer.
func RenderPreview(body string, maxLen int, multiline bool) string {
	body = removeElements(body, "blockquote", nil)
	body = removeElements(body, "span", func(open string) bool {
		return strings.Contains(open, "bbc-spoiler")
	})
	body = lineBreakRegexp.ReplaceAllString(body, "\n")
	body = html.UnescapeString(stripTags.Sanitize(body))
	body = bracketRegexp.ReplaceAllString(body, "")
	body = strings.TrimSpace(body)

	if !multiline {
		if i := strings.IndexAny(body, "\r\n"); i != -1 {
			body = body[:i]
		}
	}
	if utf8.RuneCountInString(body) > maxLen {
		body = string([]rune(body)[:maxLen-1]) + "…"
	}
	if body == "" {
		body = "No text"
	}
	return html.EscapeString(strings.TrimSpace(body))
}

// Remove all elements named tag including their nested content. If match is
// not nil, only elements, whose opening tag satisfies it, are removed.
func removeElements(s, tag string, match func(open string) bool) string {
	if !strings.Contains(s, "<"+tag) {
		return s
	}

	var (
		b          strings.Builder
		last       int
		depth      int
		blockStart int
	)
	for _, m := range tagRegexp.FindAllStringSubmatchIndex(s, -1) {
		if !strings.EqualFold(s[m[4]:m[5]], tag) {
			continue
		}
		closing := m[3] > m[2]
		switch {
		case depth == 0 && !closing:
			if match == nil || match(s[m[0]:m[1]]) {
				depth = 1
				blockStart = m[0]
			}
		case depth > 0 && !closing:
			depth++
		case depth > 0 && closing:
			depth--
			if depth == 0 {
				b.WriteString(s[last:blockStart])
				last = m[1]
			}
		}
	}
	if depth > 0 {
		// Unterminated element swallows the rest of the body
		b.WriteString(s[last:blockStart])
		return b.String()
	}
	b.WriteString(s[last:])
	return b.String()
}
