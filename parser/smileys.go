package parser

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bakape/forum/common"
)

var placeholderRegexp = regexp.MustCompile("(\\d*)")

// PreProcessSmileys replaces each whitespace-delimited smiley code with an
// indexed placeholder, that survives markup rendering
func PreProcessSmileys(body string, smileys common.Smileys) string {
	for i := 0; i < smileys.Len(); i++ {
		code := smileys.At(i).Code
		if code == "" || !strings.Contains(body, code) {
			continue
		}
		body = replaceDelimited(body, code, placeholder(i))
	}
	return body
}

func placeholder(i int) string {
	return string(placeholderOpen) + strconv.Itoa(i) + string(placeholderClose)
}

// Replace all occurrences of code, that are preceded by the start of the
// string or whitespace and followed by the end of the string or whitespace.
// The delimiting whitespace is preserved.
func replaceDelimited(s, code, rep string) string {
	var (
		b    strings.Builder
		last int
		i    int
	)
	for {
		j := strings.Index(s[i:], code)
		if j == -1 {
			break
		}
		start := i + j
		end := start + len(code)
		if isBoundaryBefore(s, start) && isBoundaryAfter(s, end) {
			b.WriteString(s[last:start])
			b.WriteString(rep)
			last = end
			i = end
		} else {
			_, size := utf8.DecodeRuneInString(s[start:])
			i = start + size
		}
		if i >= len(s) {
			break
		}
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

func isBoundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsSpace(r)
}

func isBoundaryAfter(s string, i int) bool {
	if i == len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsSpace(r)
}

// PostProcessSmileys replaces placeholders produced by PreProcessSmileys with
// image tags. Placeholders not matching any smiley of the snapshot are
// removed.
func PostProcessSmileys(body string, smileys common.Smileys) string {
	if !strings.ContainsRune(body, placeholderOpen) {
		return body
	}
	return placeholderRegexp.ReplaceAllStringFunc(body, func(m string) string {
		i, err := strconv.Atoi(m[len(string(placeholderOpen)) : len(m)-len(string(placeholderClose))])
		if err != nil || i < 0 || i >= smileys.Len() {
			return ""
		}
		return "<img src='" + html.EscapeString(smileys.At(i).Path) + "' />"
	})
}
