// Package markup renders BBCode message bodies into HTML
package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/frustra/bbcode"
)

var (
	tagRegexp = regexp.MustCompile(`\[(/?)([a-zA-Z]+|\*)(?:=[^\]]*)?\]`)
	brRegexp  = regexp.MustCompile(`<br\s*/?>`)

	// Tags understood by the renderer. Only these participate in balance
	// checks. Unknown bracketed text is left as is.
	knownTags = map[string]bool{
		"b":       true,
		"i":       true,
		"u":       true,
		"s":       true,
		"url":     true,
		"img":     true,
		"center":  true,
		"color":   true,
		"size":    true,
		"quote":   true,
		"code":    true,
		"spoiler": true,
	}
)

// SyntaxError is returned for unbalanced markup
type SyntaxError struct {
	Tag    string
	Offset int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("markup: %s tag [%s] at offset %d", e.Reason, e.Tag, e.Offset)
}

// Parser converts BBCode to HTML. Safe for concurrent use after creation.
type Parser struct {
	compiler bbcode.Compiler
}

// New creates a parser with the forum's tag set
func New() *Parser {
	p := &Parser{
		compiler: bbcode.NewCompiler(true, true),
	}
	p.compiler.SetTag("spoiler", func(node *bbcode.BBCodeNode) (*bbcode.HTMLTag, bool) {
		out := bbcode.NewHTMLTag("")
		out.Name = "span"
		out.Attrs["class"] = "bbc-spoiler"
		return out, true
	})
	return p
}

// ToHTML validates and renders a BBCode string. Line breaks are rendered as
// "<br>" followed by a newline.
func (p *Parser) ToHTML(src string) (string, error) {
	if err := Validate(src); err != nil {
		return "", err
	}
	out := p.compiler.Compile(src)
	return brRegexp.ReplaceAllString(out, "<br>\n"), nil
}

// Validate checks, that every known tag is properly opened and closed. The
// contents of [code] blocks are not inspected.
func Validate(src string) error {
	type open struct {
		tag    string
		offset int
	}
	var (
		stack  []open
		inCode bool
	)

	for _, m := range tagRegexp.FindAllStringSubmatchIndex(src, -1) {
		closing := m[3] > m[2]
		tag := strings.ToLower(src[m[4]:m[5]])
		if !knownTags[tag] {
			continue
		}
		if inCode {
			if closing && tag == "code" {
				inCode = false
				stack = stack[:len(stack)-1]
			}
			continue
		}

		if !closing {
			stack = append(stack, open{tag, m[0]})
			if tag == "code" {
				inCode = true
			}
			continue
		}

		if len(stack) == 0 || stack[len(stack)-1].tag != tag {
			return &SyntaxError{
				Tag:    tag,
				Offset: m[0],
				Reason: "unmatched closing",
			}
		}
		stack = stack[:len(stack)-1]
	}

	if len(stack) != 0 {
		o := stack[len(stack)-1]
		return &SyntaxError{
			Tag:    o.tag,
			Offset: o.offset,
			Reason: "unclosed",
		}
	}
	return nil
}
