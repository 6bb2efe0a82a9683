package scraper

import (
	"html"
	"strings"
)

// Build the link card of a page with OpenGraph metadata
func buildCard(pageURL, origin, title, siteName, image, description string,
) string {
	var b strings.Builder
	href := html.EscapeString(pageURL)

	b.WriteString("<blockquote class='card pointer hover-highlight' clickable-link-parent>")
	if image != "" {
		if strings.HasPrefix(image, "/") && !strings.HasPrefix(image, "//") {
			image = origin + image
		}
		b.WriteString("<div class='card-image'><img src='")
		b.WriteString(html.EscapeString(image))
		b.WriteString("' /></div>")
	}
	b.WriteString("<div><p class='card-title'><a target='_blank' href='")
	b.WriteString(href)
	b.WriteString("'>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</a></p><p class='card-description'>")
	b.WriteString(html.EscapeString(description))
	b.WriteString("</p><p class='card-link'><a target='_blank' href='")
	b.WriteString(href)
	b.WriteString("'>[")
	if siteName != "" {
		b.WriteString(html.EscapeString(siteName))
	} else {
		b.WriteString("Direct Link")
	}
	b.WriteString("]</a></p></div><br class='clear' /></blockquote>")
	return b.String()
}
