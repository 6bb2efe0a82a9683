package parser

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/bakape/forum/common"
	"github.com/bakape/forum/scraper"
)

var urlRegexp = regexp.MustCompile(`(?m)(^| )(https?://[^\s<]+)`)

// PageDetailer retrieves readable metadata of remote pages. Must never fail:
// on any error the URL itself is used as the title.
type PageDetailer interface {
	PageDetails(ctx context.Context, url string) common.RemotePageDetails
}

// EnrichLinks replaces up to common.MaxURLMatches bare URLs in body with
// anchors and returns the rewritten body and the concatenated cards of all
// processed URLs
func EnrichLinks(ctx context.Context, body string, pages PageDetailer) (
	string, string,
) {
	matches := urlRegexp.FindAllStringSubmatchIndex(body, common.MaxURLMatches)
	if len(matches) == 0 {
		return body, ""
	}

	var (
		b     strings.Builder
		cards strings.Builder
		last  int
	)
	for _, m := range matches {
		start, end := m[4], m[5]
		rep := RemoteURLReplacement(ctx, body[start:end], pages)
		b.WriteString(body[last:start])
		b.WriteString(rep.Replacement)
		cards.WriteString(rep.Card)
		last = end
	}
	b.WriteString(body[last:])
	return b.String(), cards.String()
}

// RemoteURLReplacement classifies a single URL as found in rendered HTML and
// builds its anchor and card
func RemoteURLReplacement(ctx context.Context, match string, pages PageDetailer,
) (rep common.RemoteURLReplacement) {
	rep.Match = match
	url := html.UnescapeString(match)

	var details common.RemotePageDetails
	if player, ok := scraper.DirectVideoPlayer(url); ok {
		details.Title = url
		rep.Card = `<div class="embedded-video">` + player + `</div>`
	} else {
		details = pages.PageDetails(ctx, url)
		if player, ok := scraper.VideoHostPlayer(url); ok {
			rep.Card = `<div class="embedded-video">` + player + `</div>`
		} else {
			rep.Card = details.Card
		}
	}
	if details.Title == "" {
		details.Title = url
	}

	var favicon string
	if details.Favicon != "" {
		favicon = `<img class="link-favicon" src="` +
			html.EscapeString(details.Favicon) + `" /> `
	}
	rep.Replacement = `<a target="_blank" href="` + html.EscapeString(url) +
		`">` + favicon + html.EscapeString(details.Title) + `</a>`
	return
}
