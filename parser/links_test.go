package parser

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bakape/forum/common"
	. "github.com/bakape/forum/test"
)

func TestEnrichLinks(t *testing.T) {
	t.Parallel()

	pages := &fakePages{
		details: map[string]common.RemotePageDetails{
			"http://example.com": {
				Title:   "Example Domain",
				Favicon: "/images/favicons/example.com.png",
				Card:    "<blockquote class='card'>example</blockquote>",
			},
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ": {
				Title: "Never Gonna",
			},
			"http://x.com/?a=1&b=2": {
				Title: "<b>bold</b>",
			},
		},
	}

	cases := [...]struct {
		name, in, out, cards string
	}{
		{
			name: "generic",
			in:   "see http://example.com",
			out: `see <a target="_blank" href="http://example.com">` +
				`<img class="link-favicon" src="/images/favicons/example.com.png" /> ` +
				`Example Domain</a>`,
			cards: "<blockquote class='card'>example</blockquote>",
		},
		{
			name: "video hosting",
			in:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			out: `<a target="_blank" href="https://www.youtube.com/watch?v=dQw4w9WgXcQ">` +
				`Never Gonna</a>`,
			cards: `<div class="embedded-video"><iframe type='text/html' ` +
				`title='YouTube video player' class='youtubePlayer' ` +
				`src='https://www.youtube.com/embed/dQw4w9WgXcQ' frameborder='0' ` +
				`allowfullscreen='1'></iframe></div>`,
		},
		{
			name: "direct video",
			in:   "look http://cdn.example.com/cat.gifv",
			out: `look <a target="_blank" href="http://cdn.example.com/cat.gifv">` +
				`http://cdn.example.com/cat.gifv</a>`,
			cards: `<div class="embedded-video"><video autoplay loop>` +
				`<source src='http://cdn.example.com/cat.webm' type='video/webm' />` +
				`<source src='http://cdn.example.com/cat.mp4' type='video/mp4' />` +
				`</video></div>`,
		},
		{
			name: "escaped entities and title",
			in:   "http://x.com/?a=1&amp;b=2",
			out: `<a target="_blank" href="http://x.com/?a=1&amp;b=2">` +
				`&lt;b&gt;bold&lt;/b&gt;</a>`,
		},
		{
			name: "fetch failure",
			in:   "http://down.example.com/page",
			out: `<a target="_blank" href="http://down.example.com/page">` +
				`http://down.example.com/page</a>`,
		},
		{
			name: "not preceded by space",
			in:   "x:http://example.com",
			out:  "x:http://example.com",
		},
		{
			name: "line start",
			in:   "a<br>\nhttp://down.example.com<br>\nb",
			out: "a<br>\n" +
				`<a target="_blank" href="http://down.example.com">` +
				"http://down.example.com</a><br>\nb",
		},
	}

	for i := range cases {
		c := cases[i]
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			body, cards := EnrichLinks(context.Background(), c.in, pages)
			AssertEquals(t, body, c.out)
			AssertEquals(t, cards, c.cards)
		})
	}
}

func TestEnrichLinksBounded(t *testing.T) {
	t.Parallel()

	urls := make([]string, 25)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://site%d.example.com", i)
	}
	pages := &fakePages{}

	body, _ := EnrichLinks(context.Background(), strings.Join(urls, " "), pages)
	AssertEquals(t, len(pages.fetched), common.MaxURLMatches)
	AssertEquals(t, strings.Count(body, "<a "), common.MaxURLMatches)
	for i, u := range urls {
		anchored := strings.Contains(body, `href="`+u+`"`)
		AssertEquals(t, anchored, i < common.MaxURLMatches)
	}
	if !strings.HasSuffix(body, " "+urls[24]) {
		t.Fatal("unprocessed URLs must stay untouched")
	}
}

func TestEnrichLinksRepeatedURL(t *testing.T) {
	t.Parallel()

	pages := &fakePages{
		details: map[string]common.RemotePageDetails{
			"http://a.com": {Title: "A"},
		},
	}
	body, _ := EnrichLinks(context.Background(), "http://a.com and http://a.com", pages)
	AssertEquals(
		t,
		body,
		`<a target="_blank" href="http://a.com">A</a> and `+
			`<a target="_blank" href="http://a.com">A</a>`,
	)
	AssertEquals(t, len(pages.fetched), 2)
}

func TestEnrichLinksCardOrder(t *testing.T) {
	t.Parallel()

	pages := &fakePages{
		details: map[string]common.RemotePageDetails{
			"http://a.com": {Card: "[a]"},
			"http://b.com": {Card: "[b]"},
		},
	}
	_, cards := EnrichLinks(context.Background(), "http://b.com http://a.com", pages)
	AssertEquals(t, cards, "[b][a]")
}
