package scraper

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bakape/forum/common"
	"github.com/bakape/forum/config"
	"github.com/go-playground/log"
)

var (
	errInvalidScheme = errors.New("unsupported URL scheme")
	errEmptyPage     = errors.New("empty page")
)

// Scraper retrieves readable details of remote pages
type Scraper struct {
	Fetcher  Fetcher
	Favicons *FaviconCache

	// Optional. Nil disables caching.
	Cache DetailsCache
}

// New creates a Scraper, that stores favicons in store and optionally caches
// results
func New(f Fetcher, store common.ImageStore, cache DetailsCache) *Scraper {
	return &Scraper{
		Fetcher: f,
		Favicons: &FaviconCache{
			Fetcher: f,
			Store:   store,
		},
		Cache: cache,
	}
}

// PageDetails returns the title, stored favicon and link card of a remote
// page. Never fails. On errors the URL is used as the title. Only successful
// page reads are cached.
func (s *Scraper) PageDetails(ctx context.Context, rawURL string,
) (d common.RemotePageDetails) {
	d.Title = rawURL
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		return
	}

	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, rawURL); ok {
			cacheCounter.WithLabelValues("hit").Inc()
			return cached
		}
		cacheCounter.WithLabelValues("miss").Inc()
	}

	domain := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	origin := u.Scheme + "://" + u.Host
	page := origin + u.EscapedPath()

	d.Favicon = s.Favicons.Cache(ctx, domain, page, origin+"/favicon.ico")
	doc, err := s.fetchDocument(ctx, u)
	if err != nil {
		log.WithFields(log.F("url", rawURL)).Warnf("page details: %s", err)
		return
	}
	if IsVideoHost(rawURL) {
		s.videoDetails(ctx, doc, domain, page, &d)
	} else {
		s.pageDetails(ctx, doc, u, domain, page, origin, &d)
	}
	d.Title = cleanTitle(domain, d.Title)

	if s.Cache != nil {
		s.Cache.Set(ctx, rawURL, d)
	}
	return
}

// Fetch and parse a page without its #fragment
func (s *Scraper) fetchDocument(ctx context.Context, u *url.URL,
) (doc *goquery.Document, err error) {
	withoutHash := *u
	withoutHash.Fragment = ""
	withoutHash.RawFragment = ""

	buf, err := s.Fetcher.Fetch(ctx, withoutHash.String())
	if err != nil {
		return
	}
	if len(buf) == 0 {
		return nil, errEmptyPage
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(buf))
}

// Read details of a video hosting page. Their players need script execution
// and only the title and icon are of use.
func (s *Scraper) videoDetails(ctx context.Context, doc *goquery.Document,
	domain, page string, d *common.RemotePageDetails,
) {
	if t := og(doc, "title"); t != "" {
		d.Title = t
	} else if t := docTitle(doc); t != "" {
		d.Title = t
	}
	s.iconLink(ctx, doc, domain, page, d)
}

func (s *Scraper) pageDetails(ctx context.Context, doc *goquery.Document,
	u *url.URL, domain, page, origin string, d *common.RemotePageDetails,
) {
	if t := docTitle(doc); t != "" {
		d.Title = t
	}
	s.iconLink(ctx, doc, domain, page, d)

	title := og(doc, "title")
	if title == "" {
		return
	}
	d.Title = title
	if desc := og(doc, "description"); desc != "" {
		d.Card = buildCard(u.String(), origin, cleanTitle(domain, title),
			og(doc, "site_name"), og(doc, "image"), desc)
	}
}

// Store the icon linked from the page, if no favicon is stored yet
func (s *Scraper) iconLink(ctx context.Context, doc *goquery.Document,
	domain, page string, d *common.RemotePageDetails,
) {
	for _, sel := range [...]string{
		"link[rel='shortcut icon']",
		"link[rel='icon']",
	} {
		if d.Favicon != "" {
			return
		}
		href, ok := doc.Find(sel).First().Attr("href")
		if ok && strings.TrimSpace(href) != "" {
			d.Favicon = s.Favicons.Cache(ctx, domain, page, href)
		}
	}
}

func docTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// Read an OpenGraph property
func og(doc *goquery.Document, prop string) string {
	return strings.TrimSpace(
		doc.Find("meta[property='og:" + prop + "']").First().AttrOr("content", ""),
	)
}

// Apply per-domain title truncation rules
func cleanTitle(domain, title string) string {
	sep := config.Get().TitleSeparators[domain]
	if sep == "" {
		return title
	}
	if i := strings.Index(title, sep); i > 0 {
		return title[:i]
	}
	return title
}
