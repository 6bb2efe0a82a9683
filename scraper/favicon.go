package scraper

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/bakape/forum/common"
	"github.com/bakape/forum/config"
	"github.com/go-playground/log"
)

// FaviconCache downloads site icons and persists them in an image store
type FaviconCache struct {
	Fetcher Fetcher
	Store   common.ImageStore
}

// Cache downloads the favicon at path, resolved against pageURL, and stores
// it under the domain's name. Returns the stored path or "" on any failure.
func (c *FaviconCache) Cache(ctx context.Context, domain, pageURL, path string,
) string {
	u, err := resolveURL(pageURL, path)
	if err != nil {
		return ""
	}

	buf, err := c.Fetcher.Fetch(ctx, u)
	if err != nil {
		log.WithFields(log.F("domain", domain)).Debugf("favicon: %s", err)
		return ""
	}
	if len(buf) == 0 {
		return ""
	}

	stored, err := c.Store.Store(ctx, common.FaviconContainer, domain,
		bytes.NewReader(buf), config.Get().FaviconSize, true)
	if err != nil {
		log.WithFields(log.F("domain", domain)).Warnf("favicon: %s", err)
		return ""
	}
	return stored
}

// Resolve a possibly relative reference against base. Only HTTP(S) results
// are accepted.
func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	abs := b.ResolveReference(r)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", errInvalidScheme
	}
	return abs.String(), nil
}
