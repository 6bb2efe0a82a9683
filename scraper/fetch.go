// Package scraper retrieves metadata and favicons of remote web pages
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bakape/forum/config"
	"golang.org/x/time/rate"
)

const maxRedirects = 5

// Fetcher downloads remote resources
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetchError is a transient remote fetch failure. Never propagated past this
// package's callers.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPFetcher is a rate limited HTTP Fetcher with bounded response sizes
type HTTPFetcher struct {
	Client    *http.Client
	Limiter   *rate.Limiter
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

// NewFetcher creates an HTTPFetcher from the instance configuration
func NewFetcher() *HTTPFetcher {
	conf := config.Server
	limit := rate.Inf
	if conf.FetchRate > 0 {
		limit = rate.Limit(conf.FetchRate)
	}
	return &HTTPFetcher{
		Client: &http.Client{
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		Limiter:   rate.NewLimiter(limit, 1),
		Timeout:   conf.FetchTimeout,
		MaxBytes:  conf.MaxPageSize,
		UserAgent: conf.UserAgent,
	}
}

// Fetch a remote resource. The response body is truncated to f.MaxBytes.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (buf []byte, err error) {
	start := time.Now()
	defer func() {
		fetchDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			fetchCounter.WithLabelValues("error").Inc()
			err = &FetchError{URL: url, Err: err}
		} else {
			fetchCounter.WithLabelValues("ok").Inc()
		}
	}()

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	if f.Limiter != nil {
		err = f.Limiter.Wait(ctx)
		if err != nil {
			return
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status: %d", res.StatusCode)
		return
	}

	var r io.Reader = res.Body
	if f.MaxBytes > 0 {
		r = io.LimitReader(r, f.MaxBytes)
	}
	return io.ReadAll(r)
}
