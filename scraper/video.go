package scraper

import (
	"fmt"
	"html"
	"regexp"
)

// Video hosting sites, that support embedding players
var videoHosts = [...]struct {
	pattern *regexp.Regexp
	iframe  string
}{
	{
		regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?(?:youtube\.com/watch\?[^?]*v=|youtu\.be/)([\w\-]+)`),
		"<iframe type='text/html' title='YouTube video player' class='youtubePlayer' src='https://www.youtube.com/embed/%s' frameborder='0' allowfullscreen='1'></iframe>",
	},
	{
		regexp.MustCompile(`^(?:https?://)?(?:www\.)?bitchute\.com/(?:video|embed)/([\w\-]+)`),
		"<iframe type='text/html' title='BitChute video player' class='bitchutePlayer' src='https://www.bitchute.com/embed/%s/' frameborder='0' allowfullscreen='1'></iframe>",
	},
}

var directVideoRegexp = regexp.MustCompile(`^(https?://\S+)\.(?:gifv|webm|mp4)$`)

// IsVideoHost returns, if url points to a supported video hosting page
func IsVideoHost(url string) bool {
	_, ok := VideoHostPlayer(url)
	return ok
}

// VideoHostPlayer returns the embeddable player HTML for a video hosting page
// URL
func VideoHostPlayer(url string) (string, bool) {
	for _, h := range videoHosts {
		m := h.pattern.FindStringSubmatch(url)
		if m != nil {
			return fmt.Sprintf(h.iframe, m[1]), true
		}
	}
	return "", false
}

// DirectVideoPlayer returns an inline video element for URLs to video files
func DirectVideoPlayer(url string) (string, bool) {
	m := directVideoRegexp.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	base := html.EscapeString(m[1])
	return fmt.Sprintf(
		"<video autoplay loop><source src='%s.webm' type='video/webm' /><source src='%s.mp4' type='video/mp4' /></video>",
		base, base,
	), true
}
