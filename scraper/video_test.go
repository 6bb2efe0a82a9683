package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVideoHostPlayer(t *testing.T) {
	t.Parallel()

	cases := [...]struct {
		name, url, src string
	}{
		{"youtube", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"youtube extra params", "https://youtube.com/watch?feature=share&v=a-b_c", "https://www.youtube.com/embed/a-b_c"},
		{"youtu.be", "https://youtu.be/xyz?t=10", "https://www.youtube.com/embed/xyz"},
		{"bitchute", "https://www.bitchute.com/video/AbC123/", "https://www.bitchute.com/embed/AbC123/"},
		{"generic", "https://example.com/watch?v=1", ""},
	}

	for i := range cases {
		c := cases[i]
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			player, ok := VideoHostPlayer(c.url)
			assert.Equal(t, c.src != "", ok)
			assert.Equal(t, ok, IsVideoHost(c.url))
			if ok {
				assert.Contains(t, player, "src='"+c.src+"'")
			}
		})
	}
}

func TestDirectVideoPlayer(t *testing.T) {
	t.Parallel()

	cases := [...]struct {
		name, url, base string
	}{
		{"gifv", "https://i.example.com/a.gifv", "https://i.example.com/a"},
		{"webm", "http://x.com/v/clip.webm", "http://x.com/v/clip"},
		{"mp4", "http://x.com/clip.mp4", "http://x.com/clip"},
		{"image", "http://x.com/clip.png", ""},
		{"query after extension", "http://x.com/clip.mp4?x=1", ""},
	}

	for i := range cases {
		c := cases[i]
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			player, ok := DirectVideoPlayer(c.url)
			assert.Equal(t, c.base != "", ok)
			if ok {
				assert.Equal(
					t,
					"<video autoplay loop><source src='"+c.base+".webm' type='video/webm' />"+
						"<source src='"+c.base+".mp4' type='video/mp4' /></video>",
					player,
				)
			}
		})
	}
}
