// Package parser turns raw user-submitted message bodies into rendered HTML,
// link cards, previews and mention lists
package parser

import (
	"context"

	"github.com/bakape/forum/common"
)

// Markup renders a markup language into HTML
type Markup interface {
	ToHTML(string) (string, error)
}

// Processor runs the message processing pipeline. All collaborators are
// snapshots or stateless services supplied per request.
type Processor struct {
	Markup  Markup
	Smileys common.Smileys
	Users   UserDirectory
	Pages   PageDetailer

	// ID of the user submitting the body
	Actor string
}

// Process validates and renders a raw message body
func (p Processor) Process(ctx context.Context, body string) (
	m common.ProcessedMessage, err error,
) {
	m.OriginalBody = body
	display, err := Normalize(body)
	if err != nil {
		return
	}

	display, err = p.Markup.ToHTML(PreProcessSmileys(display, p.Smileys))
	if err != nil {
		err = common.ErrInvalidField("body", err)
		return
	}
	display = PostProcessSmileys(display, p.Smileys)

	m.DisplayBody, m.Cards = EnrichLinks(ctx, display, p.Pages)
	m.MentionedUsers, err = FindMentions(ctx, m.DisplayBody, p.Actor, p.Users)
	if err != nil {
		return
	}

	PostProcess(&m)
	return
}
