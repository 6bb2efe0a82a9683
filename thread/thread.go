// Package thread processes user-submitted messages and applies them to the
// forum's topics
package thread

import (
	"context"

	"github.com/bakape/forum/common"
	"github.com/bakape/forum/db"
	"github.com/bakape/forum/parser"
)

// Service runs the message processing pipeline and persists its results
type Service struct {
	Markup parser.Markup
	Pages  parser.PageDetailer
}

// Build a pipeline for messages of actor with a fresh smiley registry snapshot
func (s *Service) processor(ctx context.Context, actor string) (
	p parser.Processor, err error,
) {
	smileys, err := db.GetSmileys(ctx)
	if err != nil {
		return
	}
	p = parser.Processor{
		Markup:  s.Markup,
		Smileys: smileys,
		Users:   db.Users{},
		Pages:   s.Pages,
		Actor:   actor,
	}
	return
}

func (s *Service) process(ctx context.Context, actor, body string) (
	m common.ProcessedMessage, err error,
) {
	p, err := s.processor(ctx, actor)
	if err != nil {
		return
	}
	return p.Process(ctx, body)
}

// CreateTopic creates a new topic listed on the passed boards
func (s *Service) CreateTopic(ctx context.Context, by common.User, body string,
	boards []uint64,
) (m common.Message, err error) {
	if _, err = parser.Normalize(body); err != nil {
		return
	}
	for _, b := range boards {
		if _, err = db.GetBoard(ctx, b); err != nil {
			return
		}
	}

	pm, err := s.process(ctx, by.ID, body)
	if err != nil {
		return
	}
	return db.CreateMessage(ctx, db.NewMessage{
		ProcessedMessage: pm,
		By:               by.ID,
		Boards:           boards,
	})
}

// CreateReply replies to a topic or to another reply
func (s *Service) CreateReply(ctx context.Context, by common.User,
	replyTo uint64, body string,
) (m common.Message, err error) {
	if replyTo == 0 {
		err = common.ErrNoReplyTarget
		return
	}
	if _, err = parser.Normalize(body); err != nil {
		return
	}
	if _, err = db.GetMessage(ctx, replyTo); err != nil {
		return
	}

	pm, err := s.process(ctx, by.ID, body)
	if err != nil {
		return
	}
	return db.CreateMessage(ctx, db.NewMessage{
		ProcessedMessage: pm,
		By:               by.ID,
		ReplyTo:          replyTo,
	})
}

// EditMessage replaces the body of a message. Mentioned users are not
// notified again.
func (s *Service) EditMessage(ctx context.Context, by common.User, id uint64,
	body string,
) (m common.Message, err error) {
	if _, err = parser.Normalize(body); err != nil {
		return
	}
	m, err = db.GetMessage(ctx, id)
	if err != nil {
		return
	}
	if !by.Admin && m.PostedByID != by.ID {
		err = common.ErrNoPermissions
		return
	}

	pm, err := s.process(ctx, m.PostedByID, body)
	if err != nil {
		return
	}
	return db.UpdateMessage(ctx, id, by, pm.MessageBody)
}

// DeleteMessage deletes a message and, for topics, all of its replies
func (s *Service) DeleteMessage(ctx context.Context, by common.User, id uint64,
) error {
	return db.DeleteMessage(ctx, id, by)
}

// AddThought toggles a smiley reaction of a user on a message. Returns, if
// the thought was added.
func (s *Service) AddThought(ctx context.Context, by common.User,
	message, smiley uint64,
) (bool, error) {
	return db.ToggleThought(ctx, common.MessageThought{
		MessageID: message,
		SmileyID:  smiley,
		UserID:    by.ID,
	})
}
