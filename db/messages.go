package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/bakape/forum/common"
)

// NewMessage is a processed message ready to be written to the database
type NewMessage struct {
	common.ProcessedMessage

	// ID of the posting user
	By string

	// Message being replied to. 0 starts a new topic.
	ReplyTo uint64

	// Boards to list a new topic on
	Boards []uint64
}

var messageColumns = []string{
	"id", "parent_id", "reply_id", "last_reply_id", "reply_count",
	"time_posted", "time_edited", "last_reply_posted",
	"posted_by_id", "edited_by_id", "last_reply_by_id", "processed",
	"original_body", "display_body", "short_preview", "long_preview", "cards",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(r rowScanner) (m common.Message, err error) {
	err = r.Scan(
		&m.ID, &m.ParentID, &m.ReplyID, &m.LastReplyID, &m.ReplyCount,
		&m.TimePosted, &m.TimeEdited, &m.LastReplyPosted,
		&m.PostedByID, &m.EditedByID, &m.LastReplyByID, &m.Processed,
		&m.OriginalBody, &m.DisplayBody, &m.ShortPreview, &m.LongPreview,
		&m.Cards,
	)
	return
}

func selectMessages() squirrel.SelectBuilder {
	return sq.Select(messageColumns...).From("messages")
}

// GetMessage retrieves a message by ID
func GetMessage(ctx context.Context, id uint64) (m common.Message, err error) {
	m, err = scanMessage(selectMessages().
		Where("id = ?", id).
		QueryRowContext(ctx))
	if err == sql.ErrNoRows {
		err = common.ErrNotFound("message", id)
	}
	return
}

func getMessage(tx *sql.Tx, id uint64) (m common.Message, err error) {
	m, err = scanMessage(selectMessages().
		Where("id = ?", id).
		RunWith(tx).
		QueryRow())
	if err == sql.ErrNoRows {
		err = common.ErrNotFound("message", id)
	}
	return
}

// CreateMessage writes a new message and applies all thread bookkeeping side
// effects in a single transaction
func CreateMessage(ctx context.Context, m NewMessage) (msg common.Message,
	err error,
) {
	err = InTransaction(ctx, func(tx *sql.Tx) (err error) {
		msg, err = createMessage(tx, m)
		return
	})
	return
}

func createMessage(tx *sql.Tx, m NewMessage) (msg common.Message, err error) {
	now := time.Now().Unix()
	msg = common.Message{
		MessageBody:     m.MessageBody,
		Processed:       true,
		TimePosted:      now,
		TimeEdited:      now,
		LastReplyPosted: now,
		PostedByID:      m.By,
		EditedByID:      m.By,
		LastReplyByID:   m.By,
	}

	// Replies to replies are attached to the topic root and keep a reference
	// to the quoted reply
	var target, root *common.Message
	if m.ReplyTo != 0 {
		var t common.Message
		t, err = getMessage(tx, m.ReplyTo)
		if err != nil {
			return
		}
		if t.ParentID == 0 {
			msg.ParentID = t.ID
			root = &t
		} else {
			msg.ParentID = t.ParentID
			msg.ReplyID = t.ID
			target = &t

			var r common.Message
			r, err = getMessage(tx, t.ParentID)
			if err != nil {
				return
			}
			root = &r
		}
	}

	err = sq.Insert("messages").
		Columns(
			"parent_id", "reply_id", "last_reply_id", "reply_count",
			"time_posted", "time_edited", "last_reply_posted",
			"posted_by_id", "edited_by_id", "last_reply_by_id", "processed",
			"original_body", "display_body", "short_preview", "long_preview",
			"cards",
		).
		Values(
			msg.ParentID, msg.ReplyID, 0, 0,
			msg.TimePosted, msg.TimeEdited, msg.LastReplyPosted,
			msg.PostedByID, msg.EditedByID, msg.LastReplyByID, msg.Processed,
			msg.OriginalBody, msg.DisplayBody, msg.ShortPreview,
			msg.LongPreview, msg.Cards,
		).
		Suffix("returning id").
		RunWith(tx).
		QueryRow().
		Scan(&msg.ID)
	if err != nil {
		return
	}

	if target != nil {
		err = setLastReply(tx, target.ID, msg)
		if err != nil {
			return
		}
		err = notify(tx, msg.ID, target.PostedByID, m.By, common.Quote, now)
		if err != nil {
			return
		}
	}

	if root != nil {
		_, err = sq.Update("messages").
			Set("reply_count", squirrel.Expr("reply_count + 1")).
			Where("id = ?", root.ID).
			RunWith(tx).
			Exec()
		if err != nil {
			return
		}
		err = setLastReply(tx, root.ID, msg)
		if err != nil {
			return
		}
		if target == nil || target.ID != root.ID {
			err = notify(tx, msg.ID, root.PostedByID, m.By, common.Reply, now)
			if err != nil {
				return
			}
		}
	}

	for _, u := range m.MentionedUsers {
		err = notify(tx, msg.ID, u, m.By, common.Mention, now)
		if err != nil {
			return
		}
	}

	if msg.ParentID == 0 {
		err = linkBoards(tx, msg.ID, m.Boards)
		if err != nil {
			return
		}
	}

	err = upsertParticipant(tx, msg.TopicID(), m.By, now)
	return
}

// Point the last reply fields of a message at reply
func setLastReply(tx *sql.Tx, id uint64, reply common.Message) (err error) {
	_, err = sq.Update("messages").
		SetMap(map[string]interface{}{
			"last_reply_id":     reply.ID,
			"last_reply_by_id":  reply.PostedByID,
			"last_reply_posted": reply.TimePosted,
		}).
		Where("id = ?", id).
		RunWith(tx).
		Exec()
	return
}

// Insert a participant or bump the time of their latest participation
func upsertParticipant(tx *sql.Tx, topic uint64, user string, t int64,
) (err error) {
	_, err = sq.Insert("participants").
		Columns("topic_id", "user_id", "time").
		Values(topic, user, t).
		Suffix("on conflict (topic_id, user_id) do update set time = excluded.time").
		RunWith(tx).
		Exec()
	return
}

// UpdateMessage replaces the body of a message edited by a user. Only the
// author or an admin may edit a message.
func UpdateMessage(ctx context.Context, id uint64, by common.User,
	body common.MessageBody,
) (msg common.Message, err error) {
	err = InTransaction(ctx, func(tx *sql.Tx) (err error) {
		msg, err = getMessage(tx, id)
		if err != nil {
			return
		}
		if !canModify(msg, by) {
			return common.ErrNoPermissions
		}

		msg.MessageBody = body
		msg.TimeEdited = time.Now().Unix()
		msg.EditedByID = by.ID
		msg.Processed = true
		_, err = sq.Update("messages").
			SetMap(bodyColumns(body)).
			Set("time_edited", msg.TimeEdited).
			Set("edited_by_id", msg.EditedByID).
			Set("processed", true).
			Where("id = ?", id).
			RunWith(tx).
			Exec()
		return
	})
	return
}

func canModify(m common.Message, by common.User) bool {
	return by.Admin || (by.ID != "" && m.PostedByID == by.ID)
}

func bodyColumns(b common.MessageBody) map[string]interface{} {
	return map[string]interface{}{
		"original_body": b.OriginalBody,
		"display_body":  b.DisplayBody,
		"short_preview": b.ShortPreview,
		"long_preview":  b.LongPreview,
		"cards":         b.Cards,
	}
}

// DeleteMessage deletes a message with all its thoughts, board links,
// notifications and, for topics, all replies. Replies quoting a deleted reply
// have the deleted body prepended as a quote and are queued for reprocessing.
// The parent topic is recounted afterwards.
func DeleteMessage(ctx context.Context, id uint64, by common.User) error {
	return InTransaction(ctx, func(tx *sql.Tx) (err error) {
		m, err := getMessage(tx, id)
		if err != nil {
			return
		}
		if !canModify(m, by) {
			return common.ErrNoPermissions
		}

		ids := []uint64{id}
		if m.ParentID == 0 {
			var replies []uint64
			replies, err = queryIDs(tx,
				sq.Select("id").From("messages").Where("parent_id = ?", id))
			if err != nil {
				return
			}
			ids = append(ids, replies...)
		} else {
			err = annotateQuotes(tx, m, by)
			if err != nil {
				return
			}
		}

		for _, q := range [...]squirrel.DeleteBuilder{
			sq.Delete("message_thoughts").Where(squirrel.Eq{"message_id": ids}),
			sq.Delete("message_boards").Where(squirrel.Eq{"message_id": ids}),
			sq.Delete("notifications").Where(squirrel.Eq{"message_id": ids}),
			sq.Delete("messages").Where(squirrel.Eq{"id": ids}),
		} {
			_, err = q.RunWith(tx).Exec()
			if err != nil {
				return
			}
		}

		if m.ParentID == 0 {
			_, err = sq.Delete("participants").
				Where("topic_id = ?", id).
				RunWith(tx).
				Exec()
			return
		}
		err = recountTopic(tx, m.ParentID)
		if err != nil {
			return
		}
		return rebuildParticipants(tx, m.ParentID)
	})
}

// Prepend the body of a deleted reply to all replies quoting it
func annotateQuotes(tx *sql.Tx, deleted common.Message, by common.User,
) (err error) {
	rows, err := sq.Select("id", "original_body").
		From("messages").
		Where("reply_id = ?", deleted.ID).
		RunWith(tx).
		Query()
	if err != nil {
		return
	}
	type quoting struct {
		id   uint64
		body string
	}
	var replies []quoting
	for rows.Next() {
		var q quoting
		err = rows.Scan(&q.id, &q.body)
		if err != nil {
			rows.Close()
			return
		}
		replies = append(replies, q)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return
	}

	prefix := fmt.Sprintf(
		"[quote]%s\nMessage deleted by %s on %s[/quote]",
		deleted.OriginalBody,
		by.DisplayName,
		time.Now().Format("January 02, 2006"),
	)
	for _, r := range replies {
		_, err = sq.Update("messages").
			SetMap(map[string]interface{}{
				"original_body": prefix + r.body,
				"reply_id":      0,
				"processed":     false,
			}).
			Where("id = ?", r.id).
			RunWith(tx).
			Exec()
		if err != nil {
			return
		}
	}
	return
}

// Run a query returning a single column of IDs
func queryIDs(tx *sql.Tx, q squirrel.SelectBuilder) (ids []uint64, err error) {
	rows, err := q.RunWith(tx).Query()
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var id uint64
		err = rows.Scan(&id)
		if err != nil {
			return
		}
		ids = append(ids, id)
	}
	err = rows.Err()
	return
}
