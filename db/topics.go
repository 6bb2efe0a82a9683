package db

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/bakape/forum/common"
)

// CountTopics returns the number of topic root messages
func CountTopics(ctx context.Context) (n uint64, err error) {
	err = sq.Select("count(*)").
		From("messages").
		Where("parent_id = 0").
		QueryRowContext(ctx).
		Scan(&n)
	return
}

// GetTopicIDs returns a page of topic root IDs ordered from newest to oldest
func GetTopicIDs(ctx context.Context, offset, limit uint64) (
	ids []uint64, err error,
) {
	rows, err := sq.Select("id").
		From("messages").
		Where("parent_id = 0").
		OrderBy("id desc").
		Offset(offset).
		Limit(limit).
		QueryContext(ctx)
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

// RecountTopic recomputes the reply count and last reply of a topic from its
// replies
func RecountTopic(ctx context.Context, id uint64) error {
	return InTransaction(ctx, func(tx *sql.Tx) error {
		return recountTopic(tx, id)
	})
}

func recountTopic(tx *sql.Tx, id uint64) (err error) {
	var count uint64
	err = sq.Select("count(*)").
		From("messages").
		Where("parent_id = ?", id).
		RunWith(tx).
		QueryRow().
		Scan(&count)
	if err != nil {
		return
	}

	// Topics without replies have their own poster and time as the last reply
	var q squirrel.SelectBuilder
	if count != 0 {
		q = sq.Select("id", "posted_by_id", "time_posted").
			From("messages").
			Where("parent_id = ?", id).
			OrderBy("id desc").
			Limit(1)
	} else {
		q = sq.Select("0", "posted_by_id", "time_posted").
			From("messages").
			Where("id = ?", id)
	}
	var last common.Message
	err = q.RunWith(tx).QueryRow().Scan(&last.ID, &last.PostedByID,
		&last.TimePosted)
	switch err {
	case nil:
	case sql.ErrNoRows:
		return common.ErrNotFound("message", id)
	default:
		return
	}

	_, err = sq.Update("messages").
		Set("reply_count", count).
		Where("id = ?", id).
		RunWith(tx).
		Exec()
	if err != nil {
		return
	}
	return setLastReply(tx, id, last)
}

// RebuildTopicParticipants replaces the participants of a topic with one row
// per poster, timed at their latest message
func RebuildTopicParticipants(ctx context.Context, id uint64) error {
	return InTransaction(ctx, func(tx *sql.Tx) error {
		return rebuildParticipants(tx, id)
	})
}

func rebuildParticipants(tx *sql.Tx, id uint64) (err error) {
	rows, err := sq.Select("posted_by_id", "max(time_posted)").
		From("messages").
		Where("id = ? or parent_id = ?", id, id).
		GroupBy("posted_by_id").
		RunWith(tx).
		Query()
	if err != nil {
		return
	}
	var participants []common.Participant
	for rows.Next() {
		p := common.Participant{TopicID: id}
		err = rows.Scan(&p.UserID, &p.Time)
		if err != nil {
			rows.Close()
			return
		}
		participants = append(participants, p)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return
	}

	_, err = sq.Delete("participants").
		Where("topic_id = ?", id).
		RunWith(tx).
		Exec()
	if err != nil {
		return
	}
	if len(participants) == 0 {
		return
	}
	q := sq.Insert("participants").Columns("topic_id", "user_id", "time")
	for _, p := range participants {
		q = q.Values(p.TopicID, p.UserID, p.Time)
	}
	_, err = q.RunWith(tx).Exec()
	return
}

// GetParticipants returns the participants of a topic ordered by user ID
func GetParticipants(ctx context.Context, topic uint64) (
	p []common.Participant, err error,
) {
	rows, err := sq.Select("topic_id", "user_id", "time").
		From("participants").
		Where("topic_id = ?", topic).
		OrderBy("user_id").
		QueryContext(ctx)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var r common.Participant
		err = rows.Scan(&r.TopicID, &r.UserID, &r.Time)
		if err != nil {
			return
		}
		p = append(p, r)
	}
	err = rows.Err()
	return
}

// MessageIndex returns the position of a message inside its topic, with the
// topic root at position 0
func MessageIndex(ctx context.Context, topic, id uint64) (i uint64, err error) {
	err = sq.Select("count(*)").
		From("messages").
		Where("(id = ? or parent_id = ?) and id < ?", topic, topic, id).
		QueryRowContext(ctx).
		Scan(&i)
	return
}

func processingFilter(q squirrel.SelectBuilder, force bool,
) squirrel.SelectBuilder {
	if !force {
		q = q.Where(squirrel.Eq{"processed": false})
	}
	return q
}

// CountMessages returns the number of messages to process. If force is false,
// only unprocessed messages are counted.
func CountMessages(ctx context.Context, force bool) (n uint64, err error) {
	err = processingFilter(sq.Select("count(*)").From("messages"), force).
		QueryRowContext(ctx).
		Scan(&n)
	return
}

// GetMessagesForProcessing returns a page of messages to process ordered from
// newest to oldest
func GetMessagesForProcessing(ctx context.Context, force bool,
	offset, limit uint64,
) (msgs []common.Message, err error) {
	rows, err := processingFilter(selectMessages(), force).
		OrderBy("id desc").
		Offset(offset).
		Limit(limit).
		QueryContext(ctx)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var m common.Message
		m, err = scanMessage(rows)
		if err != nil {
			return
		}
		msgs = append(msgs, m)
	}
	err = rows.Err()
	return
}

// UpdateMessageBody writes a reprocessed body and marks the message as
// processed
func UpdateMessageBody(ctx context.Context, id uint64, body common.MessageBody,
) (err error) {
	_, err = sq.Update("messages").
		SetMap(bodyColumns(body)).
		Set("processed", true).
		Where("id = ?", id).
		ExecContext(ctx)
	return
}

// MarkProcessed marks a message as processed without changing its body
func MarkProcessed(ctx context.Context, id uint64) (err error) {
	_, err = sq.Update("messages").
		Set("processed", true).
		Where("id = ?", id).
		ExecContext(ctx)
	return
}
