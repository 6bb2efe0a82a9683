package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/bakape/forum/common"
)

// ToggleThought adds a smiley reaction of a user to a message or removes it,
// if it already exists. Returns, if the thought was added.
func ToggleThought(ctx context.Context, t common.MessageThought) (added bool,
	err error,
) {
	err = InTransaction(ctx, func(tx *sql.Tx) (err error) {
		m, err := getMessage(tx, t.MessageID)
		if err != nil {
			return
		}
		var exists bool
		err = sq.Select("1").
			From("smileys").
			Where("id = ?", t.SmileyID).
			RunWith(tx).
			QueryRow().
			Scan(&exists)
		switch err {
		case nil:
		case sql.ErrNoRows:
			return common.ErrNotFound("smiley", t.SmileyID)
		default:
			return
		}

		key := map[string]interface{}{
			"message_id": t.MessageID,
			"smiley_id":  t.SmileyID,
			"user_id":    t.UserID,
		}
		res, err := sq.Delete("message_thoughts").
			Where(key).
			RunWith(tx).
			Exec()
		if err != nil {
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			return
		}

		if n != 0 {
			_, err = sq.Delete("notifications").
				Where(map[string]interface{}{
					"message_id":     t.MessageID,
					"target_user_id": t.UserID,
					"type":           int(common.Thought),
				}).
				RunWith(tx).
				Exec()
			return
		}

		added = true
		_, err = sq.Insert("message_thoughts").
			SetMap(key).
			RunWith(tx).
			Exec()
		if err != nil {
			return
		}
		return notify(tx, m.ID, m.PostedByID, t.UserID, common.Thought,
			time.Now().Unix())
	})
	return
}

// GetThoughts returns all thoughts on a message
func GetThoughts(ctx context.Context, message uint64) (
	t []common.MessageThought, err error,
) {
	rows, err := sq.Select("message_id", "smiley_id", "user_id").
		From("message_thoughts").
		Where("message_id = ?", message).
		OrderBy("smiley_id", "user_id").
		QueryContext(ctx)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var r common.MessageThought
		err = rows.Scan(&r.MessageID, &r.SmileyID, &r.UserID)
		if err != nil {
			return
		}
		t = append(t, r)
	}
	err = rows.Err()
	return
}
