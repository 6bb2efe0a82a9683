package db

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/bakape/forum/common"
)

// Write a notification for recipient about an action of actor. Users are
// never notified of their own actions.
func notify(tx *sql.Tx, message uint64, recipient, actor string,
	typ common.NotificationType, t int64,
) (err error) {
	if recipient == "" || recipient == actor {
		return
	}
	_, err = sq.Insert("notifications").
		Columns("message_id", "user_id", "target_user_id", "type", "time",
			"unread").
		Values(message, recipient, actor, int(typ), t, true).
		RunWith(tx).
		Exec()
	return
}

// GetNotifications returns notifications of a user from newest to oldest
func GetNotifications(ctx context.Context, user string, unreadOnly bool) (
	n []common.Notification, err error,
) {
	q := sq.Select("id", "message_id", "user_id", "target_user_id", "type",
		"time", "unread").
		From("notifications").
		Where("user_id = ?", user).
		OrderBy("id desc")
	if unreadOnly {
		q = q.Where(squirrel.Eq{"unread": true})
	}
	rows, err := q.QueryContext(ctx)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r   common.Notification
			typ uint8
		)
		err = rows.Scan(&r.ID, &r.MessageID, &r.UserID, &r.TargetUserID, &typ,
			&r.Time, &r.Unread)
		if err != nil {
			return
		}
		r.Type = common.NotificationType(typ)
		n = append(n, r)
	}
	err = rows.Err()
	return
}

// MarkNotificationsRead marks notifications of a user as read. If no IDs are
// passed, all of the user's notifications are marked.
func MarkNotificationsRead(ctx context.Context, user string, ids ...uint64,
) (err error) {
	q := sq.Update("notifications").
		Set("unread", false).
		Where("user_id = ?", user)
	if len(ids) != 0 {
		q = q.Where(squirrel.Eq{"id": ids})
	}
	_, err = q.ExecContext(ctx)
	return
}
