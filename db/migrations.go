package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bakape/forum/common"
	"github.com/go-playground/log"
)

var version = len(migrations)

var migrations = []func(*sql.Tx) error{
	func(tx *sql.Tx) (err error) {
		// Initialize DB
		return execAll(tx,
			`create table accounts (
				id varchar(50) primary key,
				user_name varchar(100) not null,
				display_name varchar(100) not null,
				admin boolean not null default false
			)`,
			`create index accounts_display_name on accounts (lower(display_name))`,
			fmt.Sprintf(
				`create table boards (
					id %s,
					name varchar(100) not null,
					description text not null default ''
				)`,
				idType(),
			),
			fmt.Sprintf(
				`create table messages (
					id %s,
					parent_id bigint not null default 0,
					reply_id bigint not null default 0,
					last_reply_id bigint not null default 0,
					reply_count bigint not null default 0,
					time_posted bigint not null,
					time_edited bigint not null,
					last_reply_posted bigint not null,
					posted_by_id varchar(50) not null,
					edited_by_id varchar(50) not null,
					last_reply_by_id varchar(50) not null,
					processed boolean not null default true,
					original_body text not null,
					display_body text not null,
					short_preview text not null,
					long_preview text not null,
					cards text not null
				)`,
				idType(),
			),
			`create index messages_parent_id on messages (parent_id)`,
			`create index messages_reply_id on messages (reply_id)`,
			`create index messages_processed on messages (processed)`,
			`create table message_boards (
				message_id bigint not null,
				board_id bigint not null,
				primary key (message_id, board_id)
			)`,
			fmt.Sprintf(
				`create table smileys (
					id %s,
					code varchar(100) not null,
					path text not null,
					thought text not null default ''
				)`,
				idType(),
			),
			`create table message_thoughts (
				message_id bigint not null,
				smiley_id bigint not null,
				user_id varchar(50) not null,
				primary key (message_id, smiley_id, user_id)
			)`,
			fmt.Sprintf(
				`create table notifications (
					id %s,
					message_id bigint not null,
					user_id varchar(50) not null,
					target_user_id varchar(50) not null,
					type smallint not null,
					time bigint not null,
					unread boolean not null default true
				)`,
				idType(),
			),
			`create index notifications_user_id on notifications (user_id)`,
			`create index notifications_message_id on notifications (message_id)`,
			`create table participants (
				topic_id bigint not null,
				user_id varchar(50) not null,
				time bigint not null,
				primary key (topic_id, user_id)
			)`,
		)
	},
}

// Auto-incremented primary key column type of the connected database
func idType() string {
	switch dbDialect {
	case sqlite:
		return "integer primary key autoincrement"
	default:
		return "bigserial primary key"
	}
}

// Run migrations from version `from`to version `to`
func runMigrations() (err error) {
	for {
		var (
			currentVersion int
			done           bool
		)
		err = InTransaction(context.Background(), func(tx *sql.Tx) (err error) {
			q := sq.Select("val").
				From("main").
				Where("id = 'version'")
			if dbDialect == postgres {
				// Lock version column to ensure no migrations from other
				// processes happen concurrently
				q = q.Suffix("for update")
			}
			err = q.RunWith(tx).QueryRow().Scan(&currentVersion)
			if err != nil {
				return
			}
			if currentVersion == version {
				done = true
				return
			}
			if currentVersion > version {
				log.Fatal("database version ahead of codebase")
			}

			if !common.IsTest {
				log.Infof("upgrading database to version %d", currentVersion+1)
			}

			err = migrations[currentVersion](tx)
			if err != nil {
				return
			}

			// Write new version number
			_, err = sq.Update("main").
				Set("val", fmt.Sprint(currentVersion+1)).
				Where("id = 'version'").
				RunWith(tx).
				Exec()
			return
		})
		if err != nil || done {
			return
		}
	}
}

// Execute all SQL statement strings and return on first error, if any
func execAll(tx *sql.Tx, q ...string) error {
	for _, q := range q {
		if _, err := tx.Exec(q); err != nil {
			return err
		}
	}
	return nil
}
