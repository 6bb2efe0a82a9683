package db

import (
	"context"
	"database/sql"

	"github.com/bakape/forum/common"
)

// WriteBoard creates a new board and returns its ID
func WriteBoard(ctx context.Context, b common.Board) (id uint64, err error) {
	err = sq.Insert("boards").
		Columns("name", "description").
		Values(b.Name, b.Description).
		Suffix("returning id").
		QueryRowContext(ctx).
		Scan(&id)
	return
}

// GetBoard retrieves a board by ID
func GetBoard(ctx context.Context, id uint64) (b common.Board, err error) {
	err = sq.Select("id", "name", "description").
		From("boards").
		Where("id = ?", id).
		QueryRowContext(ctx).
		Scan(&b.ID, &b.Name, &b.Description)
	if err == sql.ErrNoRows {
		err = common.ErrInvalidBoard(id)
	}
	return
}

// GetMessageBoards returns the IDs of boards a topic is listed on
func GetMessageBoards(ctx context.Context, message uint64) (
	ids []uint64, err error,
) {
	rows, err := sq.Select("board_id").
		From("message_boards").
		Where("message_id = ?", message).
		OrderBy("board_id").
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

// Associate a new topic with boards. All boards must exist.
func linkBoards(tx *sql.Tx, message uint64, boards []uint64) (err error) {
	seen := make(map[uint64]bool, len(boards))
	for _, b := range boards {
		if seen[b] {
			continue
		}
		seen[b] = true

		var exists bool
		err = sq.Select("1").
			From("boards").
			Where("id = ?", b).
			RunWith(tx).
			QueryRow().
			Scan(&exists)
		switch err {
		case nil:
		case sql.ErrNoRows:
			return common.ErrInvalidBoard(b)
		default:
			return
		}

		_, err = sq.Insert("message_boards").
			Columns("message_id", "board_id").
			Values(message, b).
			RunWith(tx).
			Exec()
		if err != nil {
			return
		}
	}
	return
}
