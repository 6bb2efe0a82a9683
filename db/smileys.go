package db

import (
	"context"

	"github.com/bakape/forum/common"
)

// GetSmileys returns a snapshot of the smiley registry in insertion order
func GetSmileys(ctx context.Context) (s common.Smileys, err error) {
	rows, err := sq.Select("id", "code", "path", "thought").
		From("smileys").
		OrderBy("id").
		QueryContext(ctx)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var r common.Smiley
		err = rows.Scan(&r.ID, &r.Code, &r.Path, &r.Thought)
		if err != nil {
			return
		}
		s = append(s, r)
	}
	err = rows.Err()
	return
}

// InsertSmiley adds a smiley to the registry and returns its ID
func InsertSmiley(ctx context.Context, s common.Smiley) (id uint64, err error) {
	if s.Code == "" || s.Path == "" {
		err = common.ErrInvalidInput("smiley code and path required")
		return
	}
	err = sq.Insert("smileys").
		Columns("code", "path", "thought").
		Values(s.Code, s.Path, s.Thought).
		Suffix("returning id").
		QueryRowContext(ctx).
		Scan(&id)
	return
}
