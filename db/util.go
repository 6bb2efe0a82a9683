package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/log"
	"github.com/lib/pq"
)

// InTransaction runs a function inside a transaction and handles commiting and
// rollback on error
func InTransaction(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Errorf("rollback: %s", rbErr)
		}
		return
	}
	return tx.Commit()
}

// IsConflictError returns if an error is a unique key conflict error
func IsConflictError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	// SQLite reports constraint violations only through the message
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Escape LIKE pattern wildcards in s
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
