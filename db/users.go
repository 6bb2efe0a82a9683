package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bakape/forum/common"
)

// Users is the directory of registered accounts used for resolving mentions
type Users struct{}

var accountColumns = []string{"id", "user_name", "display_name", "admin"}

func scanUser(r rowScanner) (u *common.User, err error) {
	u = new(common.User)
	err = r.Scan(&u.ID, &u.UserName, &u.DisplayName, &u.Admin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return
}

// FindByDisplayName finds a user by case-insensitive display name
func (Users) FindByDisplayName(ctx context.Context, name string) (
	*common.User, error,
) {
	return scanUser(sq.Select(accountColumns...).
		From("accounts").
		Where("lower(display_name) = ?", strings.ToLower(name)).
		OrderBy("id").
		Limit(1).
		QueryRowContext(ctx))
}

// FindByLoginContains finds the first user, whose login name contains s
// ignoring case
func (Users) FindByLoginContains(ctx context.Context, s string) (
	*common.User, error,
) {
	return scanUser(sq.Select(accountColumns...).
		From("accounts").
		Where(`lower(user_name) like ? escape '\'`,
			"%"+escapeLike(strings.ToLower(s))+"%").
		OrderBy("id").
		Limit(1).
		QueryRowContext(ctx))
}

// RegisterAccount writes a new user account
func RegisterAccount(ctx context.Context, u common.User) (err error) {
	_, err = sq.Insert("accounts").
		Columns(accountColumns...).
		Values(u.ID, u.UserName, u.DisplayName, u.Admin).
		ExecContext(ctx)
	if IsConflictError(err) {
		err = common.ErrInvalidInput("login id taken")
	}
	return
}

// GetAccount retrieves an account by ID
func GetAccount(ctx context.Context, id string) (u common.User, err error) {
	p, err := scanUser(sq.Select(accountColumns...).
		From("accounts").
		Where("id = ?", id).
		QueryRowContext(ctx))
	switch {
	case err != nil:
	case p == nil:
		err = common.StatusError{
			Err:  fmt.Errorf("no account %s", id),
			Code: 404,
		}
	default:
		u = *p
	}
	return
}
