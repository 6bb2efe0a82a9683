package common

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	. "github.com/bakape/forum/test"
)

func TestStatusErrorMessage(t *testing.T) {
	t.Parallel()

	cases := [...]struct {
		name string
		err  error
		msg  string
	}{
		{"input", ErrInvalidInput("foo"), "invalid input: foo"},
		{"field", ErrEmptyBody, "invalid input: body: message is empty"},
		{"not found", ErrNotFound("message", 7), "not found: no message 7"},
		{"board", ErrInvalidBoard(2), "not found: board `2` does not exist"},
		{"too long", ErrBodyTooLong, "invalid input: body too long"},
		{"denied", ErrNoPermissions, "access denied: insufficient permissions"},
	}

	for i := range cases {
		c := cases[i]
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			AssertEquals(t, c.err.Error(), c.msg)
		})
	}
}

func TestCanIgnoreClientError(t *testing.T) {
	t.Parallel()

	cases := [...]struct {
		name   string
		err    error
		ignore bool
	}{
		{"nil", nil, true},
		{"client", ErrInvalidInput("foo"), true},
		{"wrapped client", fmt.Errorf("saving: %w", ErrNotFound("message", 1)), true},
		{"server", errors.New("disk on fire"), false},
		{"status 500", StatusError{Err: sql.ErrConnDone, Code: 500}, false},
	}

	for i := range cases {
		c := cases[i]
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			AssertEquals(t, CanIgnoreClientError(c.err), c.ignore)
		})
	}
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("creating: %w", ErrNotFound("message", 3))
	AssertEquals(t, IsNotFound(err), true)
	AssertEquals(t, IsValidation(err), false)

	err = fmt.Errorf("saving: %w", ErrInvalidField("body", errors.New("bad")))
	AssertEquals(t, IsValidation(err), true)
	AssertEquals(t, IsNotFound(err), false)
}

func TestMessageTopicID(t *testing.T) {
	t.Parallel()

	AssertEquals(t, Message{ID: 4}.TopicID(), uint64(4))
	AssertEquals(t, Message{ID: 5, ParentID: 4}.TopicID(), uint64(4))
}
