package db

import (
	"context"
	"testing"

	"github.com/bakape/forum/common"
	. "github.com/bakape/forum/test"
)

func TestUserDirectory(t *testing.T) {
	assertTableClear(t)
	writeSampleUsers(t)
	ctx := context.Background()
	var users Users

	cases := [...]struct {
		name, query string
		byLogin     bool
		expected    string
	}{
		{"display name", "alice", false, "alice"},
		{"display name upper case", "BOBBY", false, "bob"},
		{"display name no match", "bob", false, ""},
		{"login substring", "ARO", true, "carol"},
		{"login underscore", "e_a", true, "alice"},
		{"underscore is literal", "e_", true, "alice"},
		{"percent is literal", "b%", true, "bob"},
		{"wildcard not expanded", "%", true, "bob"},
		{"login no match", "dave", true, ""},
	}

	for i := range cases {
		c := cases[i]
		t.Run(c.name, func(t *testing.T) {
			var (
				u   *common.User
				err error
			)
			if c.byLogin {
				u, err = users.FindByLoginContains(ctx, c.query)
			} else {
				u, err = users.FindByDisplayName(ctx, c.query)
			}
			if err != nil {
				t.Fatal(err)
			}
			var id string
			if u != nil {
				id = u.ID
			}
			AssertEquals(t, id, c.expected)
		})
	}
}

func TestAccounts(t *testing.T) {
	assertTableClear(t)
	writeSampleUsers(t)
	ctx := context.Background()

	u, err := GetAccount(ctx, "carol")
	if err != nil {
		t.Fatal(err)
	}
	AssertDeepEquals(t, u, carol)

	_, err = GetAccount(ctx, "dave")
	AssertError(t, err, common.IsNotFound)

	err = RegisterAccount(ctx, alice)
	AssertError(t, err, common.IsValidation)
}

func TestSmileys(t *testing.T) {
	assertTableClear(t)
	ctx := context.Background()

	codes := [...]string{":)", ":(", ":D"}
	for _, c := range codes {
		_, err := InsertSmiley(ctx, common.Smiley{Code: c, Path: c + ".png"})
		if err != nil {
			t.Fatal(err)
		}
	}

	s, err := GetSmileys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	AssertEquals(t, s.Len(), 3)
	for i, c := range codes {
		AssertEquals(t, s.At(i).Code, c)
	}

	_, err = InsertSmiley(ctx, common.Smiley{Code: ":P"})
	AssertError(t, err, common.IsValidation)
}

func TestMarkNotificationsRead(t *testing.T) {
	assertTableClear(t)
	ctx := context.Background()

	topic := insertSample(t, "alice", 0, "topic")
	first := insertSample(t, "bob", topic.ID, "reply")
	insertSample(t, "carol", topic.ID, "reply")

	n, err := GetNotifications(ctx, "alice", true)
	if err != nil {
		t.Fatal(err)
	}
	AssertEquals(t, len(n), 2)

	var firstID uint64
	for _, n := range n {
		if n.MessageID == first.ID {
			firstID = n.ID
		}
	}
	err = MarkNotificationsRead(ctx, "alice", firstID)
	if err != nil {
		t.Fatal(err)
	}
	n, err = GetNotifications(ctx, "alice", true)
	if err != nil {
		t.Fatal(err)
	}
	AssertEquals(t, len(n), 1)
	AssertEquals(t, n[0].TargetUserID, "carol")

	// Other users' notifications are not touched
	err = MarkNotificationsRead(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	n, err = GetNotifications(ctx, "alice", true)
	if err != nil {
		t.Fatal(err)
	}
	AssertEquals(t, len(n), 1)

	err = MarkNotificationsRead(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	n, err = GetNotifications(ctx, "alice", true)
	if err != nil {
		t.Fatal(err)
	}
	AssertEquals(t, len(n), 0)

	n, err = GetNotifications(ctx, "alice", false)
	if err != nil {
		t.Fatal(err)
	}
	AssertEquals(t, len(n), 2)
	AssertEquals(t, n[0].Unread, false)
}
