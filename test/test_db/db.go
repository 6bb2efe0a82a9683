// Database testing utility functions

package test_db

import (
	"context"
	"testing"

	"github.com/bakape/forum/common"
	"github.com/bakape/forum/db"
)

// Tables contains all tables, that are cleared between tests
var Tables = []string{
	"accounts", "boards", "messages", "message_boards", "smileys",
	"message_thoughts", "notifications", "participants",
}

// Sample users written by WriteSampleUsers
var (
	Alice = common.User{ID: "alice", UserName: "alice", DisplayName: "Alice"}
	Bob   = common.User{ID: "bob", UserName: "robert", DisplayName: "Bobby"}
	Admin = common.User{
		ID:          "admin",
		UserName:    "admin",
		DisplayName: "Admin",
		Admin:       true,
	}
)

// ClearTables deletes the contents of all tables
func ClearTables(t testing.TB) {
	t.Helper()
	if err := db.ClearTables(Tables...); err != nil {
		t.Fatal(err)
	}
}

// WriteSampleUsers registers Alice, Bob and Admin
func WriteSampleUsers(t testing.TB) {
	t.Helper()
	for _, u := range [...]common.User{Alice, Bob, Admin} {
		if err := db.RegisterAccount(context.Background(), u); err != nil {
			t.Fatal(err)
		}
	}
}

// WriteSampleSmileys writes a small smiley registry and returns its snapshot
func WriteSampleSmileys(t testing.TB) common.Smileys {
	t.Helper()

	ctx := context.Background()
	for _, s := range [...]common.Smiley{
		{Code: ":)", Path: "happy.png", Thought: "is happy about"},
		{Code: ":(", Path: "sad.png", Thought: "is sad about"},
	} {
		if _, err := db.InsertSmiley(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	s, err := db.GetSmileys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// WriteSampleBoard writes a board and returns its ID
func WriteSampleBoard(t testing.TB) uint64 {
	t.Helper()

	id, err := db.WriteBoard(context.Background(), common.Board{
		Name:        "general",
		Description: "General discussion",
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}
