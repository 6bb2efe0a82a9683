package db

import (
	"context"
	"strings"
	"testing"

	"github.com/bakape/forum/common"
	. "github.com/bakape/forum/test"
)

func TestReplyThreading(t *testing.T) {
	assertTableClear(t)
	writeSampleUsers(t)

	topic := insertSample(t, "alice", 0, "topic")
	reply := insertSample(t, "bob", topic.ID, "reply")
	quote := insertSample(t, "carol", reply.ID, "quote")

	AssertEquals(t, reply.ParentID, topic.ID)
	AssertEquals(t, reply.ReplyID, uint64(0))
	AssertEquals(t, quote.ParentID, topic.ID)
	AssertEquals(t, quote.ReplyID, reply.ID)

	root := fetchMessage(t, topic.ID)
	AssertEquals(t, root.ReplyCount, uint64(2))
	AssertEquals(t, root.LastReplyID, quote.ID)
	AssertEquals(t, root.LastReplyByID, "carol")

	target := fetchMessage(t, reply.ID)
	AssertEquals(t, target.LastReplyID, quote.ID)
	AssertEquals(t, target.ReplyCount, uint64(0))

	AssertDeepEquals(t, notificationsOf(t, "alice"), []notificationKey{
		{quote.ID, common.Reply, "carol"},
		{reply.ID, common.Reply, "bob"},
	})
	AssertDeepEquals(t, notificationsOf(t, "bob"), []notificationKey{
		{quote.ID, common.Quote, "carol"},
	})
}

func TestSelfNotificationsSuppressed(t *testing.T) {
	assertTableClear(t)
	writeSampleUsers(t)

	topic := insertSample(t, "alice", 0, "topic")
	reply := insertSample(t, "alice", topic.ID, "reply", "alice", "bob")
	insertSample(t, "alice", reply.ID, "quote")

	AssertEquals(t, len(notificationsOf(t, "alice")), 0)
	AssertDeepEquals(t, notificationsOf(t, "bob"), []notificationKey{
		{reply.ID, common.Mention, "alice"},
	})
}

func TestParticipantUpsert(t *testing.T) {
	assertTableClear(t)
	writeSampleUsers(t)

	topic := insertSample(t, "alice", 0, "topic")
	insertSample(t, "alice", topic.ID, "reply")
	insertSample(t, "bob", topic.ID, "reply")

	p, err := GetParticipants(context.Background(), topic.ID)
	if err != nil {
		t.Fatal(err)
	}
	AssertEquals(t, len(p), 2)
	AssertEquals(t, p[0].UserID, "alice")
	AssertEquals(t, p[1].UserID, "bob")
}

func TestCreateMessageMissingTarget(t *testing.T) {
	assertTableClear(t)

	_, err := CreateMessage(context.Background(), NewMessage{
		ProcessedMessage: sampleBody("hello"),
		By:               "alice",
		ReplyTo:          999,
	})
	AssertError(t, err, common.IsNotFound)
}

func TestCreateTopicBoards(t *testing.T) {
	assertTableClear(t)
	ctx := context.Background()

	board, err := WriteBoard(ctx, common.Board{Name: "general"})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("valid", func(t *testing.T) {
		m, err := CreateMessage(ctx, NewMessage{
			ProcessedMessage: sampleBody("topic"),
			By:               "alice",
			Boards:           []uint64{board, board},
		})
		if err != nil {
			t.Fatal(err)
		}
		boards, err := GetMessageBoards(ctx, m.ID)
		if err != nil {
			t.Fatal(err)
		}
		AssertDeepEquals(t, boards, []uint64{board})
	})

	t.Run("unknown board", func(t *testing.T) {
		before, err := CountTopics(ctx)
		if err != nil {
			t.Fatal(err)
		}
		_, err = CreateMessage(ctx, NewMessage{
			ProcessedMessage: sampleBody("topic"),
			By:               "alice",
			Boards:           []uint64{board + 100},
		})
		AssertError(t, err, common.IsNotFound)

		after, err := CountTopics(ctx)
		if err != nil {
			t.Fatal(err)
		}
		AssertEquals(t, after, before)
	})
}

func TestUpdateMessage(t *testing.T) {
	assertTableClear(t)
	writeSampleUsers(t)
	ctx := context.Background()

	topic := insertSample(t, "alice", 0, "topic")
	body := sampleBody("edited").MessageBody

	_, err := UpdateMessage(ctx, topic.ID, bob, body)
	AssertError(t, err, func(err error) bool {
		return err == common.ErrNoPermissions
	})

	cases := [...]struct {
		name string
		by   common.User
	}{
		{"author", alice},
		{"admin", carol},
	}
	for i := range cases {
		c := cases[i]
		t.Run(c.name, func(t *testing.T) {
			m, err := UpdateMessage(ctx, topic.ID, c.by, body)
			if err != nil {
				t.Fatal(err)
			}
			AssertEquals(t, m.EditedByID, c.by.ID)

			stored := fetchMessage(t, topic.ID)
			AssertEquals(t, stored.DisplayBody, "edited")
			AssertEquals(t, stored.EditedByID, c.by.ID)
			AssertEquals(t, stored.PostedByID, "alice")
			AssertEquals(t, stored.Processed, true)
		})
	}

	_, err = UpdateMessage(ctx, 999, carol, body)
	AssertError(t, err, common.IsNotFound)
}

func TestDeleteReply(t *testing.T) {
	assertTableClear(t)
	writeSampleUsers(t)
	ctx := context.Background()

	topic := insertSample(t, "alice", 0, "topic")
	reply := insertSample(t, "bob", topic.ID, "reply")
	quote := insertSample(t, "carol", reply.ID, "quote")

	err := DeleteMessage(ctx, reply.ID, alice)
	AssertError(t, err, func(err error) bool {
		return err == common.ErrNoPermissions
	})

	err = DeleteMessage(ctx, reply.ID, bob)
	if err != nil {
		t.Fatal(err)
	}

	_, err = GetMessage(ctx, reply.ID)
	AssertError(t, err, common.IsNotFound)

	annotated := fetchMessage(t, quote.ID)
	AssertEquals(t, annotated.ReplyID, uint64(0))
	AssertEquals(t, annotated.Processed, false)
	if !strings.HasPrefix(annotated.OriginalBody, "[quote]reply\nMessage deleted by Bobby on ") {
		t.Fatalf("unexpected body: %s", annotated.OriginalBody)
	}
	if !strings.HasSuffix(annotated.OriginalBody, "[/quote]quote") {
		t.Fatalf("unexpected body: %s", annotated.OriginalBody)
	}

	root := fetchMessage(t, topic.ID)
	AssertEquals(t, root.ReplyCount, uint64(1))
	AssertEquals(t, root.LastReplyID, quote.ID)

	p, err := GetParticipants(ctx, topic.ID)
	if err != nil {
		t.Fatal(err)
	}
	AssertEquals(t, len(p), 2)
	AssertEquals(t, p[0].UserID, "alice")
	AssertEquals(t, p[1].UserID, "carol")

	AssertDeepEquals(t, notificationsOf(t, "alice"), []notificationKey{
		{quote.ID, common.Reply, "carol"},
	})
	AssertEquals(t, len(notificationsOf(t, "bob")), 1)
}

func TestDeleteTopic(t *testing.T) {
	assertTableClear(t)
	writeSampleUsers(t)
	ctx := context.Background()

	topic := insertSample(t, "alice", 0, "topic")
	reply := insertSample(t, "bob", topic.ID, "reply")
	other := insertSample(t, "bob", 0, "other topic")

	err := DeleteMessage(ctx, topic.ID, carol)
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range [...]uint64{topic.ID, reply.ID} {
		_, err = GetMessage(ctx, id)
		AssertError(t, err, common.IsNotFound)
	}
	fetchMessage(t, other.ID)

	p, err := GetParticipants(ctx, topic.ID)
	if err != nil {
		t.Fatal(err)
	}
	AssertEquals(t, len(p), 0)
	AssertEquals(t, len(notificationsOf(t, "alice")), 0)
}
