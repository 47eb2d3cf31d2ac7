package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dmchat/internal/app/model"
	"dmchat/internal/app/store"
	"dmchat/internal/pkg/errs"
)

func newMessageFixture(t *testing.T) (*store.Memory, *MessageService) {
	t.Helper()
	st := store.NewMemory()
	conversations := NewConversationService(st)
	messages := NewMessageService(st, conversations)

	seedUser(t, st, "alice", "Alice", "13800000001")
	seedUser(t, st, "bob", "Bob", "13800000002")

	return st, messages
}

func TestSendStampsAndPersists(t *testing.T) {
	req := require.New(t)
	st, messages := newMessageFixture(t)
	ctx := context.Background()

	saved, cerr := messages.Send(ctx, &model.Message{
		SenderID:   "alice",
		ReceiverID: "bob",
		Content:    "hello bob",
	})
	req.Nil(cerr)

	req.NotEmpty(saved.ID)
	req.NotEmpty(saved.ConversationID)
	req.False(saved.Read)
	req.NotNil(saved.Sender)
	req.Equal("alice", saved.Sender.ID)
	req.Equal("Alice", saved.Sender.Name)

	_, err := time.Parse(TimestampLayout, saved.Timestamp)
	req.NoError(err)

	conv, err := st.FindConversation(ctx, saved.ConversationID)
	req.NoError(err)
	req.Equal("hello bob", conv.LastMessage)
	req.NotEmpty(conv.LastMessageTime)
	req.Equal(1, conv.UnreadCount)

	stored, err := st.ListMessagesByConversation(ctx, saved.ConversationID)
	req.NoError(err)
	req.Len(stored, 1)
	req.Equal(saved.ID, stored[0].ID)
}

func TestSendPreservesClientTimestamp(t *testing.T) {
	req := require.New(t)
	_, messages := newMessageFixture(t)

	const stamp = "2026-08-30T12:00:00.000Z"
	saved, cerr := messages.Send(context.Background(), &model.Message{
		SenderID:   "alice",
		ReceiverID: "bob",
		Content:    "hi",
		Timestamp:  stamp,
	})
	req.Nil(cerr)
	req.Equal(stamp, saved.Timestamp)
}

func TestSendRejectsInvalidContent(t *testing.T) {
	req := require.New(t)
	_, messages := newMessageFixture(t)
	ctx := context.Background()

	_, cerr := messages.Send(ctx, &model.Message{SenderID: "alice", ReceiverID: "bob", Content: ""})
	req.NotNil(cerr)
	req.Equal(errs.ErrEmptyContent, cerr.Code)

	_, cerr = messages.Send(ctx, &model.Message{SenderID: "alice", ReceiverID: "bob", Content: "   \t\n"})
	req.NotNil(cerr)
	req.Equal(errs.ErrEmptyContent, cerr.Code)

	_, cerr = messages.Send(ctx, &model.Message{
		SenderID:   "alice",
		ReceiverID: "bob",
		Content:    strings.Repeat("a", MaxContentBytes+1),
	})
	req.NotNil(cerr)
	req.Equal(errs.ErrMessageContentTooLong, cerr.Code)
}

func TestSendUnknownCounterpart(t *testing.T) {
	req := require.New(t)
	_, messages := newMessageFixture(t)

	_, cerr := messages.Send(context.Background(), &model.Message{
		SenderID:   "alice",
		ReceiverID: "ghost",
		Content:    "anyone there",
	})
	req.NotNil(cerr)
	req.Equal(errs.ErrUserNotFound, cerr.Code)
}

func TestConcurrentSendsAccumulateUnread(t *testing.T) {
	req := require.New(t)
	st, messages := newMessageFixture(t)
	ctx := context.Background()

	const sends = 50

	var wg sync.WaitGroup
	wg.Add(sends)
	for i := 0; i < sends; i++ {
		go func() {
			defer wg.Done()
			_, cerr := messages.Send(ctx, &model.Message{
				SenderID:   "alice",
				ReceiverID: "bob",
				Content:    "ping",
			})
			require.Nil(t, cerr)
		}()
	}
	wg.Wait()

	list, err := st.ListConversationsForUser(ctx, "bob")
	req.NoError(err)
	req.Len(list, 1)
	req.Equal(sends, list[0].UnreadCount)

	stored, err := st.ListMessagesByConversation(ctx, list[0].ID)
	req.NoError(err)
	req.Len(stored, sends)
}

func TestHistoryBackfillsSenderSummary(t *testing.T) {
	req := require.New(t)
	st, messages := newMessageFixture(t)
	ctx := context.Background()

	conversations := NewConversationService(st)
	conv, cerr := conversations.Resolve(ctx, "alice", "bob")
	req.Nil(cerr)

	// Row persisted without the denormalized sender summary, as older
	// writers did.
	req.NoError(st.SaveMessage(ctx, &model.Message{
		ID:             "m1",
		ConversationID: conv.ID,
		SenderID:       "bob",
		ReceiverID:     "alice",
		Content:        "old row",
		Timestamp:      NowTimestamp(),
	}))

	history, cerr := messages.History(ctx, "alice", "bob")
	req.Nil(cerr)
	req.Len(history, 1)
	req.NotNil(history[0].Sender)
	req.Equal("Bob", history[0].Sender.Name)
}

func TestHistoryCreatesConversationWhenAbsent(t *testing.T) {
	req := require.New(t)
	st, messages := newMessageFixture(t)
	ctx := context.Background()

	history, cerr := messages.History(ctx, "alice", "bob")
	req.Nil(cerr)
	req.Empty(history)

	list, err := st.ListConversationsForUser(ctx, "alice")
	req.NoError(err)
	req.Len(list, 1)
}

func TestMarkReadFlipsOnlyReceiverMessages(t *testing.T) {
	req := require.New(t)
	st, messages := newMessageFixture(t)
	ctx := context.Background()

	toBob, cerr := messages.Send(ctx, &model.Message{SenderID: "alice", ReceiverID: "bob", Content: "to bob"})
	req.Nil(cerr)
	_, cerr = messages.Send(ctx, &model.Message{SenderID: "bob", ReceiverID: "alice", Content: "to alice"})
	req.Nil(cerr)

	req.Nil(messages.MarkRead(ctx, toBob.ConversationID, "bob"))

	stored, err := st.ListMessagesByConversation(ctx, toBob.ConversationID)
	req.NoError(err)
	req.Len(stored, 2)
	for _, m := range stored {
		if m.ReceiverID == "bob" {
			req.True(m.Read)
		} else {
			req.False(m.Read)
		}
	}

	conv, err := st.FindConversation(ctx, toBob.ConversationID)
	req.NoError(err)
	req.Zero(conv.UnreadCount)

	// A read message never reverts to unread.
	req.Nil(messages.MarkRead(ctx, toBob.ConversationID, "bob"))
	stored, err = st.ListMessagesByConversation(ctx, toBob.ConversationID)
	req.NoError(err)
	for _, m := range stored {
		if m.ReceiverID == "bob" {
			req.True(m.Read)
		}
	}
}

func TestMarkReadMissingConversation(t *testing.T) {
	req := require.New(t)
	_, messages := newMessageFixture(t)

	cerr := messages.MarkRead(context.Background(), "no-such-conversation", "bob")
	req.NotNil(cerr)
	req.Equal(errs.ErrConversationNotFound, cerr.Code)
}
