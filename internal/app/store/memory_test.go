package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"dmchat/internal/app/model"
)

func seedUser(t *testing.T, m *Memory, id, name, phone string) {
	t.Helper()
	err := m.SaveUser(context.Background(), &model.User{
		ID:          id,
		Name:        name,
		PhoneNumber: phone,
		Status:      model.StatusOffline,
	})
	require.NoError(t, err)
}

func TestMemoryConversationPairUniqueness(t *testing.T) {
	req := require.New(t)
	m := NewMemory()
	ctx := context.Background()

	err := m.CreateConversation(ctx, &model.Conversation{ID: "c1", SenderID: "u1", ReceiverID: "u2"})
	req.NoError(err)

	// Same pair, same ordering.
	err = m.CreateConversation(ctx, &model.Conversation{ID: "c2", SenderID: "u1", ReceiverID: "u2"})
	req.ErrorIs(err, ErrDuplicate)

	// Same pair, reversed ordering.
	err = m.CreateConversation(ctx, &model.Conversation{ID: "c3", SenderID: "u2", ReceiverID: "u1"})
	req.ErrorIs(err, ErrDuplicate)

	// A different pair is fine.
	err = m.CreateConversation(ctx, &model.Conversation{ID: "c4", SenderID: "u1", ReceiverID: "u3"})
	req.NoError(err)
}

func TestMemoryConcurrentSummaryUpdates(t *testing.T) {
	req := require.New(t)
	m := NewMemory()
	ctx := context.Background()

	err := m.CreateConversation(ctx, &model.Conversation{ID: "c1", SenderID: "u1", ReceiverID: "u2"})
	req.NoError(err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.UpdateConversationSummary(ctx, "c1", "hello", "12:00"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	c, err := m.FindConversation(ctx, "c1")
	req.NoError(err)
	req.Equal(n, c.UnreadCount)
	req.Equal("hello", c.LastMessage)
}

func TestMemoryMarkMessagesRead(t *testing.T) {
	req := require.New(t)
	m := NewMemory()
	ctx := context.Background()

	req.NoError(m.CreateConversation(ctx, &model.Conversation{ID: "c1", SenderID: "u1", ReceiverID: "u2"}))
	req.NoError(m.SaveMessage(ctx, &model.Message{ID: "m1", ConversationID: "c1", SenderID: "u1", ReceiverID: "u2"}))
	req.NoError(m.SaveMessage(ctx, &model.Message{ID: "m2", ConversationID: "c1", SenderID: "u2", ReceiverID: "u1"}))

	req.NoError(m.MarkMessagesRead(ctx, "c1", "u2"))

	messages, err := m.ListMessagesByConversation(ctx, "c1")
	req.NoError(err)
	req.Len(messages, 2)
	req.True(messages[0].Read, "message addressed to u2 should be read")
	req.False(messages[1].Read, "message addressed to u1 should stay unread")

	// Marking again is a no-op, never flips read back to false.
	req.NoError(m.MarkMessagesRead(ctx, "c1", "u2"))
	messages, err = m.ListMessagesByConversation(ctx, "c1")
	req.NoError(err)
	req.True(messages[0].Read)
}

func TestMemoryFindUsersByNameContains(t *testing.T) {
	req := require.New(t)
	m := NewMemory()
	ctx := context.Background()

	seedUser(t, m, "u1", "Alice", "+111")
	seedUser(t, m, "u2", "alicia", "+222")
	seedUser(t, m, "u3", "Bob", "+333")

	users, err := m.FindUsersByNameContains(ctx, "ali")
	req.NoError(err)
	req.Len(users, 2)

	users, err = m.FindUsersByNameContains(ctx, "BOB")
	req.NoError(err)
	req.Len(users, 1)
	req.Equal("u3", users[0].ID)
}

func TestMemorySaveUserDuplicatePhone(t *testing.T) {
	req := require.New(t)
	m := NewMemory()
	ctx := context.Background()

	seedUser(t, m, "u1", "Alice", "+111")

	err := m.SaveUser(ctx, &model.User{ID: "u2", Name: "Impostor", PhoneNumber: "+111"})
	req.ErrorIs(err, ErrDuplicate)

	// Re-saving the same account with its own phone is an update, not a conflict.
	err = m.SaveUser(ctx, &model.User{ID: "u1", Name: "Alice B", PhoneNumber: "+111"})
	req.NoError(err)

	u, err := m.FindUser(ctx, "u1")
	req.NoError(err)
	req.Equal("Alice B", u.Name)
}
