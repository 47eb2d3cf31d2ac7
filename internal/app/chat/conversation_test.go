package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"dmchat/internal/app/model"
	"dmchat/internal/app/store"
	"dmchat/internal/pkg/errs"
)

func seedUser(t *testing.T, st *store.Memory, id, name, phone string) *model.User {
	t.Helper()
	u := &model.User{
		ID:          id,
		Name:        name,
		PhoneNumber: phone,
		Status:      model.StatusOffline,
	}
	require.NoError(t, st.SaveUser(context.Background(), u))
	return u
}

func TestResolveIdempotentAcrossOrderings(t *testing.T) {
	req := require.New(t)
	st := store.NewMemory()
	svc := NewConversationService(st)
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "13800000001")
	seedUser(t, st, "bob", "Bob", "13800000002")

	first, cerr := svc.Resolve(ctx, "alice", "bob")
	req.Nil(cerr)
	req.NotEmpty(first.ID)
	req.Equal("alice", first.SenderID)
	req.Equal("bob", first.ReceiverID)
	req.Equal("Bob", first.Name)
	req.Empty(first.LastMessage)
	req.Zero(first.UnreadCount)
	req.False(first.Online)
	req.NotEmpty(first.AvatarColor)
	req.Equal(model.DefaultCategory, first.Category)

	// Same pair, either ordering, resolves to the same row.
	again, cerr := svc.Resolve(ctx, "alice", "bob")
	req.Nil(cerr)
	req.Equal(first.ID, again.ID)

	reversed, cerr := svc.Resolve(ctx, "bob", "alice")
	req.Nil(cerr)
	req.Equal(first.ID, reversed.ID)
	req.Equal("alice", reversed.SenderID)
}

func TestResolveUnknownUser(t *testing.T) {
	req := require.New(t)
	st := store.NewMemory()
	svc := NewConversationService(st)
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "13800000001")

	_, cerr := svc.Resolve(ctx, "alice", "ghost")
	req.NotNil(cerr)
	req.Equal(errs.ErrUserNotFound, cerr.Code)

	_, cerr = svc.Resolve(ctx, "ghost", "alice")
	req.NotNil(cerr)
	req.Equal(errs.ErrUserNotFound, cerr.Code)
}

func TestResolveConcurrentSamePair(t *testing.T) {
	req := require.New(t)
	st := store.NewMemory()
	svc := NewConversationService(st)
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "13800000001")
	seedUser(t, st, "bob", "Bob", "13800000002")

	const workers = 20
	ids := make([]string, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			a, b := "alice", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			conv, cerr := svc.Resolve(ctx, a, b)
			if cerr == nil {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		req.Equal(ids[0], ids[i])
	}

	list, err := st.ListConversationsForUser(ctx, "alice")
	req.NoError(err)
	req.Len(list, 1)
}

func TestGetAndDelete(t *testing.T) {
	req := require.New(t)
	st := store.NewMemory()
	svc := NewConversationService(st)
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "13800000001")
	seedUser(t, st, "bob", "Bob", "13800000002")

	conv, cerr := svc.Resolve(ctx, "alice", "bob")
	req.Nil(cerr)

	got, cerr := svc.Get(ctx, conv.ID)
	req.Nil(cerr)
	req.Equal(conv.ID, got.ID)

	req.Nil(svc.Delete(ctx, conv.ID))

	_, cerr = svc.Get(ctx, conv.ID)
	req.NotNil(cerr)
	req.Equal(errs.ErrConversationNotFound, cerr.Code)

	cerr = svc.Delete(ctx, conv.ID)
	req.NotNil(cerr)
	req.Equal(errs.ErrConversationNotFound, cerr.Code)
}

func TestListForUserOrderingAndDisplayName(t *testing.T) {
	req := require.New(t)
	st := store.NewMemory()
	svc := NewConversationService(st)
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "13800000001")
	seedUser(t, st, "bob", "Bob", "13800000002")
	seedUser(t, st, "carol", "Carol", "13800000003")

	withBob, cerr := svc.Resolve(ctx, "alice", "bob")
	req.Nil(cerr)
	withCarol, cerr := svc.Resolve(ctx, "carol", "alice")
	req.Nil(cerr)

	// Only the conversation with Bob has activity; it must sort first
	// and threads without a last message go last.
	req.NoError(st.UpdateConversationSummary(ctx, withBob.ID, "hi", "14:30"))

	views, cerr := svc.ListForUser(ctx, "alice")
	req.Nil(cerr)
	req.Len(views, 2)

	req.Equal(withBob.ID, views[0].ID)
	req.Equal("Bob", views[0].DisplayName)
	req.Equal("hi", views[0].LastMessage)
	req.Equal("14:30", views[0].LastMessageTime)
	req.Equal(1, views[0].UnreadCount)

	req.Equal(withCarol.ID, views[1].ID)
	req.Equal("Carol", views[1].DisplayName)
	req.Empty(views[1].LastMessageTime)

	// Carol sees Alice on the same row.
	carolViews, cerr := svc.ListForUser(ctx, "carol")
	req.Nil(cerr)
	req.Len(carolViews, 1)
	req.Equal("Alice", carolViews[0].DisplayName)
}
