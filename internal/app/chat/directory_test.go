package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"dmchat/internal/app/model"
	"dmchat/internal/app/store"
)

func TestSearchByPhoneAndName(t *testing.T) {
	req := require.New(t)
	st := store.NewMemory()
	svc := NewDirectoryService(st)
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "13800000001")
	seedUser(t, st, "bob", "Bob", "13800000002")
	seedUser(t, st, "bobby", "Bobby", "13800000003")

	byPhone, cerr := svc.Search(ctx, "13800000002", "alice")
	req.Nil(cerr)
	req.Len(byPhone, 1)
	req.Equal("bob", byPhone[0].ID)

	// Case-insensitive name substring, multiple hits.
	byName, cerr := svc.Search(ctx, "bob", "alice")
	req.Nil(cerr)
	req.Len(byName, 2)

	missing, cerr := svc.Search(ctx, "no such user", "alice")
	req.Nil(cerr)
	req.Empty(missing)
}

func TestSearchExcludesRequester(t *testing.T) {
	req := require.New(t)
	st := store.NewMemory()
	svc := NewDirectoryService(st)
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "13800000001")
	seedUser(t, st, "alicia", "Alicia", "13800000002")

	results, cerr := svc.Search(ctx, "ali", "alice")
	req.Nil(cerr)
	req.Len(results, 1)
	req.Equal("alicia", results[0].ID)

	// Exact self matches are excluded too.
	results, cerr = svc.Search(ctx, "13800000001", "alice")
	req.Nil(cerr)
	req.Empty(results)
}

func TestSearchDeduplicates(t *testing.T) {
	req := require.New(t)
	st := store.NewMemory()
	svc := NewDirectoryService(st)
	ctx := context.Background()

	// Name equals phone number so both lookups hit the same user.
	seedUser(t, st, "odd", "13800000009", "13800000009")

	results, cerr := svc.Search(ctx, "13800000009", "someone-else")
	req.Nil(cerr)
	req.Len(results, 1)
}

func TestOnlineUsers(t *testing.T) {
	req := require.New(t)
	st := store.NewMemory()
	svc := NewDirectoryService(st)
	ctx := context.Background()

	seedUser(t, st, "alice", "Alice", "13800000001")
	bob := seedUser(t, st, "bob", "Bob", "13800000002")

	online, cerr := svc.OnlineUsers(ctx)
	req.Nil(cerr)
	req.Empty(online)

	bob.Status = model.StatusOnline
	req.NoError(st.UpdateUser(ctx, bob))

	online, cerr = svc.OnlineUsers(ctx)
	req.Nil(cerr)
	req.Len(online, 1)
	req.Equal("bob", online[0].ID)
}
