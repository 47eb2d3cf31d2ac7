package chat

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"dmchat/internal/app/model"
	"dmchat/internal/app/store"
)

type hubFixture struct {
	store    *store.Memory
	hub      *Hub
	messages *MessageService
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()
	st := store.NewMemory()
	conversations := NewConversationService(st)
	messages := NewMessageService(st, conversations)

	seedUser(t, st, "alice", "Alice", "13800000001")
	seedUser(t, st, "bob", "Bob", "13800000002")

	return &hubFixture{
		store:    st,
		hub:      NewHub(st),
		messages: messages,
	}
}

// session creates a registered client without starting its pumps; queued
// frames are inspected straight off the send channel.
func (f *hubFixture) session(t *testing.T, userID string) *Client {
	t.Helper()
	u, err := f.store.FindUser(context.Background(), userID)
	require.NoError(t, err)

	c := NewClient(f.hub, nil, u, f.messages)
	f.hub.Register(c)
	return c
}

func takeFrame(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.send:
		return data
	default:
		t.Fatal("expected a queued frame, send channel empty")
		return nil
	}
}

func frameType(t *testing.T, data []byte) EventType {
	t.Helper()
	var envelope struct {
		Type EventType `json:"type"`
	}
	require.NoError(t, json.Unmarshal(data, &envelope))
	return envelope.Type
}

func TestDeliverFansOutToBothParties(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)

	bobPhone := f.session(t, "bob")
	bobLaptop := f.session(t, "bob")
	alice := f.session(t, "alice")

	saved, cerr := f.messages.Send(context.Background(), &model.Message{
		SenderID:   "alice",
		ReceiverID: "bob",
		Content:    "hello",
	})
	req.Nil(cerr)

	f.hub.Deliver(saved)

	// Exactly one copy per live session, receiver and sender alike.
	for _, c := range []*Client{bobPhone, bobLaptop, alice} {
		frame := takeFrame(t, c)
		req.Equal(EventMessageNew, frameType(t, frame))
		req.Empty(c.send)
	}
}

func TestDeliverDropsOnFullQueue(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)

	bob := f.session(t, "bob")
	for i := 0; i < cap(bob.send); i++ {
		bob.send <- []byte("{}")
	}

	saved, cerr := f.messages.Send(context.Background(), &model.Message{
		SenderID:   "alice",
		ReceiverID: "bob",
		Content:    "overflow",
	})
	req.Nil(cerr)

	// Must not block or panic; the frame is simply dropped.
	f.hub.Deliver(saved)
	req.Equal(cap(bob.send), len(bob.send))
}

func TestRegisterUnregisterSessionCounts(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)

	phone := f.session(t, "bob")
	laptop := f.session(t, "bob")
	req.Equal(2, f.hub.SessionCount("bob"))

	req.Equal(1, f.hub.Unregister(phone))
	req.Equal(0, f.hub.Unregister(laptop))
	req.Equal(0, f.hub.SessionCount("bob"))

	// Unregistering a session that is already gone stays at zero.
	req.Equal(0, f.hub.Unregister(laptop))
}

func TestConnectDisconnectPersistsAndBroadcasts(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)
	ctx := context.Background()

	watcher := f.session(t, "alice")

	u, cerr := f.hub.Connect(ctx, "bob")
	req.Nil(cerr)
	req.Equal(model.StatusOnline, u.Status)

	stored, err := f.store.FindUser(ctx, "bob")
	req.NoError(err)
	req.Equal(model.StatusOnline, stored.Status)

	frame := takeFrame(t, watcher)
	req.Equal(EventPresenceChange, frameType(t, frame))

	var envelope struct {
		Payload model.User `json:"payload"`
	}
	req.NoError(json.Unmarshal(frame, &envelope))
	req.Equal("bob", envelope.Payload.ID)
	req.Equal(model.StatusOnline, envelope.Payload.Status)

	u, cerr = f.hub.Disconnect(ctx, "bob")
	req.Nil(cerr)
	req.Equal(model.StatusOffline, u.Status)

	frame = takeFrame(t, watcher)
	req.Equal(EventPresenceChange, frameType(t, frame))

	// Reconnecting an already-offline user is idempotent.
	_, cerr = f.hub.Disconnect(ctx, "bob")
	req.Nil(cerr)
}

func TestConnectUnknownUser(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)

	_, cerr := f.hub.Connect(context.Background(), "ghost")
	req.NotNil(cerr)
}

func TestShutdownClosesSessions(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)

	bob := f.session(t, "bob")
	f.hub.Shutdown()

	_, open := <-bob.send
	req.False(open)
	req.Equal(0, f.hub.SessionCount("bob"))

	// Shutdown twice must not double-close.
	f.hub.Shutdown()
}
