package chat

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"dmchat/internal/app/model"
)

func TestProcessInboundChatMessage(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)

	alice := f.session(t, "alice")
	bob := f.session(t, "bob")

	frame := `{"type":"chat.message","payload":{"receiverId":"bob","content":"hi bob"}}`
	alice.processInboundFrame([]byte(frame))

	// Persisted and fanned out to both parties.
	data := takeFrame(t, bob)
	req.Equal(EventMessageNew, frameType(t, data))

	var envelope struct {
		Payload struct {
			SenderID string `json:"senderId"`
			Content  string `json:"content"`
			Read     bool   `json:"read"`
		} `json:"payload"`
	}
	req.NoError(json.Unmarshal(data, &envelope))
	req.Equal("alice", envelope.Payload.SenderID)
	req.Equal("hi bob", envelope.Payload.Content)
	req.False(envelope.Payload.Read)

	echo := takeFrame(t, alice)
	req.Equal(EventMessageNew, frameType(t, echo))
}

func TestProcessInboundChatMessageRejected(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)

	alice := f.session(t, "alice")

	frame := `{"type":"chat.message","payload":{"receiverId":"bob","content":""}}`
	alice.processInboundFrame([]byte(frame))

	// The sender gets an error event instead of a delivery.
	data := takeFrame(t, alice)
	req.Equal(EventError, frameType(t, data))

	var envelope struct {
		Payload ErrorPayload `json:"payload"`
	}
	req.NoError(json.Unmarshal(data, &envelope))
	req.NotZero(envelope.Payload.Code)
	req.NotEmpty(envelope.Payload.Message)
}

func TestProcessInboundChatRead(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)
	ctx := context.Background()

	bob := f.session(t, "bob")

	saved, cerr := f.messages.Send(ctx, &model.Message{
		SenderID:   "alice",
		ReceiverID: "bob",
		Content:    "unread",
	})
	req.Nil(cerr)

	frame := `{"type":"chat.read","payload":{"conversationId":"` + saved.ConversationID + `"}}`
	bob.processInboundFrame([]byte(frame))

	conv, err := f.store.FindConversation(ctx, saved.ConversationID)
	req.NoError(err)
	req.Zero(conv.UnreadCount)

	stored, err := f.store.ListMessagesByConversation(ctx, saved.ConversationID)
	req.NoError(err)
	req.Len(stored, 1)
	req.True(stored[0].Read)
}

func TestProcessInboundGarbage(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)

	alice := f.session(t, "alice")

	// Invalid JSON and unsupported types are dropped without a response.
	alice.processInboundFrame([]byte(`not json`))
	alice.processInboundFrame([]byte(`{"type":"chat.unknown","payload":{}}`))
	req.Empty(alice.send)
}
