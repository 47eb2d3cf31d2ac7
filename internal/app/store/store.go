/*
Package store defines the persistence boundary of the messaging system and
its implementations.

The Store interface exposes the document-style operations the services need:
simple lookups, equality/predicate queries, and the two mutations that must
be atomic at the store boundary (unread counter increments and read-flag
flips). Implementations translate backend failures into the package's
sentinel errors so services never depend on driver error types.
*/
package store

import (
	"context"
	"errors"

	"dmchat/internal/app/model"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("store: record not found")

	// ErrDuplicate is returned when an insert violates a uniqueness rule
	// (phone number, or the one-conversation-per-pair constraint).
	ErrDuplicate = errors.New("store: duplicate record")

	// ErrUnavailable is returned for transient infrastructure failures,
	// including operations that exceeded their bounded timeout. Callers may
	// retry the whole logical operation.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the persistence interface shared by all services.
type Store interface {
	// Users.
	FindUser(ctx context.Context, id string) (*model.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*model.User, error)
	FindUsersByNameContains(ctx context.Context, substr string) ([]model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SaveUser(ctx context.Context, u *model.User) error
	UpdateUser(ctx context.Context, u *model.User) error

	// Conversations.
	FindConversation(ctx context.Context, id string) (*model.Conversation, error)
	FindConversationByPair(ctx context.Context, senderID, receiverID string) (*model.Conversation, error)
	CreateConversation(ctx context.Context, c *model.Conversation) error
	ListConversationsForUser(ctx context.Context, userID string) ([]model.Conversation, error)
	UpdateConversationSummary(ctx context.Context, id, lastMessage, displayTime string) error
	ResetUnread(ctx context.Context, id string) error
	DeleteConversation(ctx context.Context, id string) error

	// Messages.
	SaveMessage(ctx context.Context, m *model.Message) error
	ListMessagesByConversation(ctx context.Context, conversationID string) ([]model.Message, error)
	MarkMessagesRead(ctx context.Context, conversationID, receiverID string) error
}
