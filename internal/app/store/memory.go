package store

import (
	"context"
	"strings"
	"sync"

	"dmchat/internal/app/model"
)

// Memory implements Store with in-process maps. It mirrors the Postgres
// semantics exactly: the unordered-pair uniqueness check and the unread
// counter increment both happen under the write lock, so it is safe for the
// concurrency tests that drive it from many goroutines.
type Memory struct {
	mu sync.RWMutex

	users     map[string]model.User
	userOrder []string

	conversations map[string]model.Conversation
	convOrder     []string

	messages map[string][]model.Message
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]model.User),
		conversations: make(map[string]model.Conversation),
		messages:      make(map[string][]model.Message),
	}
}

func (m *Memory) FindUser(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) FindUserByPhone(_ context.Context, phone string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.userOrder {
		if u := m.users[id]; u.PhoneNumber == phone {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindUsersByNameContains(_ context.Context, substr string) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(substr)

	var users []model.User
	for _, id := range m.userOrder {
		u := m.users[id]
		if strings.Contains(strings.ToLower(u.Name), needle) {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]model.User, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		users = append(users, m.users[id])
	}
	return users, nil
}

func (m *Memory) SaveUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.userOrder {
		if existing := m.users[id]; existing.PhoneNumber == u.PhoneNumber && existing.ID != u.ID {
			return ErrDuplicate
		}
	}

	if _, ok := m.users[u.ID]; !ok {
		m.userOrder = append(m.userOrder, u.ID)
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) UpdateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) FindConversation(_ context.Context, id string) (*model.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *Memory) FindConversationByPair(_ context.Context, senderID, receiverID string) (*model.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.convOrder {
		c := m.conversations[id]
		if c.SenderID == senderID && c.ReceiverID == receiverID {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateConversation(_ context.Context, c *model.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.convOrder {
		existing := m.conversations[id]
		samePair := (existing.SenderID == c.SenderID && existing.ReceiverID == c.ReceiverID) ||
			(existing.SenderID == c.ReceiverID && existing.ReceiverID == c.SenderID)
		if samePair {
			return ErrDuplicate
		}
	}

	m.conversations[c.ID] = *c
	m.convOrder = append(m.convOrder, c.ID)
	return nil
}

func (m *Memory) ListConversationsForUser(_ context.Context, userID string) ([]model.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var conversations []model.Conversation
	for _, id := range m.convOrder {
		c := m.conversations[id]
		if c.SenderID == userID || c.ReceiverID == userID {
			conversations = append(conversations, c)
		}
	}
	return conversations, nil
}

func (m *Memory) UpdateConversationSummary(_ context.Context, id, lastMessage, displayTime string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[id]
	if !ok {
		return ErrNotFound
	}
	c.LastMessage = lastMessage
	c.LastMessageTime = displayTime
	c.UnreadCount++
	m.conversations[id] = c
	return nil
}

func (m *Memory) ResetUnread(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[id]
	if !ok {
		return ErrNotFound
	}
	c.UnreadCount = 0
	m.conversations[id] = c
	return nil
}

func (m *Memory) DeleteConversation(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conversations[id]; !ok {
		return ErrNotFound
	}
	delete(m.conversations, id)
	delete(m.messages, id)
	for i, cid := range m.convOrder {
		if cid == id {
			m.convOrder = append(m.convOrder[:i], m.convOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) SaveMessage(_ context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *msg
	if msg.Sender != nil {
		sender := *msg.Sender
		stored.Sender = &sender
	}
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], stored)
	return nil
}

func (m *Memory) ListMessagesByConversation(_ context.Context, conversationID string) ([]model.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.messages[conversationID]
	messages := make([]model.Message, len(stored))
	for i, msg := range stored {
		messages[i] = msg
		if msg.Sender != nil {
			sender := *msg.Sender
			messages[i].Sender = &sender
		}
	}
	return messages, nil
}

func (m *Memory) MarkMessagesRead(_ context.Context, conversationID, receiverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.messages[conversationID]
	for i := range stored {
		if stored[i].ReceiverID == receiverID {
			stored[i].Read = true
		}
	}
	return nil
}
