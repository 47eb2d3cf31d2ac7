package model

// DefaultCategory is the category tag assigned to new conversations.
const DefaultCategory = "all"

// Conversation is the persistent record of a two-party message thread.
// SenderID and ReceiverID record which side first opened the thread; they
// carry no directional meaning afterwards, and at most one row exists per
// unordered participant pair.
type Conversation struct {
	ID string `json:"id"`

	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`

	// Name is the display name captured at creation time, kept for
	// backward compatibility with older clients.
	Name string `json:"name"`

	// LastMessage and LastMessageTime are the denormalized summary of the
	// most recent message, refreshed on every send.
	LastMessage     string `json:"lastMessage"`
	LastMessageTime string `json:"lastMessageTime,omitempty"`

	// UnreadCount is incremented once per persisted message and reset to
	// zero when the thread is marked read.
	UnreadCount int `json:"unreadCount"`

	// UI hint fields.
	Online      bool   `json:"online"`
	AvatarColor string `json:"avatarColor"`

	Category string `json:"category"`
}

// ChatID returns the display identifier derived from the participant pair.
// It is a client-side convenience, never a lookup key.
func (c Conversation) ChatID() string {
	return c.SenderID + "_" + c.ReceiverID
}
