package model

// SenderInfo is the denormalized sender summary attached to a message so
// readers do not need a user lookup for the common case.
type SenderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Message is a single persisted chat message. Content is immutable once
// stored; the only permitted mutation is the one-way read flag transition.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`

	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`

	Content string `json:"content"`

	// Timestamp is ISO-8601 UTC with millisecond precision. Stamped at the
	// service boundary when the client did not supply one.
	Timestamp string `json:"timestamp"`

	Read bool `json:"read"`

	// Sender is populated at write time and backfilled at read time when a
	// row predates summary stamping.
	Sender *SenderInfo `json:"sender,omitempty"`
}
