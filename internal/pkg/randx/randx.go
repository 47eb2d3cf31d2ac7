/*
Package randx provides identifier and random-value generation.

It covers UUID entity identifiers and the random avatar colors assigned to
new conversations.
*/
package randx

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// avatarPalette holds the colors a new conversation can be assigned.
// Values mirror the palette the web client renders.
var avatarPalette = []string{
	"#F44336", "#E91E63", "#9C27B0", "#673AB7",
	"#3F51B5", "#2196F3", "#009688", "#4CAF50",
	"#FF9800", "#795548",
}

// NewID generates a UUID v4 string used as the identifier for users,
// conversations and messages.
func NewID() string {
	return uuid.New().String()
}

// AvatarColor picks a random color from the avatar palette using crypto/rand.
// On the (practically impossible) reader failure it falls back to the first
// palette entry rather than returning an error to callers.
func AvatarColor() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(avatarPalette))))
	if err != nil {
		return avatarPalette[0]
	}

	return avatarPalette[n.Int64()]
}
