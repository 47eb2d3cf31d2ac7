/*
Package model defines the persistent entities of the messaging system:
users, two-party conversations, and the messages exchanged within them.
*/
package model

// User presence status values.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// User represents a registered account.
type User struct {
	// ID is the unique, immutable account identifier.
	ID string `json:"id"`

	// Name is the display name shown to other users.
	Name string `json:"name"`

	// PhoneNumber is the unique handle the account was registered with.
	PhoneNumber string `json:"phoneNumber"`

	// PasswordHash is the bcrypt hash of the account password. Never serialized.
	PasswordHash string `json:"-"`

	// Status is the presence state, StatusOnline or StatusOffline.
	Status string `json:"status"`

	// AvatarURL is the storage key of the user's uploaded avatar, if any.
	AvatarURL string `json:"avatarUrl,omitempty"`
}
