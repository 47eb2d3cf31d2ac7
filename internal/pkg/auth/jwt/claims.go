package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims carried by a dmchat identity token.
type Payload struct {
	// StandardClaims embeds the JWT standard fields (Exp, Iat, Iss) used for
	// token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the user's account identifier.
	ID string `json:"id"`

	// Name is the user's display name at token issue time.
	Name string `json:"name"`

	// PhoneNumber is the unique handle the account was registered with.
	PhoneNumber string `json:"phone_number"`
}
