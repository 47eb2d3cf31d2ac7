package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	req := require.New(t)

	payload := &Payload{
		ID:          "3f1c9a4e-0000-0000-0000-000000000001",
		Name:        "Alice",
		PhoneNumber: "+111",
	}

	tokenString, err := GenerateToken(payload, "test-secret", time.Minute)
	req.NoError(err)
	req.NotEmpty(tokenString)

	parsed, err := ParseToken(tokenString, "test-secret")
	req.NoError(err)
	req.Equal(payload.ID, parsed.ID)
	req.Equal("Alice", parsed.Name)
	req.Equal("+111", parsed.PhoneNumber)
	req.Equal(TokenIssuer, parsed.Issuer)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	req := require.New(t)

	tokenString, err := GenerateToken(&Payload{ID: "u1"}, "secret-a", time.Minute)
	req.NoError(err)

	_, err = ParseToken(tokenString, "secret-b")
	req.Error(err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	req := require.New(t)

	tokenString, err := GenerateToken(&Payload{ID: "u1"}, "test-secret", -time.Minute)
	req.NoError(err)

	_, err = ParseToken(tokenString, "test-secret")
	req.Error(err)
}
