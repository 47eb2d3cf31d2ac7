package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dmchat/internal/pkg/errs"
)

func TestValidateAvatarSize(t *testing.T) {
	req := require.New(t)

	req.Nil(ValidateAvatarSize(1))
	req.Nil(ValidateAvatarSize(MaxAvatarSize))

	err := ValidateAvatarSize(0)
	req.NotNil(err)
	req.Equal(errs.ErrInvalidParams, err.Code)

	err = ValidateAvatarSize(MaxAvatarSize + 1)
	req.NotNil(err)
	req.Equal(errs.ErrAvatarTooLarge, err.Code)
}

func TestValidateAvatarType(t *testing.T) {
	req := require.New(t)

	req.Nil(ValidateAvatarType("me.jpg", "image/jpeg"))
	req.Nil(ValidateAvatarType("me.JPEG", "IMAGE/JPEG"))
	req.Nil(ValidateAvatarType("me.png", "image/png"))
	req.Nil(ValidateAvatarType("me.webp", "image/webp"))

	cases := []struct {
		name     string
		mimeType string
	}{
		{"me.gif", "image/gif"},
		{"me.exe", "application/octet-stream"},
		{"me", "image/png"},
		{"me.png", "image/jpeg"},
		{"me.txt", "image/png"},
	}
	for _, c := range cases {
		err := ValidateAvatarType(c.name, c.mimeType)
		req.NotNil(err, "name=%s mime=%s", c.name, c.mimeType)
		req.Equal(errs.ErrAvatarTypeInvalid, err.Code)
	}
}

func TestAvatarKey(t *testing.T) {
	req := require.New(t)

	req.Equal("avatars/u1.jpg", AvatarKey("u1", "Photo.JPG"))
	req.Equal("avatars/u1.png", AvatarKey("u1", "a.png"))
}
