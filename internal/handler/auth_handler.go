/*
Package handler provides HTTP handler functions for authentication, user
discovery, conversations and messaging.
*/
package handler

import (
	"errors"
	"net/http"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"dmchat/internal/app/model"
	"dmchat/internal/app/store"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/randx"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

var (
	phoneRegex = regexp.MustCompile(`^1[3-9]\d{9}$`)
)

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= 30
}

func validPassword(password string) bool {
	n := utf8.RuneCountInString(password)
	return n >= 6 && n <= 50
}

// userResponse is the wire shape for a user in auth responses.
func userResponse(u *model.User) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"name":        u.Name,
		"phoneNumber": u.PhoneNumber,
		"status":      u.Status,
		"avatarUrl":   u.AvatarURL,
	}
}

func issueToken(u *model.User, secret string) (string, error) {
	payload := &jwt.Payload{
		ID:          u.ID,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
	}
	return jwt.GenerateToken(payload, secret, jwt.UserIdentityExpiration)
}

type RegisterInput struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// HandleRegister processes the request to create a new user account.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !validName(input.Name) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidName))
			return
		}

		if !phoneRegex.MatchString(input.PhoneNumber) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPhoneNumber))
			return
		}

		if !validPassword(input.Password) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		user := &model.User{
			ID:           randx.NewID(),
			Name:         input.Name,
			PhoneNumber:  input.PhoneNumber,
			PasswordHash: string(hashedPassword),
			Status:       model.StatusOffline,
		}

		if err := deps.Store.SaveUser(r.Context(), user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				logx.Warn("registration conflict: phone number already exists", "phone_number", input.PhoneNumber)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		tokenString, err := issueToken(user, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "failed to generate token after registration")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": tokenString,
			"user":  userResponse(user),
		})
	}
}

type LoginInput struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// HandleLogin verifies user credentials, marks the user online and issues a
// JWT token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		user, err := deps.Store.FindUserByPhone(r.Context(), input.PhoneNumber)
		if err != nil {
			logx.Warn("login: user fetch failed", "phone_number", input.PhoneNumber, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "phone_number", input.PhoneNumber)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		online, customErr := deps.Hub.Connect(r.Context(), user.ID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, err := issueToken(online, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  userResponse(online),
		})
	}
}

type ResetPasswordInput struct {
	PhoneNumber string `json:"phoneNumber"`
	NewPassword string `json:"newPassword"`
}

// HandleResetPassword replaces the password of the account registered under
// the given phone number.
func HandleResetPassword(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ResetPasswordInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !validPassword(input.NewPassword) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		user, err := deps.Store.FindUserByPhone(r.Context(), input.PhoneNumber)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		user.PasswordHash = string(hashedPassword)
		if err := deps.Store.UpdateUser(r.Context(), user); err != nil {
			logx.Error(err, "failed to update user password", "user_id", user.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": userResponse(user),
		})
	}
}
