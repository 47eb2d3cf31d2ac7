package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dmchat/internal/app/model"
	"dmchat/internal/app/storage"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

// requireIdentity extracts the authenticated identity or answers 401.
// A nil return means the response has already been written.
func requireIdentity(w http.ResponseWriter, r *http.Request) *jwt.Payload {
	identity := jwt.GetPayloadFromContext(r)
	if identity == nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return nil
	}
	return identity
}

// HandleListUsers returns every registered user except the requester.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		users, err := deps.Store.ListUsers(r.Context())
		if err != nil {
			logx.Error(err, "failed to list users")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		others := make([]model.User, 0, len(users))
		for _, u := range users {
			if u.ID == identity.ID {
				continue
			}
			others = append(others, u)
		}

		resp.RespondSuccess(w, r, map[string]any{"users": others})
	}
}

// HandleSearchUsers finds users by phone number or name fragment, never
// returning the requester.
func HandleSearchUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		query := r.URL.Query().Get("q")
		if query == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		results, customErr := deps.Directory.Search(r.Context(), query, identity.ID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if results == nil {
			results = []model.User{}
		}
		resp.RespondSuccess(w, r, map[string]any{"users": results})
	}
}

// HandleGetUser returns a single user by identifier.
func HandleGetUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireIdentity(w, r) == nil {
			return
		}

		userID := chi.URLParam(r, "id")
		if userID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		user, err := deps.Store.FindUser(r.Context(), userID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": user})
	}
}

// HandleOnlineUsers returns every user currently marked online.
func HandleOnlineUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireIdentity(w, r) == nil {
			return
		}

		online, customErr := deps.Directory.OnlineUsers(r.Context())
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if online == nil {
			online = []model.User{}
		}
		resp.RespondSuccess(w, r, map[string]any{"users": online})
	}
}

// PresignAvatarInput defines the JSON input structure for generating an
// avatar upload URL.
type PresignAvatarInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignAvatarURL generates a time-limited pre-signed URL for
// uploading the requester's avatar image.
func HandlePresignAvatarURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := storage.ValidateAvatarSize(input.FileSize); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		if err := storage.ValidateAvatarType(input.FileName, input.MimeType); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		avatarKey := storage.AvatarKey(identity.ID, input.FileName)

		url, err := deps.StorageService.PresignUpload(
			r.Context(),
			avatarKey,
			input.MimeType,
			input.FileSize,
			storage.PresignedURLDuration,
		)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"presignedUrl": url,
			"avatarKey":    avatarKey,
			"fileName":     input.FileName,
		})
	}
}

// ConfirmAvatarInput carries the key of an avatar the client finished uploading.
type ConfirmAvatarInput struct {
	AvatarKey string `json:"avatarKey"`
}

// HandleConfirmAvatar verifies the uploaded object exists and records it as
// the requester's avatar, deleting the previous one in the background.
func HandleConfirmAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		var input ConfirmAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.AvatarKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, err := deps.StorageService.GetObjectMetadata(r.Context(), input.AvatarKey); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		user, err := deps.Store.FindUser(r.Context(), identity.ID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		oldKey := user.AvatarURL
		user.AvatarURL = input.AvatarKey

		if err := deps.Store.UpdateUser(r.Context(), user); err != nil {
			logx.Error(err, "failed to update avatar", "user_id", user.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if oldKey != "" && oldKey != input.AvatarKey {
			go func(k string) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = deps.StorageService.Delete(ctx, k)
			}(oldKey)
		}

		resp.RespondSuccess(w, r, map[string]any{"user": user})
	}
}

// HandlePresignAvatarDownload generates a time-limited download URL for an
// avatar object key.
func HandlePresignAvatarDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireIdentity(w, r) == nil {
			return
		}

		avatarKey := r.URL.Query().Get("k")
		if avatarKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		url, err := deps.StorageService.PresignDownload(r.Context(), avatarKey, storage.PresignedURLDuration)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"presignedUrl": url})
	}
}
