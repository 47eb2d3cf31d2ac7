package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

// HandleListConversations returns the requester's conversations, most recent
// activity first.
func HandleListConversations(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		views, customErr := deps.Conversations.ListForUser(r.Context(), identity.ID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"conversations": views})
	}
}

// HandleGetConversation returns a single conversation by identifier.
func HandleGetConversation(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireIdentity(w, r) == nil {
			return
		}

		conversationID := chi.URLParam(r, "id")
		if conversationID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		conv, customErr := deps.Conversations.Get(r.Context(), conversationID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"conversation": conv})
	}
}

type CreateConversationInput struct {
	ReceiverID string `json:"receiverId"`
}

// HandleCreateConversation resolves the conversation between the requester
// and the given receiver, creating it when none exists. Resolving the same
// pair again, in either direction, returns the existing row.
func HandleCreateConversation(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		var input CreateConversationInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.ReceiverID == "" || input.ReceiverID == identity.ID {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		conv, customErr := deps.Conversations.Resolve(r.Context(), identity.ID, input.ReceiverID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"conversation": conv})
	}
}

// HandleMarkConversationRead marks every message addressed to the requester
// in the conversation as read and resets the unread counter.
func HandleMarkConversationRead(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		conversationID := chi.URLParam(r, "id")
		if conversationID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if customErr := deps.Messages.MarkRead(r.Context(), conversationID, identity.ID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"conversationId": conversationID})
	}
}

// HandleDeleteConversation removes a conversation and its messages.
func HandleDeleteConversation(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireIdentity(w, r) == nil {
			return
		}

		conversationID := chi.URLParam(r, "id")
		if conversationID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if customErr := deps.Conversations.Delete(r.Context(), conversationID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"conversationId": conversationID})
	}
}
