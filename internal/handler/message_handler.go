package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dmchat/internal/app/model"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

type SendMessageInput struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// HandleSendMessage persists a message from the requester and pushes it to
// every live session of both parties.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		var input SendMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.ReceiverID == "" || input.ReceiverID == identity.ID {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		msg := &model.Message{
			SenderID:   identity.ID,
			ReceiverID: input.ReceiverID,
			Content:    input.Content,
			Timestamp:  input.Timestamp,
		}

		saved, customErr := deps.Messages.Send(r.Context(), msg)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		deps.Hub.Deliver(saved)

		resp.RespondSuccess(w, r, map[string]any{"message": saved})
	}
}

// HandleGetMessages returns the full message history between the two users,
// oldest first, resolving the conversation if it does not exist yet.
func HandleGetMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		senderID := chi.URLParam(r, "senderId")
		receiverID := chi.URLParam(r, "receiverId")
		if senderID == "" || receiverID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if identity.ID != senderID && identity.ID != receiverID {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		history, customErr := deps.Messages.History(r.Context(), senderID, receiverID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if history == nil {
			history = []model.Message{}
		}
		resp.RespondSuccess(w, r, map[string]any{"messages": history})
	}
}
