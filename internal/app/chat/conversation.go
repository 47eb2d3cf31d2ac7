package chat

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"dmchat/internal/app/model"
	"dmchat/internal/app/store"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/randx"
)

// ConversationService resolves and manages two-party conversations.
type ConversationService struct {
	store  store.Store
	logger zerolog.Logger
}

// NewConversationService constructs a ConversationService backed by the given store.
func NewConversationService(st store.Store) *ConversationService {
	return &ConversationService{
		store:  st,
		logger: logx.Logger().With().Str("component", "ConversationService").Logger(),
	}
}

// mapStoreErr converts a store sentinel into the application error for a
// lookup, using notFoundCode for the missing-record case.
func mapStoreErr(err error, notFoundCode int) *errs.CustomError {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errs.NewError(notFoundCode)
	case errors.Is(err, store.ErrUnavailable):
		return errs.NewError(errs.ErrStoreUnavailable)
	default:
		return errs.NewError(errs.ErrUnknown, err)
	}
}

// Resolve returns the canonical conversation for the unordered pair
// (userA, userB), creating it when no row exists yet. Both orderings are
// checked before creating; a lost create race falls back to re-reading the
// winner's row, so concurrent calls for the same pair converge on one
// conversation.
func (s *ConversationService) Resolve(ctx context.Context, userA, userB string) (*model.Conversation, *errs.CustomError) {
	if _, err := s.store.FindUser(ctx, userA); err != nil {
		return nil, mapStoreErr(err, errs.ErrUserNotFound)
	}
	receiver, err := s.store.FindUser(ctx, userB)
	if err != nil {
		return nil, mapStoreErr(err, errs.ErrUserNotFound)
	}

	if conv, cerr := s.findEitherOrdering(ctx, userA, userB); cerr != nil {
		return nil, cerr
	} else if conv != nil {
		return conv, nil
	}

	newConv := &model.Conversation{
		ID:          randx.NewID(),
		SenderID:    userA,
		ReceiverID:  userB,
		Name:        receiver.Name,
		LastMessage: "",
		UnreadCount: 0,
		Online:      false,
		AvatarColor: randx.AvatarColor(),
		Category:    model.DefaultCategory,
	}

	err = s.store.CreateConversation(ctx, newConv)
	if err == nil {
		s.logger.Info().
			Str("conversation_id", newConv.ID).
			Str("user_a", userA).
			Str("user_b", userB).
			Msg("Conversation created.")
		return newConv, nil
	}

	if errors.Is(err, store.ErrDuplicate) {
		// Lost the create race; the winner's row must exist now.
		conv, cerr := s.findEitherOrdering(ctx, userA, userB)
		if cerr != nil {
			return nil, cerr
		}
		if conv != nil {
			return conv, nil
		}
		return nil, errs.NewError(errs.ErrConversationNotFound)
	}

	return nil, mapStoreErr(err, errs.ErrConversationNotFound)
}

// findEitherOrdering looks the pair up in both stored orderings. A nil, nil
// return means no row exists.
func (s *ConversationService) findEitherOrdering(ctx context.Context, userA, userB string) (*model.Conversation, *errs.CustomError) {
	conv, err := s.store.FindConversationByPair(ctx, userA, userB)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, mapStoreErr(err, errs.ErrConversationNotFound)
	}

	conv, err = s.store.FindConversationByPair(ctx, userB, userA)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, mapStoreErr(err, errs.ErrConversationNotFound)
	}

	return nil, nil
}

// Get returns the conversation with the given identifier.
func (s *ConversationService) Get(ctx context.Context, id string) (*model.Conversation, *errs.CustomError) {
	conv, err := s.store.FindConversation(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, errs.ErrConversationNotFound)
	}
	return conv, nil
}

// Delete removes a conversation. Administrative use only; normal flows never
// delete conversations.
func (s *ConversationService) Delete(ctx context.Context, id string) *errs.CustomError {
	if err := s.store.DeleteConversation(ctx, id); err != nil {
		return mapStoreErr(err, errs.ErrConversationNotFound)
	}

	s.logger.Info().Str("conversation_id", id).Msg("Conversation deleted.")
	return nil
}

// ConversationView is the conversation-list projection returned to clients,
// with the counterpart's display name resolved for the requesting user.
type ConversationView struct {
	ID              string `json:"id"`
	ChatID          string `json:"chatId"`
	DisplayName     string `json:"displayName"`
	LastMessage     string `json:"lastMessage"`
	LastMessageTime string `json:"lastMessageTime,omitempty"`
	UnreadCount     int    `json:"unreadCount"`
	Online          bool   `json:"online"`
	AvatarColor     string `json:"avatarColor"`
	Category        string `json:"category"`
	SenderID        string `json:"senderId"`
	ReceiverID      string `json:"receiverId"`
}

// ListForUser returns the user's conversations, most recent summary first,
// threads without a last message at the end.
func (s *ConversationService) ListForUser(ctx context.Context, userID string) ([]ConversationView, *errs.CustomError) {
	if _, err := s.store.FindUser(ctx, userID); err != nil {
		return nil, mapStoreErr(err, errs.ErrUserNotFound)
	}

	conversations, err := s.store.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err, errs.ErrUserNotFound)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		if conversations[i].LastMessageTime == "" {
			return false
		}
		if conversations[j].LastMessageTime == "" {
			return true
		}
		return conversations[i].LastMessageTime > conversations[j].LastMessageTime
	})

	views := make([]ConversationView, 0, len(conversations))
	for _, conv := range conversations {
		otherUserID := conv.ReceiverID
		if conv.ReceiverID == userID {
			otherUserID = conv.SenderID
		}

		displayName := conv.Name
		if other, err := s.store.FindUser(ctx, otherUserID); err == nil {
			displayName = other.Name
		}

		views = append(views, ConversationView{
			ID:              conv.ID,
			ChatID:          conv.ChatID(),
			DisplayName:     displayName,
			LastMessage:     conv.LastMessage,
			LastMessageTime: conv.LastMessageTime,
			UnreadCount:     conv.UnreadCount,
			Online:          conv.Online,
			AvatarColor:     conv.AvatarColor,
			Category:        conv.Category,
			SenderID:        conv.SenderID,
			ReceiverID:      conv.ReceiverID,
		})
	}

	return views, nil
}
