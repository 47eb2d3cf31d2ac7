package chat

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"dmchat/internal/app/model"
	"dmchat/internal/app/store"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/randx"
)

// MaxContentBytes is the maximum allowed size of message content.
const MaxContentBytes = 5000

// MessageService persists messages and keeps conversation summaries current.
type MessageService struct {
	store         store.Store
	conversations *ConversationService
	logger        zerolog.Logger
}

// NewMessageService constructs a MessageService.
func NewMessageService(st store.Store, conversations *ConversationService) *MessageService {
	return &MessageService{
		store:         st,
		conversations: conversations,
		logger:        logx.Logger().With().Str("component", "MessageService").Logger(),
	}
}

// Send validates, stamps and persists a message, then updates the owning
// conversation's summary. The summary update runs after the message write
// and its failure is surfaced without rolling the message back; because the
// counter increment is atomic at the store boundary, a caller retrying the
// whole operation recomputes from current state rather than replaying a
// stale snapshot.
func (s *MessageService) Send(ctx context.Context, msg *model.Message) (*model.Message, *errs.CustomError) {
	if strings.TrimSpace(msg.Content) == "" {
		return nil, errs.NewError(errs.ErrEmptyContent)
	}
	if len(msg.Content) > MaxContentBytes {
		return nil, errs.NewError(errs.ErrMessageContentTooLong)
	}

	if msg.Timestamp == "" {
		msg.Timestamp = NowTimestamp()
	}

	conv, cerr := s.conversations.Resolve(ctx, msg.SenderID, msg.ReceiverID)
	if cerr != nil {
		return nil, cerr
	}

	msg.ConversationID = conv.ID
	msg.Read = false

	sender, err := s.store.FindUser(ctx, msg.SenderID)
	if err != nil {
		return nil, mapStoreErr(err, errs.ErrUserNotFound)
	}
	msg.Sender = &model.SenderInfo{ID: sender.ID, Name: sender.Name}

	if msg.ID == "" {
		msg.ID = randx.NewID()
	}

	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, mapStoreErr(err, errs.ErrConversationNotFound)
	}

	if err := s.store.UpdateConversationSummary(ctx, conv.ID, msg.Content, nowDisplayTime()); err != nil {
		s.logger.Error().
			Err(err).
			Str("conversation_id", conv.ID).
			Str("message_id", msg.ID).
			Msg("Message persisted but summary update failed.")
		return nil, mapStoreErr(err, errs.ErrConversationNotFound)
	}

	s.logger.Info().
		Str("message_id", msg.ID).
		Str("conversation_id", conv.ID).
		Str("sender_id", msg.SenderID).
		Str("receiver_id", msg.ReceiverID).
		Msg("Message saved.")

	return msg, nil
}

// History resolves the conversation between the two users (creating it when
// absent, mirroring Send) and returns its messages in insertion order.
// Rows missing the denormalized sender summary get it backfilled by user
// lookup; a failed backfill leaves the summary empty rather than failing
// the whole read.
func (s *MessageService) History(ctx context.Context, userA, userB string) ([]model.Message, *errs.CustomError) {
	conv, cerr := s.conversations.Resolve(ctx, userA, userB)
	if cerr != nil {
		return nil, cerr
	}

	messages, err := s.store.ListMessagesByConversation(ctx, conv.ID)
	if err != nil {
		return nil, mapStoreErr(err, errs.ErrConversationNotFound)
	}

	for i := range messages {
		if messages[i].Sender != nil {
			continue
		}
		sender, err := s.store.FindUser(ctx, messages[i].SenderID)
		if err != nil {
			s.logger.Warn().
				Str("message_id", messages[i].ID).
				Str("sender_id", messages[i].SenderID).
				Msg("Could not backfill sender summary.")
			continue
		}
		messages[i].Sender = &model.SenderInfo{ID: sender.ID, Name: sender.Name}
	}

	return messages, nil
}

// MarkRead flips the read flag on every message in the conversation
// addressed to receiverID, then resets the conversation's unread counter.
// Both steps run even when no message matches.
func (s *MessageService) MarkRead(ctx context.Context, conversationID, receiverID string) *errs.CustomError {
	if _, err := s.store.FindConversation(ctx, conversationID); err != nil {
		return mapStoreErr(err, errs.ErrConversationNotFound)
	}

	if err := s.store.MarkMessagesRead(ctx, conversationID, receiverID); err != nil {
		return mapStoreErr(err, errs.ErrConversationNotFound)
	}

	if err := s.store.ResetUnread(ctx, conversationID); err != nil {
		return mapStoreErr(err, errs.ErrConversationNotFound)
	}

	s.logger.Info().
		Str("conversation_id", conversationID).
		Str("receiver_id", receiverID).
		Msg("Conversation marked read.")

	return nil
}
