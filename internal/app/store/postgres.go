package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dmchat/internal/app/db"
	"dmchat/internal/app/model"
)

const defaultOpTimeout = 5 * time.Second

// Postgres implements Store on top of a pgx connection pool. Every operation
// runs under a bounded timeout; expired calls surface as ErrUnavailable.
type Postgres struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgres wraps the given pool. A non-positive timeout falls back to the
// package default.
func NewPostgres(pool *pgxpool.Pool, timeout time.Duration) *Postgres {
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return &Postgres{pool: pool, timeout: timeout}
}

func (p *Postgres) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.timeout)
}

// wrapErr translates driver errors into the store sentinels.
func wrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}

const userColumns = `id::text, name, phone_number, password_hash, status, avatar_url`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.PhoneNumber, &u.PasswordHash, &u.Status, &u.AvatarURL)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}

func (p *Postgres) FindUser(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	row := p.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id)
	return scanUser(row)
}

func (p *Postgres) FindUserByPhone(ctx context.Context, phone string) (*model.User, error) {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	row := p.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone_number = $1`, phone)
	return scanUser(row)
}

func (p *Postgres) FindUsersByNameContains(ctx context.Context, substr string) ([]model.User, error) {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE name ILIKE '%' || $1 || '%' ORDER BY name`, substr)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (p *Postgres) ListUsers(ctx context.Context) ([]model.User, error) {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY name`)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]model.User, error) {
	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.PhoneNumber, &u.PasswordHash, &u.Status, &u.AvatarURL); err != nil {
			return nil, wrapErr(err)
		}
		users = append(users, u)
	}
	return users, wrapErr(rows.Err())
}

func (p *Postgres) SaveUser(ctx context.Context, u *model.User) error {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, name, phone_number, password_hash, status, avatar_url)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.PhoneNumber, u.PasswordHash, u.Status, u.AvatarURL)
	return wrapErr(err)
}

func (p *Postgres) UpdateUser(ctx context.Context, u *model.User) error {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	tag, err := p.pool.Exec(ctx,
		`UPDATE users
		 SET name = $2, phone_number = $3, password_hash = $4, status = $5, avatar_url = $6
		 WHERE id = $1::uuid`,
		u.ID, u.Name, u.PhoneNumber, u.PasswordHash, u.Status, u.AvatarURL)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const conversationColumns = `id::text, sender_id::text, receiver_id::text, name,
	last_message, COALESCE(last_message_time, ''), unread_count, online, avatar_color, category`

func scanConversation(row pgx.Row) (*model.Conversation, error) {
	var c model.Conversation
	err := row.Scan(&c.ID, &c.SenderID, &c.ReceiverID, &c.Name,
		&c.LastMessage, &c.LastMessageTime, &c.UnreadCount, &c.Online, &c.AvatarColor, &c.Category)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &c, nil
}

func (p *Postgres) FindConversation(ctx context.Context, id string) (*model.Conversation, error) {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	row := p.pool.QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = $1::uuid`, id)
	return scanConversation(row)
}

func (p *Postgres) FindConversationByPair(ctx context.Context, senderID, receiverID string) (*model.Conversation, error) {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	row := p.pool.QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations
		 WHERE sender_id = $1::uuid AND receiver_id = $2::uuid`, senderID, receiverID)
	return scanConversation(row)
}

func (p *Postgres) CreateConversation(ctx context.Context, c *model.Conversation) error {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	var lastMessageTime any
	if c.LastMessageTime != "" {
		lastMessageTime = c.LastMessageTime
	}

	_, err := p.pool.Exec(ctx,
		`INSERT INTO conversations
		 (id, sender_id, receiver_id, name, last_message, last_message_time,
		  unread_count, online, avatar_color, category)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.SenderID, c.ReceiverID, c.Name, c.LastMessage, lastMessageTime,
		c.UnreadCount, c.Online, c.AvatarColor, c.Category)
	return wrapErr(err)
}

func (p *Postgres) ListConversationsForUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT `+conversationColumns+` FROM conversations
		 WHERE sender_id = $1::uuid OR receiver_id = $1::uuid
		 ORDER BY created_at`, userID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var conversations []model.Conversation
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.SenderID, &c.ReceiverID, &c.Name,
			&c.LastMessage, &c.LastMessageTime, &c.UnreadCount, &c.Online, &c.AvatarColor, &c.Category); err != nil {
			return nil, wrapErr(err)
		}
		conversations = append(conversations, c)
	}
	return conversations, wrapErr(rows.Err())
}

// UpdateConversationSummary refreshes the last-message fields and increments
// the unread counter in a single statement, so concurrent sends never lose
// an increment.
func (p *Postgres) UpdateConversationSummary(ctx context.Context, id, lastMessage, displayTime string) error {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	tag, err := p.pool.Exec(ctx,
		`UPDATE conversations
		 SET last_message = $2, last_message_time = $3, unread_count = unread_count + 1
		 WHERE id = $1::uuid`,
		id, lastMessage, displayTime)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ResetUnread(ctx context.Context, id string) error {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	tag, err := p.pool.Exec(ctx,
		`UPDATE conversations SET unread_count = 0 WHERE id = $1::uuid`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteConversation(ctx context.Context, id string) error {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	tag, err := p.pool.Exec(ctx,
		`DELETE FROM conversations WHERE id = $1::uuid`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveMessage(ctx context.Context, m *model.Message) error {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	var senderName any
	if m.Sender != nil {
		senderName = m.Sender.Name
	}

	_, err := p.pool.Exec(ctx,
		`INSERT INTO messages
		 (id, conversation_id, sender_id, receiver_id, content, sent_at, read, sender_name)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4::uuid, $5, $6, $7, $8)`,
		m.ID, m.ConversationID, m.SenderID, m.ReceiverID, m.Content, m.Timestamp, m.Read, senderName)
	return wrapErr(err)
}

// ListMessagesByConversation returns the conversation's messages in insertion
// order (the seq column), oldest first.
func (p *Postgres) ListMessagesByConversation(ctx context.Context, conversationID string) ([]model.Message, error) {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT id::text, conversation_id::text, sender_id::text, receiver_id::text,
		        content, sent_at, read, sender_name
		 FROM messages WHERE conversation_id = $1::uuid ORDER BY seq`, conversationID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		var senderName *string
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID,
			&m.Content, &m.Timestamp, &m.Read, &senderName); err != nil {
			return nil, wrapErr(err)
		}
		if senderName != nil {
			m.Sender = &model.SenderInfo{ID: m.SenderID, Name: *senderName}
		}
		messages = append(messages, m)
	}
	return messages, wrapErr(rows.Err())
}

// MarkMessagesRead flips the read flag for every unread message addressed to
// the receiver. Matching zero rows is not an error.
func (p *Postgres) MarkMessagesRead(ctx context.Context, conversationID, receiverID string) error {
	ctx, cancel := p.opCtx(ctx)
	defer cancel()

	_, err := p.pool.Exec(ctx,
		`UPDATE messages SET read = TRUE
		 WHERE conversation_id = $1::uuid AND receiver_id = $2::uuid AND read = FALSE`,
		conversationID, receiverID)
	return wrapErr(err)
}
