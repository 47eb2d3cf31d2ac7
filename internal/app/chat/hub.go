package chat

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"dmchat/internal/app/model"
	"dmchat/internal/app/store"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
)

// hubShardCount is the number of session-map shards. Sharding keeps
// unrelated users' connect/deliver traffic off a shared lock.
const hubShardCount = 16

// Hub is the presence registry and delivery fan-out. It tracks which users
// have live WebSocket sessions (one user can hold several, multi-device),
// persists online/offline transitions, and pushes persisted messages and
// presence changes to the relevant session send queues.
type Hub struct {
	shards [hubShardCount]*shard
	store  store.Store
	logger zerolog.Logger
}

type shard struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]struct{}
}

// NewHub constructs a Hub backed by the given store.
func NewHub(st store.Store) *Hub {
	h := &Hub{
		store:  st,
		logger: logx.Logger().With().Str("component", "Hub").Logger(),
	}
	for i := range h.shards {
		h.shards[i] = &shard{sessions: make(map[string]map[*Client]struct{})}
	}
	return h
}

func (h *Hub) shardFor(userID string) *shard {
	hash := fnv.New32a()
	hash.Write([]byte(userID))
	return h.shards[hash.Sum32()%hubShardCount]
}

// Register adds a live session for the client's user.
func (h *Hub) Register(c *Client) {
	sh := h.shardFor(c.user.ID)

	sh.mu.Lock()
	set, ok := sh.sessions[c.user.ID]
	if !ok {
		set = make(map[*Client]struct{})
		sh.sessions[c.user.ID] = set
	}
	set[c] = struct{}{}
	total := len(set)
	sh.mu.Unlock()

	h.logger.Info().
		Str("user_id", c.user.ID).
		Int("sessions", total).
		Msg("Session registered.")
}

// Unregister removes a session and returns how many sessions the user still
// holds, so callers know when the last device went away.
func (h *Hub) Unregister(c *Client) int {
	sh := h.shardFor(c.user.ID)

	sh.mu.Lock()
	set, ok := sh.sessions[c.user.ID]
	if ok {
		delete(set, c)
		if len(set) == 0 {
			delete(sh.sessions, c.user.ID)
		}
	}
	remaining := len(set)
	sh.mu.Unlock()

	h.logger.Info().
		Str("user_id", c.user.ID).
		Int("sessions", remaining).
		Msg("Session unregistered.")

	return remaining
}

// SessionCount reports the number of live sessions for a user.
func (h *Hub) SessionCount(userID string) int {
	sh := h.shardFor(userID)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	return len(sh.sessions[userID])
}

// Connect marks the user online, persists the transition and broadcasts it
// on the presence topic. Connecting an already-online user re-persists and
// re-broadcasts; the operation is idempotent with at-least-once semantics.
func (h *Hub) Connect(ctx context.Context, userID string) (*model.User, *errs.CustomError) {
	return h.setStatus(ctx, userID, model.StatusOnline)
}

// Disconnect marks the user offline, symmetrically to Connect.
func (h *Hub) Disconnect(ctx context.Context, userID string) (*model.User, *errs.CustomError) {
	return h.setStatus(ctx, userID, model.StatusOffline)
}

func (h *Hub) setStatus(ctx context.Context, userID, status string) (*model.User, *errs.CustomError) {
	u, err := h.store.FindUser(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err, errs.ErrUserNotFound)
	}

	u.Status = status
	if err := h.store.UpdateUser(ctx, u); err != nil {
		return nil, mapStoreErr(err, errs.ErrUserNotFound)
	}

	h.BroadcastPresence(u)

	h.logger.Info().
		Str("user_id", userID).
		Str("status", status).
		Msg("Presence updated.")

	return u, nil
}

// Deliver fans a persisted message out to every live session of the receiver
// and of the sender (so the sender's other devices see the echo). Delivery
// is best-effort: sessions with full queues are skipped and the send path is
// never failed.
func (h *Hub) Deliver(msg *model.Message) {
	data, err := marshalEvent(EventMessageNew, msg)
	if err != nil {
		h.logger.Error().Err(err).Str("message_id", msg.ID).Msg("Error marshaling message for delivery.")
		return
	}

	h.pushToUser(msg.ReceiverID, data)
	if msg.SenderID != msg.ReceiverID {
		h.pushToUser(msg.SenderID, data)
	}
}

// pushToUser queues data on every session of the given user, dropping on
// full queues.
func (h *Hub) pushToUser(userID string, data []byte) {
	sh := h.shardFor(userID)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	for c := range sh.sessions[userID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn().
				Str("user_id", userID).
				Msg("Session send queue full, dropping delivery.")
		}
	}
}

// BroadcastPresence pushes a presence change to every live session on the
// shared presence topic. Best-effort, same drop policy as Deliver.
func (h *Hub) BroadcastPresence(u *model.User) {
	data, err := marshalEvent(EventPresenceChange, u)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", u.ID).Msg("Error marshaling presence event.")
		return
	}

	for _, sh := range h.shards {
		sh.mu.RLock()
		for _, set := range sh.sessions {
			for c := range set {
				select {
				case c.send <- data:
				default:
				}
			}
		}
		sh.mu.RUnlock()
	}
}

// Shutdown closes every session send queue, terminating the write pumps.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub...")

	for _, sh := range h.shards {
		sh.mu.Lock()
		for _, set := range sh.sessions {
			for c := range set {
				c.closeSend()
			}
		}
		sh.sessions = make(map[string]map[*Client]struct{})
		sh.mu.Unlock()
	}

	h.logger.Info().Msg("Hub shutdown complete.")
}
