/*
Package chat contains the core logic for two-party conversations, message
delivery and presence.

This file defines the Client struct, representing an active WebSocket
session. It manages the session's lifecycle, the message communication loops
(ReadPump and WritePump), and interaction with the Hub.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dmchat/internal/app/model"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxFrameSize = 8192
)

// inbound frame types accepted from the client.
const (
	InboundChatMessage = "chat.message"
	InboundChatRead    = "chat.read"
)

// Client struct represents an active WebSocket session and its associated user.
type Client struct {
	// the hub this session is registered with.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// associated authenticated user.
	user *model.User

	// message service used to persist inbound frames.
	messages *MessageService

	// a buffered channel used to queue events waiting to be sent to the client.
	send chan []byte

	// guards against closing the send channel twice.
	closeOnce sync.Once

	// structured logger with session context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance.
func NewClient(hub *Hub, wsConn *websocket.Conn, user *model.User, messages *MessageService) *Client {
	clientLogger := logx.Logger().With().
		Str("user_id", user.ID).
		Logger()

	client := &Client{
		hub:      hub,
		conn:     wsConn,
		user:     user,
		messages: messages,
		send:     make(chan []byte, 256),
		logger:   clientLogger,
	}

	return client
}

// ReadPump handles reading frames from the WebSocket connection.
// It handles heartbeats (Pong), frame parsing, and performs cleanup upon
// connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (Client close/going away)")
			}
			break
		}

		c.processInboundFrame(frameBytes)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the client's
// ReadPump terminates. The user goes offline only when the last session for
// that user is gone.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	remaining := c.hub.Unregister(c)
	if remaining == 0 {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()

		if _, err := c.hub.Disconnect(disconnectCtx, c.user.ID); err != nil {
			c.logger.Error().Int("code", err.Code).Str("error", err.Message).Msg("Failed to mark user offline")
		}
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// processInboundFrame handles raw byte frames received from the client.
func (c *Client) processInboundFrame(frameBytes []byte) {
	var inbound struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	if err := json.Unmarshal(frameBytes, &inbound); err != nil {
		c.logger.Warn().Err(err).
			Bytes("frame_bytes", frameBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Type {
	case InboundChatMessage:
		c.handleChatMessage(inbound.Payload)

	case InboundChatRead:
		c.handleChatRead(inbound.Payload)

	default:
		c.logger.Warn().Str("frame_type", inbound.Type).Msg("Client sent unsupported frame type")
	}
}

// handleChatMessage persists an inbound message and fans it out to the
// receiver's and sender's live sessions.
func (c *Client) handleChatMessage(payloadBytes json.RawMessage) {
	var payload struct {
		ReceiverID string `json:"receiverId"`
		Content    string `json:"content"`
		Timestamp  string `json:"timestamp,omitempty"`
	}
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid chat.message payload")
		return
	}

	msg := &model.Message{
		SenderID:   c.user.ID,
		ReceiverID: payload.ReceiverID,
		Content:    payload.Content,
		Timestamp:  payload.Timestamp,
	}

	saved, sendErr := c.messages.Send(context.Background(), msg)
	if sendErr != nil {
		c.SendError(sendErr)
		return
	}

	c.hub.Deliver(saved)
}

// handleChatRead marks the conversation's inbound messages as read on
// behalf of the connected user.
func (c *Client) handleChatRead(payloadBytes json.RawMessage) {
	var payload struct {
		ConversationID string `json:"conversationId"`
	}
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid chat.read payload")
		return
	}

	if markErr := c.messages.MarkRead(context.Background(), payload.ConversationID, c.user.ID); markErr != nil {
		c.SendError(markErr)
	}
}

// WritePump handles writing events from the Client.send channel to the
// WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !c.writeQueuedEvent(event, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedEvent handles events pulled from the send channel, writing them
// to the WebSocket. Returns true if the WritePump loop should continue,
// false if it should terminate.
func (c *Client) writeQueuedEvent(event []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, event); err != nil {
		c.logger.Error().Err(err).Msg("Error writing event")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the
// connection heartbeat. Returns false if the WritePump loop should terminate
// due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// SendAck queues a connection acknowledgement carrying the authenticated
// user identity.
func (c *Client) SendAck() error {
	ackPayload := struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
	}{
		UserID: c.user.ID,
		Name:   c.user.Name,
	}

	data, err := marshalEvent(EventConnectionAck, ackPayload)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build connection ack")
		return err
	}

	return c.queue(data)
}

// SendError queues an error event for the client.
func (c *Client) SendError(err error) {
	var code int
	var message string

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
	} else {
		code = errs.ErrUnknown
		message = fmt.Sprintf("Internal server error: %v", err)
	}

	data, marshalErr := marshalEvent(EventError, ErrorPayload{
		Code:    code,
		Message: message,
	})
	if marshalErr != nil {
		c.logger.Error().Err(marshalErr).Msg("Failed to build error event")
		return
	}

	if queueErr := c.queue(data); queueErr != nil {
		c.logger.Error().Err(queueErr).Msg("Failed to queue error event")
	}
}

// queue attempts to push the data onto the client's send channel.
func (c *Client) queue(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping event")
		return fmt.Errorf("client send queue full")
	}
}

// closeSend closes the send channel exactly once, terminating the WritePump.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
