package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sugit/boardsync/internal/modules/core"
	"github.com/sugit/boardsync/internal/modules/discussion/commands"
	"github.com/sugit/boardsync/internal/modules/room"
	"github.com/sugit/boardsync/internal/protocol"

	"github.com/eskrenkovic/mediator-go"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// connection is one participant's channel: a websocket, the session identity
// bound to it, and a buffered outbound queue drained by the write pump.
type connection struct {
	sessionID string
	socket    *websocket.Conn
	send      chan protocol.Envelope
	done      chan struct{}
}

var _ room.Member = (*connection)(nil)

// Send queues a message without blocking. A full queue means the member is
// too slow for this broadcast; the room manager treats that as best-effort
// delivery failure.
func (c *connection) Send(message protocol.Envelope) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

type wsHandler struct {
	rooms  *room.Manager
	logger *zap.Logger
}

func (h *wsHandler) handleConnection(w http.ResponseWriter, r *http.Request) {
	socket, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &connection{
		sessionID: uuid.NewString(),
		socket:    socket,
		send:      make(chan protocol.Envelope, 64),
		done:      make(chan struct{}),
	}

	h.logger.Info("participant connected", zap.String("session_id", conn.sessionID))

	go h.writePump(conn)

	hello, err := protocol.NewEnvelope("", protocol.TypeHello, protocol.Hello{SessionID: conn.sessionID})
	if err == nil {
		conn.Send(hello)
	}

	h.readLoop(r, conn)
}

// readLoop services the connection until it closes. Leaving the loop is the
// terminal transition: room membership is cleared exactly once, and the
// write pump is released.
func (h *wsHandler) readLoop(r *http.Request, conn *connection) {
	defer func() {
		h.rooms.Remove(conn)
		close(conn.done)
		_ = conn.socket.Close()
		h.logger.Info("participant disconnected", zap.String("session_id", conn.sessionID))
	}()

	ctx := core.WithSession(r.Context(), core.ContextSession{SessionID: conn.sessionID})

	for {
		_, data, err := conn.socket.ReadMessage()
		if err != nil {
			return
		}

		var request protocol.Envelope
		if err := json.Unmarshal(data, &request); err != nil {
			h.logger.Warn("discarding malformed envelope", zap.Error(err))
			continue
		}

		if request.ID == "" {
			// Nothing to correlate an ack with.
			h.logger.Warn("discarding request without id", zap.String("type", request.Type))
			continue
		}

		ack := h.dispatch(ctx, conn, request)

		response, err := protocol.NewEnvelope(request.ID, protocol.TypeAck, ack)
		if err != nil {
			h.logger.Error("failed to serialize ack", zap.Error(err))
			continue
		}

		conn.Send(response)
	}
}

func (h *wsHandler) writePump(conn *connection) {
	for {
		select {
		case message := <-conn.send:
			if err := conn.socket.WriteJSON(message); err != nil {
				return
			}
		case <-conn.done:
			return
		}
	}
}

// dispatch turns one request envelope into exactly one acknowledgment.
// Handler and store failures come back as failure acks; they never tear the
// connection down or leak to other discussions.
func (h *wsHandler) dispatch(ctx context.Context, conn *connection, request protocol.Envelope) protocol.Ack {
	switch request.Type {
	case protocol.TypeCreateDiscussion:
		var payload protocol.CreateDiscussionRequest
		if err := json.Unmarshal(request.Payload, &payload); err != nil {
			return protocol.ErrorAck(core.ErrorCodeValidation)
		}

		response, err := mediator.Send[commands.CreateDiscussionCommand, commands.CreateDiscussionResponse](
			ctx,
			commands.CreateDiscussionCommand{Name: payload.Name},
		)
		if err != nil {
			return failureAck(err)
		}

		return protocol.Ack{DiscussionID: response.DiscussionID}

	case protocol.TypeJoinDiscussion:
		var payload protocol.JoinDiscussionRequest
		if err := json.Unmarshal(request.Payload, &payload); err != nil {
			return protocol.ErrorAck(core.ErrorCodeValidation)
		}

		_, err := mediator.Send[commands.JoinDiscussionCommand, core.Unit](
			ctx,
			commands.JoinDiscussionCommand{DiscussionID: payload.DiscussionID, Member: conn},
		)
		if err != nil {
			return failureAck(err)
		}

		return protocol.Ack{}

	case protocol.TypeGetDiscussion:
		var payload protocol.GetDiscussionRequest
		if err := json.Unmarshal(request.Payload, &payload); err != nil {
			return protocol.ErrorAck(core.ErrorCodeValidation)
		}

		response, err := mediator.Send[commands.GetDiscussionQuery, commands.GetDiscussionResponse](
			ctx,
			commands.GetDiscussionQuery{DiscussionID: payload.DiscussionID},
		)
		if err != nil {
			return failureAck(err)
		}

		return protocol.Ack{Discussion: &response.Discussion}

	case protocol.TypeUpdateDiscussion:
		var payload protocol.UpdateDiscussionRequest
		if err := json.Unmarshal(request.Payload, &payload); err != nil {
			return protocol.ErrorAck(core.ErrorCodeValidation)
		}

		_, err := mediator.Send[commands.UpdateDiscussionCommand, core.Unit](
			ctx,
			commands.UpdateDiscussionCommand{DiscussionID: payload.DiscussionID, Action: payload.Action},
		)
		if err != nil {
			return failureAck(err)
		}

		return protocol.Ack{}

	default:
		return protocol.ErrorAck(core.ErrorCodeValidation)
	}
}

func failureAck(err error) protocol.Ack {
	var commandErr core.CommandError
	if errors.As(err, &commandErr) {
		return protocol.ErrorAck(commandErr.Code)
	}

	return protocol.ErrorAck(core.ErrorCodeInternal)
}
