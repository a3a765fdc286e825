package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/joakmannn/SocialMed/internal/app/registry"
	"github.com/joakmannn/SocialMed/internal/app/server/ws"
	"github.com/joakmannn/SocialMed/internal/core/domain"
	"github.com/joakmannn/SocialMed/internal/core/services"
	"github.com/joakmannn/SocialMed/pkg/logging"
)

type WSHandler struct {
	hub      *registry.Registry
	msgs     services.IMessageService
	receipts services.IReceiptService
}

func NewWSHandler(
	hub *registry.Registry,
	msgs services.IMessageService,
	receipts services.IReceiptService,
) *WSHandler {
	return &WSHandler{
		hub:      hub,
		msgs:     msgs,
		receipts: receipts,
	}
}

// inbound is what the client may write on the socket. A "message" frame
// carries a body for the open conversation, a "read" frame reveals the
// counterpart's pending messages.
type inbound struct {
	Type string `json:"type"`
	Body string `json:"body,omitempty"`
}

func (s *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	span := trace.SpanFromContext(r.Context())
	sess, err := services.FromContext(r.Context())
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - unauthorised missing session")
		http.Error(w, "Unauthorized: session missing", http.StatusUnauthorized)
		return
	}
	peerID := r.URL.Query().Get("peer")
	span.SetAttributes(
		attribute.String("user.id", sess.UserID),
		attribute.String("chat.peer_id", peerID),
	)

	// The socket outlives the HTTP request; keep the session values but
	// detach from the request deadline.
	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)
	// ReadLoop can also exit on a read error with no close frame; cancelling
	// here stops the client write loop on every exit path.
	defer cancel()
	var upgrader = websocket.Upgrader{
		ReadBufferSize:  32,
		WriteBufferSize: 32,
		CheckOrigin: func(r *http.Request) bool {
			return true // tighten later
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade - ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetCloseHandler(func(code int, text string) error {
		log.Info("ws handler - ws closed", "user_id", sess.UserID)
		cancel()
		return nil
	})
	sock := ws.NewWebSocket(ctx, conn)
	client := ws.NewClient(ctx, sock, sess.UserID, uuid.NewString())
	s.hub.Register(client)
	defer s.hub.Unregister(client)
	log.InfoContext(r.Context(), "ws handler - connection established", "user_id", sess.UserID)

	// Without a peer the socket only receives badge and read events pushed
	// through the registry.
	var conv *services.ConversationSession
	if peerID != "" {
		// Opening a conversation reveals what was pending, like tapping
		// the thread in the client UI. Runs before the initial fetch so
		// the snapshot arrives already revealed.
		if _, err := s.receipts.MarkRead(ctx, peerID); err != nil {
			log.WarnContext(r.Context(), "ws handler - mark read on open failed", "peer_id", peerID, "err", err)
		}
		conv, err = s.msgs.OpenConversation(ctx, peerID)
		if err != nil {
			log.ErrorContext(r.Context(), "ws handler - open conversation failed", "peer_id", peerID, "err", err)
			s.sendJSON(ctx, client, domain.ErrorMessage{Type: domain.TypeError, Code: "open_failed", Message: err.Error()})
			return
		}
		defer conv.Close()

		for _, m := range conv.Messages() {
			s.sendJSON(ctx, client, domain.MessageEvent{Type: domain.TypeMessage, Message: m})
		}
		go func() {
			for m := range conv.Updates() {
				s.sendJSON(ctx, client, domain.MessageEvent{Type: domain.TypeMessage, Message: m})
			}
		}()
	}

	sock.ReadLoop(func(data []byte) {
		var frame inbound
		if err := json.Unmarshal(data, &frame); err != nil {
			s.sendJSON(ctx, client, domain.ErrorMessage{Type: domain.TypeError, Code: "bad_frame", Message: "malformed frame"})
			return
		}
		switch frame.Type {
		case domain.TypeMessage:
			if conv == nil {
				s.sendJSON(ctx, client, domain.ErrorMessage{Type: domain.TypeError, Code: "no_conversation", Message: "no peer on this socket"})
				return
			}
			if _, err := conv.Send(ctx, frame.Body); err != nil {
				log.ErrorContext(ctx, "ws handler - send failed", "peer_id", peerID, "err", err)
				s.sendJSON(ctx, client, domain.ErrorMessage{Type: domain.TypeError, Code: "send_failed", Message: err.Error()})
			}
		case domain.TypeRead:
			if conv == nil {
				return
			}
			if _, err := s.receipts.MarkRead(ctx, peerID); err != nil {
				log.ErrorContext(ctx, "ws handler - mark read failed", "peer_id", peerID, "err", err)
			}
		default:
			s.sendJSON(ctx, client, domain.ErrorMessage{Type: domain.TypeError, Code: "bad_frame", Message: "unknown frame type"})
		}
	})
}

func (s *WSHandler) sendJSON(ctx context.Context, client *ws.RuntimeClient, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = client.Send(ctx, data)
}
