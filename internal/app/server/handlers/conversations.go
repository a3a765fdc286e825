package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/joakmannn/SocialMed/internal/core/domain"
	"github.com/joakmannn/SocialMed/internal/core/services"
	"github.com/joakmannn/SocialMed/pkg/logging"
)

type ConversationHandler struct {
	convs    services.IConversationService
	msgs     services.IMessageService
	receipts services.IReceiptService
}

func NewConversationHandler(
	convs services.IConversationService,
	msgs services.IMessageService,
	receipts services.IReceiptService,
) *ConversationHandler {
	return &ConversationHandler{convs: convs, msgs: msgs, receipts: receipts}
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	convs, err := h.convs.ListConversations(r.Context())
	if err != nil {
		log.ErrorContext(r.Context(), "conversation handler - list failed", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

// Messages is the one-shot variant of the websocket session: it opens the
// synchronized view, snapshots it and closes. Polling clients use this.
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	otherID := r.PathValue("user_id")
	sess, err := h.msgs.OpenConversation(r.Context(), otherID)
	if err != nil {
		log.ErrorContext(r.Context(), "conversation handler - open failed", "peer_id", otherID, "err", err)
		writeError(w, err)
		return
	}
	defer sess.Close()
	msgs := sess.Messages()
	if msgs == nil {
		msgs = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *ConversationHandler) Send(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	otherID := r.PathValue("user_id")
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "conversation handler - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	msg, err := h.msgs.Send(r.Context(), otherID, req.Body)
	if err != nil {
		log.ErrorContext(r.Context(), "conversation handler - send failed", "peer_id", otherID, "err", err)
		writeError(w, err)
		return
	}
	log.InfoContext(r.Context(), "conversation handler - message sent", "peer_id", otherID, "message_id", msg.ID)
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ConversationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	otherID := r.PathValue("user_id")
	count, err := h.receipts.MarkRead(r.Context(), otherID)
	if err != nil {
		log.ErrorContext(r.Context(), "conversation handler - mark read failed", "peer_id", otherID, "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"marked": count})
}

func (h *ConversationHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	msgs, err := h.convs.ListNotifications(r.Context())
	if err != nil {
		log.ErrorContext(r.Context(), "conversation handler - notifications failed", "err", err)
		writeError(w, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *ConversationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("message_id"))
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}
	count, err := h.receipts.MarkMessageRead(r.Context(), id)
	if err != nil {
		log.ErrorContext(r.Context(), "conversation handler - mark notification read failed", "message_id", id, "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"marked": count})
}
