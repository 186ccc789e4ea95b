package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/duochat/internal/server/models"
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contacts, err := s.users.Contacts(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	if contacts == nil {
		contacts = []*models.User{}
	}

	respondJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleChatPartners(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	partners, err := s.messages.ChatPartners(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, partners)
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	otherID, ok := pathID(r, "id")
	if !ok {
		respondMessage(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	msgs, err := s.messages.Conversation(r.Context(), user.ID, otherID)
	if err != nil {
		respondError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}

	respondJSON(w, http.StatusOK, msgs)
}

type sendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	receiverID, ok := pathID(r, "id")
	if !ok {
		respondMessage(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req sendMessageRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	msg, err := s.messages.Send(r.Context(), user.ID, receiverID, req.Text, req.Image)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}

// handleMessageImage serves the raw decoded attachment bytes with the stored
// mime type.
func (s *Server) handleMessageImage(w http.ResponseWriter, r *http.Request) {
	messageID, ok := pathID(r, "messageId")
	if !ok {
		respondMessage(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	data, err := s.messages.Image(r.Context(), messageID)
	if err != nil {
		respondError(w, err)
		return
	}

	contentType := data.Type
	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data.Image)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data.Image)
}
