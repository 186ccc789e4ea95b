package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/duochat/internal/common"
	"github.com/dmitrijs2005/duochat/internal/logging"
	"github.com/dmitrijs2005/duochat/internal/sanitize"
	"github.com/dmitrijs2005/duochat/internal/server/config"
	"github.com/dmitrijs2005/duochat/internal/server/models"
	"github.com/dmitrijs2005/duochat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/duochat/internal/server/repositories/users"
	"github.com/google/uuid"
)

// EventNewMessage is the push event type carrying a freshly persisted
// message record.
const EventNewMessage = "message:new"

// Connection is one live real-time transport connection. Send must not
// block; undeliverable pushes are dropped.
type Connection interface {
	Send(event string, payload any)
}

// ConnectionRegistry maps a user identity to the set of currently live
// connections for that user. Presence means reachable from this process
// only.
type ConnectionRegistry interface {
	Lookup(userID int64) []Connection
}

type MessageService struct {
	repo          messages.Repository
	users         users.Repository
	registry      ConnectionRegistry
	maxImageBytes int64
	logger        logging.Logger
}

func NewMessageService(repo messages.Repository, userRepo users.Repository, registry ConnectionRegistry, cfg *config.Config, logger logging.Logger) *MessageService {
	return &MessageService{
		repo:          repo,
		users:         userRepo,
		registry:      registry,
		maxImageBytes: cfg.MaxImageBytes,
		logger:        logger,
	}
}

// Send runs the delivery pipeline for a single message: shape validation,
// payload sanitization, persistence, then fan-out to the receiver's and the
// sender's other live connections. Persistence is the durability point; the
// returned record is valid regardless of delivery outcome.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID int64, text, image string) (*models.Message, error) {

	if text == "" && image == "" {
		return nil, common.NewValidationError("message", "text or image is required")
	}
	if senderID == receiverID {
		return nil, common.NewValidationError("receiverId", "cannot send messages to yourself")
	}

	exists, err := s.users.Exists(ctx, receiverID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !exists {
		return nil, fmt.Errorf("receiver: %w", common.ErrorNotFound)
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       sanitize.MessageText(text),
	}

	if image != "" {
		info, err := sanitize.Image(image, s.maxImageBytes)
		if err != nil {
			return nil, err
		}

		raw, err := base64.StdEncoding.DecodeString(info.Base64Data)
		if err != nil {
			return nil, common.NewValidationError("image", "invalid image data")
		}

		msg.Image = raw
		msg.ImageName = fmt.Sprintf("image_%s.%s", uuid.New(), info.Ext)
		msg.ImageType = info.MimeType
	}

	msg, err = s.repo.Create(ctx, msg)
	if err != nil {
		s.logger.Error(ctx, "message create failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.fanOut(ctx, msg)

	return msg, nil
}

// fanOut pushes the persisted message to all of the receiver's live
// connections, then to the sender's connections for multi-device echo. The
// two lookups are independent; a handle that already received the message
// under the receiver lookup is skipped. Zero receiver handles is not an
// error: the message stays durably queryable.
func (s *MessageService) fanOut(ctx context.Context, msg *models.Message) {
	pushed := make(map[Connection]struct{})

	receivers := s.registry.Lookup(msg.ReceiverID)
	for _, conn := range receivers {
		conn.Send(EventNewMessage, msg)
		pushed[conn] = struct{}{}
	}
	if len(receivers) == 0 {
		s.logger.Debug(ctx, "receiver not connected", "receiver_id", msg.ReceiverID)
	}

	for _, conn := range s.registry.Lookup(msg.SenderID) {
		if _, ok := pushed[conn]; ok {
			continue
		}
		conn.Send(EventNewMessage, msg)
	}
}

// Conversation returns the full ordered message history between the caller
// and another user, oldest first.
func (s *MessageService) Conversation(ctx context.Context, userID, otherID int64) ([]*models.Message, error) {
	result, err := s.repo.FindBetween(ctx, userID, otherID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return result, nil
}

// Image returns the stored attachment of a message.
func (s *MessageService) Image(ctx context.Context, messageID int64) (*models.ImageData, error) {
	data, err := s.repo.GetImage(ctx, messageID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return data, nil
}

// ChatPartners resolves the users the given user has exchanged messages
// with. Partners whose accounts vanished are skipped.
func (s *MessageService) ChatPartners(ctx context.Context, userID int64) ([]*models.User, error) {
	ids, err := s.repo.FindChatPartners(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	partners := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			return nil, common.ErrorInternal
		}
		partners = append(partners, user)
	}

	return partners, nil
}
