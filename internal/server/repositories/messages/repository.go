// Package messages persists message records: sender, receiver, text and the
// optional inline attachment.
package messages

import (
	"context"

	"github.com/dmitrijs2005/duochat/internal/server/models"
)

// Repository is the message store contract. Messages are append-only; there
// is no update or delete.
type Repository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	// FindBetween returns the full conversation between two users ordered
	// by creation time ascending.
	FindBetween(ctx context.Context, userA, userB int64) ([]*models.Message, error)
	GetImage(ctx context.Context, messageID int64) (*models.ImageData, error)
	// FindChatPartners returns the distinct ids of users the given user has
	// exchanged messages with.
	FindChatPartners(ctx context.Context, userID int64) ([]int64, error)
}
