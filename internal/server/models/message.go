package models

import "time"

// Message is a single direct message. It is immutable once created: there is
// no edit or delete operation anywhere in the system. A message carries text
// or an attachment (or both), never neither; the message service enforces
// that before the row is written.
//
// Attachment bytes are stored on the row but never serialized into API
// responses; clients fetch them through the image endpoint referenced by
// ImageURL.
type Message struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	Text       string `json:"text,omitempty"`

	Image     []byte `json:"-"`
	ImageName string `json:"-"`
	ImageType string `json:"-"`

	// ImageURL points at the attachment fetch endpoint when the message
	// carries an image, e.g. "/api/messages/image/42".
	ImageURL string `json:"image,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ImageData is the raw stored attachment of a message.
type ImageData struct {
	Image []byte
	Name  string
	Type  string
}
