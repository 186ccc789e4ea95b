package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/duochat/internal/common"
	"github.com/dmitrijs2005/duochat/internal/dbx"
	"github.com/dmitrijs2005/duochat/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {

	query :=
		`INSERT INTO messages (sender_id, receiver_id, text, image, image_name, image_type)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		msg.SenderID, msg.ReceiverID,
		nullString(msg.Text), msg.Image,
		nullString(msg.ImageName), nullString(msg.ImageType)).
		Scan(&msg.ID, &msg.CreatedAt, &msg.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if msg.ImageName != "" {
		msg.ImageURL = imageURL(msg.ID)
	}

	return msg, nil
}

func (r *PostgresRepository) FindBetween(ctx context.Context, userA, userB int64) ([]*models.Message, error) {
	query :=
		`SELECT id, sender_id, receiver_id, text, image_name, image_type, created_at, updated_at
		 FROM messages
		 WHERE (sender_id = $1 AND receiver_id = $2)
		    OR (sender_id = $2 AND receiver_id = $1)
		 ORDER BY created_at ASC
		 `

	rows, err := r.db.QueryContext(ctx, query, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetImage(ctx context.Context, messageID int64) (*models.ImageData, error) {
	query := `SELECT image, image_name, image_type FROM messages WHERE id = $1`

	var (
		image     []byte
		name, typ sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, messageID).Scan(&image, &name, &typ)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(image) == 0 {
		return nil, common.ErrorNotFound
	}

	return &models.ImageData{Image: image, Name: name.String, Type: typ.String}, nil
}

func (r *PostgresRepository) FindChatPartners(ctx context.Context, userID int64) ([]int64, error) {
	query :=
		`SELECT DISTINCT
		   CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS partner_id
		 FROM messages
		 WHERE sender_id = $1 OR receiver_id = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ids, nil
}

func scanMessage(rows *sql.Rows) (*models.Message, error) {
	msg := &models.Message{}
	var text, imageName, imageType sql.NullString

	err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID,
		&text, &imageName, &imageType, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	msg.Text = text.String
	msg.ImageName = imageName.String
	msg.ImageType = imageType.String
	if msg.ImageName != "" {
		msg.ImageURL = imageURL(msg.ID)
	}

	return msg, nil
}

func imageURL(messageID int64) string {
	return fmt.Sprintf("/api/messages/image/%d", messageID)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
