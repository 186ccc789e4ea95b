package services

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrijs2005/duochat/internal/common"
	"github.com/dmitrijs2005/duochat/internal/logging"
	"github.com/dmitrijs2005/duochat/internal/server/config"
	"github.com/dmitrijs2005/duochat/internal/server/models"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.TokenValidityDuration = time.Hour
	return cfg
}

// pngDataURI builds a syntactically valid inline image of the requested
// decoded size.
func pngDataURI(size int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(make([]byte, size))
}

type fakeUserRepo struct {
	CreateFunc           func(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmailFunc       func(ctx context.Context, email string) (*models.User, error)
	GetByIDFunc          func(ctx context.Context, id int64) (*models.User, error)
	ExistsFunc           func(ctx context.Context, id int64) (bool, error)
	ListExceptFunc       func(ctx context.Context, id int64) ([]*models.User, error)
	UpdateProfilePicFunc func(ctx context.Context, id int64, profilePic string) (*models.User, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, user)
	}
	user.ID = 1
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.GetByEmailFunc != nil {
		return f.GetByEmailFunc(ctx, email)
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	if f.ExistsFunc != nil {
		return f.ExistsFunc(ctx, id)
	}
	return true, nil
}

func (f *fakeUserRepo) ListExcept(ctx context.Context, id int64) ([]*models.User, error) {
	if f.ListExceptFunc != nil {
		return f.ListExceptFunc(ctx, id)
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdateProfilePic(ctx context.Context, id int64, profilePic string) (*models.User, error) {
	if f.UpdateProfilePicFunc != nil {
		return f.UpdateProfilePicFunc(ctx, id, profilePic)
	}
	return &models.User{ID: id, ProfilePic: profilePic}, nil
}

type fakeMessageRepo struct {
	CreateFunc           func(ctx context.Context, msg *models.Message) (*models.Message, error)
	FindBetweenFunc      func(ctx context.Context, userA, userB int64) ([]*models.Message, error)
	GetImageFunc         func(ctx context.Context, messageID int64) (*models.ImageData, error)
	FindChatPartnersFunc func(ctx context.Context, userID int64) ([]int64, error)
}

func (f *fakeMessageRepo) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, msg)
	}
	msg.ID = 1
	return msg, nil
}

func (f *fakeMessageRepo) FindBetween(ctx context.Context, userA, userB int64) ([]*models.Message, error) {
	if f.FindBetweenFunc != nil {
		return f.FindBetweenFunc(ctx, userA, userB)
	}
	return nil, nil
}

func (f *fakeMessageRepo) GetImage(ctx context.Context, messageID int64) (*models.ImageData, error) {
	if f.GetImageFunc != nil {
		return f.GetImageFunc(ctx, messageID)
	}
	return nil, common.ErrorNotFound
}

func (f *fakeMessageRepo) FindChatPartners(ctx context.Context, userID int64) ([]int64, error) {
	if f.FindChatPartnersFunc != nil {
		return f.FindChatPartnersFunc(ctx, userID)
	}
	return nil, nil
}

type push struct {
	event   string
	payload any
}

type fakeConnection struct {
	pushes []push
}

func (c *fakeConnection) Send(event string, payload any) {
	c.pushes = append(c.pushes, push{event: event, payload: payload})
}

type fakeRegistry struct {
	conns map[int64][]Connection
}

func (r *fakeRegistry) Lookup(userID int64) []Connection {
	return r.conns[userID]
}
