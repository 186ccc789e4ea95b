package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/duochat/internal/common"
	"github.com/dmitrijs2005/duochat/internal/logging"
	"github.com/dmitrijs2005/duochat/internal/server/config"
	"github.com/dmitrijs2005/duochat/internal/server/models"
	"github.com/dmitrijs2005/duochat/internal/server/services"
	"github.com/dmitrijs2005/duochat/internal/server/ws"
)

// memUserRepo is an in-memory users.Repository for handler tests.
type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[int64]*models.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.byID[user.ID] = user
	return user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (r *memUserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.byID[id]
	return ok, nil
}

func (r *memUserRepo) ListExcept(ctx context.Context, id int64) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.User
	for _, u := range r.byID {
		if u.ID != id {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memUserRepo) UpdateProfilePic(ctx context.Context, id int64, profilePic string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.ProfilePic = profilePic
	u.UpdatedAt = time.Now()
	return u, nil
}

func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// memMessageRepo is an in-memory messages.Repository mirroring the
// PostgreSQL implementation's observable behavior.
type memMessageRepo struct {
	mu     sync.Mutex
	nextID int64
	msgs   []*models.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

func (r *memMessageRepo) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	msg.ID = r.nextID
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt
	if msg.ImageName != "" {
		msg.ImageURL = imageURL(msg.ID)
	}
	r.msgs = append(r.msgs, msg)
	return msg, nil
}

func (r *memMessageRepo) FindBetween(ctx context.Context, userA, userB int64) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.Message
	for _, m := range r.msgs {
		if (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA) {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *memMessageRepo) GetImage(ctx context.Context, messageID int64) (*models.ImageData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.msgs {
		if m.ID == messageID {
			if len(m.Image) == 0 {
				return nil, common.ErrorNotFound
			}
			return &models.ImageData{Image: m.Image, Name: m.ImageName, Type: m.ImageType}, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memMessageRepo) FindChatPartners(ctx context.Context, userID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int64]struct{})
	var ids []int64
	for _, m := range r.msgs {
		var partner int64
		switch userID {
		case m.SenderID:
			partner = m.ReceiverID
		case m.ReceiverID:
			partner = m.SenderID
		default:
			continue
		}
		if _, ok := seen[partner]; !ok {
			seen[partner] = struct{}{}
			ids = append(ids, partner)
		}
	}
	return ids, nil
}

func (r *memMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func imageURL(messageID int64) string {
	return "/api/messages/image/" + strconv.FormatInt(messageID, 10)
}

type testEnv struct {
	server   *Server
	handler  http.Handler
	userRepo *memUserRepo
	msgRepo  *memMessageRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.TokenValidityDuration = time.Hour

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	userRepo := newMemUserRepo()
	msgRepo := newMemMessageRepo()
	hub := ws.NewHub(logger)

	userService := services.NewUserService(userRepo, cfg, logger)
	messageService := services.NewMessageService(msgRepo, userRepo, hub, cfg, logger)

	srv := NewServer(cfg, logger, userService, messageService, hub)

	return &testEnv{
		server:   srv,
		handler:  srv.Handler(),
		userRepo: userRepo,
		msgRepo:  msgRepo,
	}
}
