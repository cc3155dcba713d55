package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brickvest/brickvest/internal/pkg/localstore"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/user"
)

// localUserRepo keeps one profile document per user plus an email index so
// sign-in does not have to scan the whole store.
type localUserRepo struct {
	store *localstore.Store
	log   *logger.ZapLogger
}

// NewLocalUserRepo creates the local-backend user repository.
func NewLocalUserRepo(store *localstore.Store, log *logger.ZapLogger) user.UserRepo {
	return &localUserRepo{store: store, log: log}
}

func profileKey(id string) string {
	return fmt.Sprintf("users/%s/profile", id)
}

func emailKey(email string) string {
	return "emails/" + url.QueryEscape(strings.ToLower(email))
}

// emailIndex maps a registered email to its account id.
type emailIndex struct {
	UserID string `json:"user_id"`
}

func (r *localUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.store.Read(profileKey(id), &u); err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to read user profile", logger.String("user_id", id), logger.Err(err))
		return nil, err
	}
	return &u, nil
}

func (r *localUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var idx emailIndex
	if err := r.store.Read(emailKey(email), &idx); err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to read email index", logger.Err(err))
		return nil, err
	}
	return r.GetUserByID(ctx, idx.UserID)
}

func (r *localUserRepo) CreateUser(ctx context.Context, u *models.User) error {
	var existing emailIndex
	if err := r.store.Read(emailKey(u.Email), &existing); err == nil {
		return user.ErrEmailTaken
	} else if !errors.Is(err, localstore.ErrNotFound) {
		return err
	}

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Second)
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := r.store.Write(profileKey(u.ID), u); err != nil {
		r.log.Error("failed to save user profile", logger.String("user_id", u.ID), logger.Err(err))
		return err
	}
	if err := r.store.Write(emailKey(u.Email), emailIndex{UserID: u.ID}); err != nil {
		r.log.Error("failed to save email index", logger.String("user_id", u.ID), logger.Err(err))
		return err
	}
	return nil
}

func (r *localUserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	existing, err := r.GetUserByID(ctx, u.ID)
	if err != nil {
		return err
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	if err := r.store.Write(profileKey(u.ID), u); err != nil {
		r.log.Error("failed to update user profile", logger.String("user_id", u.ID), logger.Err(err))
		return err
	}
	return nil
}

func (r *localUserRepo) Destroy() {}
