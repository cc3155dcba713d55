package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/brickvest/brickvest/internal/pkg/constants"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/user"
)

// redisUserRepo stores the profile document per user and a lowercase
// email -> id mapping for sign-in lookups.
type redisUserRepo struct {
	client *redis.Client
	log    *logger.ZapLogger
}

// NewRedisUserRepo creates the document-backend user repository.
func NewRedisUserRepo(client *redis.Client, log *logger.ZapLogger) user.UserRepo {
	return &redisUserRepo{client: client, log: log}
}

func (r *redisUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	data, err := r.client.Get(ctx, fmt.Sprintf(constants.KeyUserProfile, id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to read user profile", logger.String("user_id", id), logger.Err(err))
		return nil, err
	}

	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *redisUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	id, err := r.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to read email index", logger.Err(err))
		return nil, err
	}
	return r.GetUserByID(ctx, id)
}

func (r *redisUserRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Second)
	u.CreatedAt = now
	u.UpdatedAt = now

	// SETNX on the email index claims the address atomically.
	ok, err := r.client.SetNX(ctx, emailIndexKey(u.Email), u.ID, 0).Result()
	if err != nil {
		r.log.Error("failed to claim email index", logger.Err(err))
		return err
	}
	if !ok {
		return user.ErrEmailTaken
	}

	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, fmt.Sprintf(constants.KeyUserProfile, u.ID), data, 0).Err(); err != nil {
		r.log.Error("failed to save user profile", logger.String("user_id", u.ID), logger.Err(err))
		return err
	}
	return nil
}

func (r *redisUserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	existing, err := r.GetUserByID(ctx, u.ID)
	if err != nil {
		return err
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, fmt.Sprintf(constants.KeyUserProfile, u.ID), data, 0).Err(); err != nil {
		r.log.Error("failed to update user profile", logger.String("user_id", u.ID), logger.Err(err))
		return err
	}
	return nil
}

func (r *redisUserRepo) Destroy() {}

func emailIndexKey(email string) string {
	return fmt.Sprintf(constants.KeyUserByEmail, strings.ToLower(email))
}
