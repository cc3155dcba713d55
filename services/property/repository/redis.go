package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/brickvest/brickvest/internal/pkg/constants"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/property"
)

// redisPropertyRepo stores one JSON document per property and bridges
// realtime updates over Redis pub/sub: every write publishes on the
// collection channel and the per-property channel, and each message makes
// subscribers refetch.
type redisPropertyRepo struct {
	client *redis.Client
	log    *logger.ZapLogger
	userID string

	mu      sync.Mutex
	pubsubs []*redis.PubSub
}

// NewRedisPropertyRepo creates the document-backend property repository.
func NewRedisPropertyRepo(client *redis.Client, log *logger.ZapLogger, userID string) property.PropertyRepo {
	return &redisPropertyRepo{client: client, log: log, userID: userID}
}

func (r *redisPropertyRepo) GetProperties(ctx context.Context) ([]models.Property, error) {
	properties := []models.Property{}
	iter := r.client.Scan(ctx, 0, constants.KeyProperties, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		// The geo set shares the key prefix; skip anything that is not a
		// plain document.
		if key == constants.KeyPropertyGeo {
			continue
		}
		data, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			r.log.Error("failed to read property document", logger.String("key", key), logger.Err(err))
			return []models.Property{}, nil
		}
		var p models.Property
		if err := json.Unmarshal(data, &p); err != nil {
			r.log.Error("failed to decode property document", logger.String("key", key), logger.Err(err))
			continue
		}
		properties = append(properties, p)
	}
	if err := iter.Err(); err != nil {
		r.log.Error("failed to scan properties", logger.Err(err))
		return []models.Property{}, nil
	}
	sortPropertiesByName(properties)
	return properties, nil
}

func (r *redisPropertyRepo) GetPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	data, err := r.client.Get(ctx, fmt.Sprintf(constants.KeyProperty, id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Error("failed to read property", logger.String("property_id", id), logger.Err(err))
		}
		return nil, nil
	}

	var p models.Property
	if err := json.Unmarshal(data, &p); err != nil {
		r.log.Error("failed to decode property", logger.String("property_id", id), logger.Err(err))
		return nil, nil
	}
	return &p, nil
}

// nearbyRadiusKm matches the map radius the listing screen shows.
const nearbyRadiusKm = 5

// FindNearby answers the proximity query from the geo set maintained by
// SeedProperties instead of scanning the whole catalogue.
func (r *redisPropertyRepo) FindNearby(ctx context.Context, latitude, longitude float64) ([]models.Property, error) {
	hits, err := r.client.GeoRadius(ctx, constants.KeyPropertyGeo, longitude, latitude, &redis.GeoRadiusQuery{
		Radius: nearbyRadiusKm,
		Unit:   "km",
	}).Result()
	if err != nil {
		r.log.Error("failed to search nearby properties", logger.Err(err))
		return []models.Property{}, nil
	}

	properties := make([]models.Property, 0, len(hits))
	for _, hit := range hits {
		p, err := r.GetPropertyByID(ctx, hit.Name)
		if err != nil || p == nil {
			continue
		}
		properties = append(properties, *p)
	}
	sortPropertiesByName(properties)
	return properties, nil
}

func (r *redisPropertyRepo) SubscribeToProperties(ctx context.Context, cb func([]models.Property)) (property.UnsubscribeFunc, error) {
	snapshot, _ := r.GetProperties(ctx)
	cb(snapshot)

	pubsub := r.client.Subscribe(context.Background(), constants.ChannelProperties)
	r.track(pubsub)

	go func() {
		for range pubsub.Channel() {
			properties, _ := r.GetProperties(context.Background())
			cb(properties)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { _ = pubsub.Close() })
	}, nil
}

func (r *redisPropertyRepo) SubscribeToProperty(ctx context.Context, id string, cb func(*models.Property)) (property.UnsubscribeFunc, error) {
	snapshot, _ := r.GetPropertyByID(ctx, id)
	cb(snapshot)

	pubsub := r.client.Subscribe(context.Background(), fmt.Sprintf(constants.ChannelProperty, id))
	r.track(pubsub)

	go func() {
		for range pubsub.Channel() {
			p, _ := r.GetPropertyByID(context.Background(), id)
			cb(p)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { _ = pubsub.Close() })
	}, nil
}

func (r *redisPropertyRepo) track(pubsub *redis.PubSub) {
	r.mu.Lock()
	r.pubsubs = append(r.pubsubs, pubsub)
	r.mu.Unlock()
}

func (r *redisPropertyRepo) publishChange(ctx context.Context, id string) {
	if err := r.client.Publish(ctx, constants.ChannelProperties, id).Err(); err != nil {
		r.log.Error("failed to publish property change", logger.String("property_id", id), logger.Err(err))
	}
	if err := r.client.Publish(ctx, fmt.Sprintf(constants.ChannelProperty, id), id).Err(); err != nil {
		r.log.Error("failed to publish property change", logger.String("property_id", id), logger.Err(err))
	}
}

func (r *redisPropertyRepo) GetUserInvestedProperties(ctx context.Context) ([]models.Property, error) {
	seen := make(map[string]bool)
	properties := []models.Property{}

	iter := r.client.Scan(ctx, 0, fmt.Sprintf(constants.KeyUserTxns, r.userID), 0).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var txn models.Transaction
		if err := json.Unmarshal(data, &txn); err != nil {
			continue
		}
		if seen[txn.PropertyID] {
			continue
		}
		seen[txn.PropertyID] = true

		if p, _ := r.GetPropertyByID(ctx, txn.PropertyID); p != nil {
			properties = append(properties, *p)
		}
	}
	if err := iter.Err(); err != nil {
		r.log.Error("failed to scan transactions", logger.Err(err))
		return []models.Property{}, nil
	}
	sortPropertiesByName(properties)
	return properties, nil
}

func (r *redisPropertyRepo) UpdatePropertyFunding(ctx context.Context, id string, amount float64) error {
	p, _ := r.GetPropertyByID(ctx, id)
	if p == nil {
		return property.ErrNotFound
	}

	p.RaisedAmount += amount
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, fmt.Sprintf(constants.KeyProperty, id), data, 0).Err(); err != nil {
		r.log.Error("failed to update property funding", logger.String("property_id", id), logger.Err(err))
		return err
	}

	r.publishChange(ctx, id)
	return nil
}

func (r *redisPropertyRepo) SeedProperties(ctx context.Context, properties []models.Property) error {
	pipe := r.client.TxPipeline()
	for i := range properties {
		p := &properties[i]
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		pipe.Set(ctx, fmt.Sprintf(constants.KeyProperty, p.ID), data, 0)
		pipe.GeoAdd(ctx, constants.KeyPropertyGeo, &redis.GeoLocation{
			Longitude: p.Location.Longitude,
			Latitude:  p.Location.Latitude,
			Name:      p.ID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("failed to seed properties", logger.Err(err))
		return err
	}

	for i := range properties {
		r.publishChange(ctx, properties[i].ID)
	}
	return nil
}

func (r *redisPropertyRepo) Destroy() {
	r.mu.Lock()
	pubsubs := r.pubsubs
	r.pubsubs = nil
	r.mu.Unlock()

	for _, ps := range pubsubs {
		_ = ps.Close()
	}
}
