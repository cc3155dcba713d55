package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/brickvest/brickvest/internal/pkg/localstore"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/property"
)

// subscriberHub fans write notifications out to every subscriber of a
// backing store. Repository instances over the same store share one hub, so
// a write through any user's repository reaches all subscribers.
type subscriberHub struct {
	mu      sync.Mutex
	nextSub int
	subs    map[int]func()
}

var (
	hubsMu sync.Mutex
	hubs   = make(map[*localstore.Store]*subscriberHub)
)

func hubFor(store *localstore.Store) *subscriberHub {
	hubsMu.Lock()
	defer hubsMu.Unlock()
	h, ok := hubs[store]
	if !ok {
		h = &subscriberHub{subs: make(map[int]func())}
		hubs[store] = h
	}
	return h
}

func (h *subscriberHub) add(notify func()) property.UnsubscribeFunc {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = notify
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *subscriberHub) notify() {
	h.mu.Lock()
	notifiers := make([]func(), 0, len(h.subs))
	for _, fn := range h.subs {
		notifiers = append(notifiers, fn)
	}
	h.mu.Unlock()

	for _, fn := range notifiers {
		fn()
	}
}

// localPropertyRepo keeps one JSON file per property and notifies the
// store's shared subscriber hub after every write.
type localPropertyRepo struct {
	store  *localstore.Store
	hub    *subscriberHub
	log    *logger.ZapLogger
	userID string

	mu     sync.Mutex
	unsubs []property.UnsubscribeFunc
}

// NewLocalPropertyRepo creates the filesystem-backed property repository.
// An empty store is seeded with the demo catalogue.
func NewLocalPropertyRepo(store *localstore.Store, log *logger.ZapLogger, userID string) property.PropertyRepo {
	if userID == "" {
		userID = "local"
	}
	r := &localPropertyRepo{
		store:  store,
		hub:    hubFor(store),
		log:    log,
		userID: userID,
	}

	if keys, err := store.List("properties"); err == nil && len(keys) == 0 {
		if err := r.SeedProperties(context.Background(), DefaultSeedProperties()); err != nil {
			log.Error("failed to seed demo properties", logger.Err(err))
		}
	}
	return r
}

func propertyKey(id string) string {
	return "properties/" + id
}

func (r *localPropertyRepo) GetProperties(ctx context.Context) ([]models.Property, error) {
	keys, err := r.store.List("properties")
	if err != nil {
		r.log.Error("failed to list properties", logger.Err(err))
		return []models.Property{}, nil
	}

	properties := make([]models.Property, 0, len(keys))
	for _, key := range keys {
		var p models.Property
		if err := r.store.Read(key, &p); err != nil {
			r.log.Error("failed to read property", logger.String("key", key), logger.Err(err))
			continue
		}
		properties = append(properties, p)
	}
	sortPropertiesByName(properties)
	return properties, nil
}

func (r *localPropertyRepo) GetPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	if err := r.store.Read(propertyKey(id), &p); err != nil {
		if err != localstore.ErrNotFound {
			r.log.Error("failed to read property", logger.String("property_id", id), logger.Err(err))
		}
		return nil, nil
	}
	return &p, nil
}

func (r *localPropertyRepo) SubscribeToProperties(ctx context.Context, cb func([]models.Property)) (property.UnsubscribeFunc, error) {
	// Immediate snapshot, then change notifications.
	snapshot, _ := r.GetProperties(ctx)
	cb(snapshot)

	notify := func() {
		properties, _ := r.GetProperties(context.Background())
		cb(properties)
	}
	return r.addSubscriber(notify), nil
}

func (r *localPropertyRepo) SubscribeToProperty(ctx context.Context, id string, cb func(*models.Property)) (property.UnsubscribeFunc, error) {
	snapshot, _ := r.GetPropertyByID(ctx, id)
	cb(snapshot)

	notify := func() {
		p, _ := r.GetPropertyByID(context.Background(), id)
		cb(p)
	}
	return r.addSubscriber(notify), nil
}

func (r *localPropertyRepo) addSubscriber(notify func()) property.UnsubscribeFunc {
	unsub := r.hub.add(notify)
	r.mu.Lock()
	r.unsubs = append(r.unsubs, unsub)
	r.mu.Unlock()
	return unsub
}

func (r *localPropertyRepo) notifySubscribers() {
	r.hub.notify()
}

func (r *localPropertyRepo) GetUserInvestedProperties(ctx context.Context) ([]models.Property, error) {
	txnKeys, err := r.store.List(fmt.Sprintf("users/%s/transactions", r.userID))
	if err != nil {
		r.log.Error("failed to list transactions", logger.Err(err))
		return []models.Property{}, nil
	}

	seen := make(map[string]bool)
	properties := []models.Property{}
	for _, key := range txnKeys {
		var txn models.Transaction
		if err := r.store.Read(key, &txn); err != nil {
			continue
		}
		if seen[txn.PropertyID] {
			continue
		}
		seen[txn.PropertyID] = true

		var p models.Property
		if err := r.store.Read(propertyKey(txn.PropertyID), &p); err != nil {
			continue
		}
		properties = append(properties, p)
	}
	sortPropertiesByName(properties)
	return properties, nil
}

func (r *localPropertyRepo) UpdatePropertyFunding(ctx context.Context, id string, amount float64) error {
	var p models.Property
	if err := r.store.Read(propertyKey(id), &p); err != nil {
		if err == localstore.ErrNotFound {
			return property.ErrNotFound
		}
		r.log.Error("failed to read property", logger.String("property_id", id), logger.Err(err))
		return err
	}

	p.RaisedAmount += amount
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	if err := r.store.Write(propertyKey(id), &p); err != nil {
		r.log.Error("failed to update property funding", logger.String("property_id", id), logger.Err(err))
		return err
	}

	r.notifySubscribers()
	return nil
}

func (r *localPropertyRepo) SeedProperties(ctx context.Context, properties []models.Property) error {
	for i := range properties {
		if err := r.store.Write(propertyKey(properties[i].ID), &properties[i]); err != nil {
			r.log.Error("failed to seed property", logger.String("property_id", properties[i].ID), logger.Err(err))
			return err
		}
	}

	r.notifySubscribers()
	return nil
}

func (r *localPropertyRepo) Destroy() {
	r.mu.Lock()
	unsubs := r.unsubs
	r.unsubs = nil
	r.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func sortPropertiesByName(properties []models.Property) {
	sort.SliceStable(properties, func(i, j int) bool {
		return properties[i].Name < properties[j].Name
	})
}
