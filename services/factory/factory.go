package factory

import (
	"sync"

	"github.com/brickvest/brickvest/internal/pkg/database"
	"github.com/brickvest/brickvest/internal/pkg/localstore"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/internal/pkg/nsq"
	"github.com/brickvest/brickvest/services/payment"
	paymentrepo "github.com/brickvest/brickvest/services/payment/repository"
	"github.com/brickvest/brickvest/services/property"
	propertyrepo "github.com/brickvest/brickvest/services/property/repository"
	"github.com/brickvest/brickvest/services/user"
	userrepo "github.com/brickvest/brickvest/services/user/repository"
)

// Factory hands out repository instances for the active backend. Repositories
// are cached per user, so repeated lookups for the same user return the same
// instance until Reset or a backend switch.
//
// Backend clients are created lazily on first use. When a client cannot be
// reached, the factory serves local repositories instead of failing, so the
// app stays usable offline.
type Factory struct {
	cfg   *models.Config
	log   *logger.ZapLogger
	store *localstore.Store

	mu      sync.Mutex
	backend models.BackendKind

	redis    *database.RedisClient
	postgres *database.PostgresClient
	producer *nsq.Producer

	paymentRepos  map[string]payment.PaymentRepo
	propertyRepos map[string]property.PropertyRepo
	userRepo      user.UserRepo
}

// New creates a factory serving the backend named in the configuration.
func New(cfg *models.Config, store *localstore.Store, log *logger.ZapLogger) *Factory {
	return &Factory{
		cfg:           cfg,
		log:           log,
		store:         store,
		backend:       cfg.Storage.Backend,
		paymentRepos:  make(map[string]payment.PaymentRepo),
		propertyRepos: make(map[string]property.PropertyRepo),
	}
}

// Backend returns the backend currently being served.
func (f *Factory) Backend() models.BackendKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend
}

// PaymentRepository returns the payment repository bound to userID. Payment
// data is always user-scoped, so an empty userID on a remote backend falls
// back to the local store.
func (f *Factory) PaymentRepository(userID string) payment.PaymentRepo {
	f.mu.Lock()
	defer f.mu.Unlock()

	if repo, ok := f.paymentRepos[userID]; ok {
		return repo
	}

	repo := f.buildPaymentRepo(userID)
	f.paymentRepos[userID] = repo
	return repo
}

func (f *Factory) buildPaymentRepo(userID string) payment.PaymentRepo {
	backend := f.backend
	if userID == "" {
		backend = models.BackendLocal
	}

	switch backend {
	case models.BackendDocument:
		if client := f.ensureRedis(); client != nil {
			return paymentrepo.NewRedisPaymentRepo(client.GetClient(), f.log, userID)
		}
	case models.BackendRelational:
		if client := f.ensurePostgres(); client != nil {
			return paymentrepo.NewPostgresPaymentRepo(client.GetDB(), f.log, userID)
		}
	}
	return paymentrepo.NewLocalPaymentRepo(f.store, f.log, userID)
}

// PropertyRepository returns the property repository for userID. The listing
// catalogue is shared, so an empty userID is fine on any backend; only
// invested-property lookups need the binding.
func (f *Factory) PropertyRepository(userID string) property.PropertyRepo {
	f.mu.Lock()
	defer f.mu.Unlock()

	if repo, ok := f.propertyRepos[userID]; ok {
		return repo
	}

	repo := f.buildPropertyRepo(userID)
	f.propertyRepos[userID] = repo
	return repo
}

func (f *Factory) buildPropertyRepo(userID string) property.PropertyRepo {
	switch f.backend {
	case models.BackendDocument:
		if client := f.ensureRedis(); client != nil {
			return propertyrepo.NewRedisPropertyRepo(client.GetClient(), f.log, userID)
		}
	case models.BackendRelational:
		if client := f.ensurePostgres(); client != nil {
			return propertyrepo.NewPostgresPropertyRepo(client.GetDB(), f.ensureProducer(), f.cfg.NSQ, f.log, userID)
		}
	}
	return propertyrepo.NewLocalPropertyRepo(f.store, f.log, userID)
}

// UserRepository returns the account repository for the active backend.
func (f *Factory) UserRepository() user.UserRepo {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.userRepo != nil {
		return f.userRepo
	}

	f.userRepo = f.buildUserRepo()
	return f.userRepo
}

func (f *Factory) buildUserRepo() user.UserRepo {
	switch f.backend {
	case models.BackendDocument:
		if client := f.ensureRedis(); client != nil {
			return userrepo.NewRedisUserRepo(client.GetClient(), f.log)
		}
	case models.BackendRelational:
		if client := f.ensurePostgres(); client != nil {
			return userrepo.NewPostgresUserRepo(client.GetDB(), f.log)
		}
	}
	return userrepo.NewLocalUserRepo(f.store, f.log)
}

// Reset destroys every cached repository. The next lookup constructs fresh
// instances against the current backend.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *Factory) resetLocked() {
	for _, repo := range f.paymentRepos {
		repo.Destroy()
	}
	for _, repo := range f.propertyRepos {
		repo.Destroy()
	}
	if f.userRepo != nil {
		f.userRepo.Destroy()
	}

	f.paymentRepos = make(map[string]payment.PaymentRepo)
	f.propertyRepos = make(map[string]property.PropertyRepo)
	f.userRepo = nil
}

// SwitchToLocal serves local repositories from the next lookup on.
func (f *Factory) SwitchToLocal() {
	f.switchTo(models.BackendLocal, "")
}

// SwitchToDocument switches to the document backend and eagerly constructs
// the given user's repositories.
func (f *Factory) SwitchToDocument(userID string) {
	f.switchTo(models.BackendDocument, userID)
}

// SwitchToRelational switches to the relational backend and eagerly
// constructs the given user's repositories.
func (f *Factory) SwitchToRelational(userID string) {
	f.switchTo(models.BackendRelational, userID)
}

func (f *Factory) switchTo(backend models.BackendKind, userID string) {
	f.mu.Lock()
	if f.backend != backend {
		f.log.Info("switching storage backend",
			logger.String("from", string(f.backend)),
			logger.String("to", string(backend)))

		f.backend = backend
		f.resetLocked()
	}
	f.mu.Unlock()

	if userID != "" {
		f.PaymentRepository(userID)
		f.PropertyRepository(userID)
	}
	f.UserRepository()
}

func (f *Factory) ensureRedis() *database.RedisClient {
	if f.redis != nil {
		return f.redis
	}
	client, err := database.NewRedisClient(f.cfg.Redis)
	if err != nil {
		f.log.Error("redis unavailable, serving local repositories", logger.Err(err))
		return nil
	}
	f.redis = client
	return client
}

func (f *Factory) ensurePostgres() *database.PostgresClient {
	if f.postgres != nil {
		return f.postgres
	}
	client, err := database.NewPostgresClient(f.cfg.Database)
	if err != nil {
		f.log.Error("postgres unavailable, serving local repositories", logger.Err(err))
		return nil
	}
	f.postgres = client
	return client
}

// ensureProducer returns the NSQ producer, or nil when the daemon cannot be
// reached. Property repositories treat a nil producer as "no change feed".
func (f *Factory) ensureProducer() *nsq.Producer {
	if f.producer != nil {
		return f.producer
	}
	producer, err := nsq.NewProducer(f.cfg.NSQ.NSQDAddress)
	if err != nil {
		f.log.Error("nsq unavailable, property change feed disabled", logger.Err(err))
		return nil
	}
	f.producer = producer
	return producer
}

// Close destroys cached repositories and closes backend clients. Called once
// on shutdown.
func (f *Factory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resetLocked()

	if f.redis != nil {
		if err := f.redis.Close(); err != nil {
			f.log.Error("failed to close redis client", logger.Err(err))
		}
		f.redis = nil
	}
	if f.postgres != nil {
		if err := f.postgres.Close(); err != nil {
			f.log.Error("failed to close postgres client", logger.Err(err))
		}
		f.postgres = nil
	}
	if f.producer != nil {
		f.producer.Stop()
		f.producer = nil
	}
}
