package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brickvest/brickvest/internal/pkg/constants"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	natsq "github.com/brickvest/brickvest/internal/pkg/nsq"
	"github.com/brickvest/brickvest/services/property"
)

// propertyRow flattens the nested location so sqlx can scan it directly.
type propertyRow struct {
	ID                string    `db:"id"`
	Name              string    `db:"name"`
	Description       string    `db:"description"`
	ImageURL          string    `db:"image_url"`
	GoalAmount        float64   `db:"goal_amount"`
	RaisedAmount      float64   `db:"raised_amount"`
	Address           string    `db:"address"`
	Latitude          float64   `db:"latitude"`
	Longitude         float64   `db:"longitude"`
	Type              string    `db:"type"`
	ExpectedROI       float64   `db:"expected_roi"`
	MinimumInvestment float64   `db:"minimum_investment"`
	AIInsight         string    `db:"ai_insight"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (row *propertyRow) toModel() models.Property {
	return models.Property{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description,
		ImageURL:     row.ImageURL,
		GoalAmount:   row.GoalAmount,
		RaisedAmount: row.RaisedAmount,
		Location: models.Location{
			Address:   row.Address,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
		},
		Type:              row.Type,
		ExpectedROI:       row.ExpectedROI,
		MinimumInvestment: row.MinimumInvestment,
		AIInsight:         row.AIInsight,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

const propertyColumns = `id, name, description, image_url, goal_amount, raised_amount,
	address, latitude, longitude, type, expected_roi, minimum_investment,
	ai_insight, created_at, updated_at`

// propertyChangeEvent is the payload published on the property change topic
// after every funding update or seed.
type propertyChangeEvent struct {
	PropertyID string `json:"property_id"`
}

// postgresPropertyRepo persists properties in Postgres and feeds realtime
// subscribers through an NSQ change topic. Each subscription joins the topic
// on its own ephemeral channel so every subscriber sees every change.
type postgresPropertyRepo struct {
	db       *sqlx.DB
	producer *natsq.Producer
	nsqCfg   models.NSQConfig
	log      *logger.ZapLogger
	userID   string

	mu        sync.Mutex
	consumers []*natsq.Consumer
}

// NewPostgresPropertyRepo creates the relational-backend property repository.
func NewPostgresPropertyRepo(db *sqlx.DB, producer *natsq.Producer, nsqCfg models.NSQConfig, log *logger.ZapLogger, userID string) property.PropertyRepo {
	return &postgresPropertyRepo{
		db:       db,
		producer: producer,
		nsqCfg:   nsqCfg,
		log:      log,
		userID:   userID,
	}
}

func (r *postgresPropertyRepo) GetProperties(ctx context.Context) ([]models.Property, error) {
	var rows []propertyRow
	query := fmt.Sprintf(`SELECT %s FROM properties ORDER BY name`, propertyColumns)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		r.log.Error("failed to list properties", logger.Err(err))
		return []models.Property{}, nil
	}

	properties := make([]models.Property, 0, len(rows))
	for i := range rows {
		properties = append(properties, rows[i].toModel())
	}
	return properties, nil
}

func (r *postgresPropertyRepo) GetPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	var row propertyRow
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE id = $1`, propertyColumns)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.log.Error("failed to read property", logger.String("property_id", id), logger.Err(err))
		}
		return nil, nil
	}
	p := row.toModel()
	return &p, nil
}

// nearbyBoxDegrees is the half-width of the proximity search box, roughly
// 5km of latitude. Longitude is widened by the cosine of the latitude so
// the box stays square away from the equator.
const nearbyBoxDegrees = 0.045

// FindNearby answers the proximity query with a bounding-box scan instead
// of loading the whole catalogue.
func (r *postgresPropertyRepo) FindNearby(ctx context.Context, latitude, longitude float64) ([]models.Property, error) {
	lngDelta := nearbyBoxDegrees
	if c := math.Cos(latitude * math.Pi / 180); c > 0.01 {
		lngDelta = nearbyBoxDegrees / c
	}

	var rows []propertyRow
	query := fmt.Sprintf(`SELECT %s FROM properties
		WHERE latitude BETWEEN $1 AND $2 AND longitude BETWEEN $3 AND $4
		ORDER BY name`, propertyColumns)
	err := r.db.SelectContext(ctx, &rows, query,
		latitude-nearbyBoxDegrees, latitude+nearbyBoxDegrees,
		longitude-lngDelta, longitude+lngDelta)
	if err != nil {
		r.log.Error("failed to search nearby properties", logger.Err(err))
		return []models.Property{}, nil
	}

	properties := make([]models.Property, 0, len(rows))
	for i := range rows {
		properties = append(properties, rows[i].toModel())
	}
	return properties, nil
}

func (r *postgresPropertyRepo) SubscribeToProperties(ctx context.Context, cb func([]models.Property)) (property.UnsubscribeFunc, error) {
	snapshot, _ := r.GetProperties(ctx)
	cb(snapshot)

	consumer, err := r.newChangeConsumer(func([]byte) error {
		properties, _ := r.GetProperties(context.Background())
		cb(properties)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(consumer.Stop)
	}, nil
}

func (r *postgresPropertyRepo) SubscribeToProperty(ctx context.Context, id string, cb func(*models.Property)) (property.UnsubscribeFunc, error) {
	snapshot, _ := r.GetPropertyByID(ctx, id)
	cb(snapshot)

	consumer, err := r.newChangeConsumer(func(body []byte) error {
		var event propertyChangeEvent
		if err := natsq.UnmarshalMessage(body, &event); err != nil {
			return err
		}
		if event.PropertyID != id {
			return nil
		}
		p, _ := r.GetPropertyByID(context.Background(), id)
		cb(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(consumer.Stop)
	}, nil
}

// newChangeConsumer joins the property change topic on a fresh ephemeral
// channel so each subscription gets its own copy of every event.
func (r *postgresPropertyRepo) newChangeConsumer(handler natsq.MessageHandler) (*natsq.Consumer, error) {
	channel := fmt.Sprintf("%s-%s#ephemeral", r.nsqCfg.ConsumerChannel, uuid.New().String()[:8])
	consumer, err := natsq.NewConsumer(constants.TopicPropertyChanged, channel, r.nsqCfg.NSQDAddress, handler)
	if err != nil {
		r.log.Error("failed to create property change consumer", logger.Err(err))
		return nil, err
	}

	r.mu.Lock()
	r.consumers = append(r.consumers, consumer)
	r.mu.Unlock()
	return consumer, nil
}

func (r *postgresPropertyRepo) publishChange(id string) {
	if r.producer == nil {
		return
	}
	if err := r.producer.Publish(constants.TopicPropertyChanged, propertyChangeEvent{PropertyID: id}); err != nil {
		r.log.Error("failed to publish property change", logger.String("property_id", id), logger.Err(err))
	}
}

func (r *postgresPropertyRepo) GetUserInvestedProperties(ctx context.Context) ([]models.Property, error) {
	var rows []propertyRow
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM properties p
		JOIN transactions t ON t.property_id = p.id
		WHERE t.user_id = $1
		ORDER BY p.name`, prefixColumns("p"))
	if err := r.db.SelectContext(ctx, &rows, query, r.userID); err != nil {
		r.log.Error("failed to list invested properties", logger.Err(err))
		return []models.Property{}, nil
	}

	properties := make([]models.Property, 0, len(rows))
	for i := range rows {
		properties = append(properties, rows[i].toModel())
	}
	return properties, nil
}

// prefixColumns qualifies the property column list with a table alias.
func prefixColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.name, %[1]s.description, %[1]s.image_url,
		%[1]s.goal_amount, %[1]s.raised_amount, %[1]s.address, %[1]s.latitude,
		%[1]s.longitude, %[1]s.type, %[1]s.expected_roi, %[1]s.minimum_investment,
		%[1]s.ai_insight, %[1]s.created_at, %[1]s.updated_at`, alias)
}

func (r *postgresPropertyRepo) UpdatePropertyFunding(ctx context.Context, id string, amount float64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE properties
		SET raised_amount = raised_amount + $1, updated_at = $2
		WHERE id = $3`,
		amount, time.Now().UTC(), id)
	if err != nil {
		r.log.Error("failed to update property funding", logger.String("property_id", id), logger.Err(err))
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return property.ErrNotFound
	}

	r.publishChange(id)
	return nil
}

func (r *postgresPropertyRepo) SeedProperties(ctx context.Context, properties []models.Property) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range properties {
		p := &properties[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO properties (id, name, description, image_url, goal_amount,
				raised_amount, address, latitude, longitude, type, expected_roi,
				minimum_investment, ai_insight, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				image_url = EXCLUDED.image_url,
				goal_amount = EXCLUDED.goal_amount,
				updated_at = EXCLUDED.updated_at`,
			p.ID, p.Name, p.Description, p.ImageURL, p.GoalAmount,
			p.RaisedAmount, p.Location.Address, p.Location.Latitude,
			p.Location.Longitude, p.Type, p.ExpectedROI,
			p.MinimumInvestment, p.AIInsight, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			r.log.Error("failed to seed property", logger.String("property_id", p.ID), logger.Err(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for i := range properties {
		r.publishChange(properties[i].ID)
	}
	return nil
}

func (r *postgresPropertyRepo) Destroy() {
	r.mu.Lock()
	consumers := r.consumers
	r.consumers = nil
	r.mu.Unlock()

	for _, c := range consumers {
		c.Stop()
	}
}
