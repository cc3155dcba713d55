package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"

	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/payment"
	"github.com/brickvest/brickvest/services/property"
)

// nearbyPrecision gives geohash cells roughly 5km on a side, which matches
// the map radius the listing screen shows.
const nearbyPrecision = 5

var (
	// ErrBelowMinimum is returned when the checkout amount is under the
	// property's minimum investment.
	ErrBelowMinimum = errors.New("amount is below the minimum investment")

	// ErrPaymentMethodRequired is returned when the checkout request names
	// no payment method.
	ErrPaymentMethodRequired = errors.New("a payment method is required")
)

// PropertyUC implements property.PropertyUC on top of the backend-agnostic
// repositories. Properties are a shared catalogue, so catalogue reads use an
// unbound repository; invested lookups and checkout resolve a repository for
// the acting user.
type PropertyUC struct {
	properties property.RepoProvider
	payments   payment.RepoProvider
	log        *logger.ZapLogger
}

// NewPropertyUC creates the property usecase.
func NewPropertyUC(properties property.RepoProvider, payments payment.RepoProvider, log *logger.ZapLogger) property.PropertyUC {
	return &PropertyUC{
		properties: properties,
		payments:   payments,
		log:        log,
	}
}

func (uc *PropertyUC) GetProperties(ctx context.Context) ([]models.Property, error) {
	return uc.properties.PropertyRepository("").GetProperties(ctx)
}

func (uc *PropertyUC) GetPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	p, err := uc.properties.PropertyRepository("").GetPropertyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, property.ErrNotFound
	}
	return p, nil
}

func (uc *PropertyUC) GetNearbyProperties(ctx context.Context, latitude, longitude float64) ([]models.Property, error) {
	repo := uc.properties.PropertyRepository("")

	// Backends with a native proximity query answer it directly.
	if finder, ok := repo.(property.NearbyFinder); ok {
		return finder.FindNearby(ctx, latitude, longitude)
	}

	properties, err := repo.GetProperties(ctx)
	if err != nil {
		return nil, err
	}

	center := geohash.EncodeWithPrecision(latitude, longitude, nearbyPrecision)
	cells := map[string]bool{center: true}
	for _, n := range geohash.Neighbors(center) {
		cells[n] = true
	}

	nearby := []models.Property{}
	for i := range properties {
		p := &properties[i]
		cell := geohash.EncodeWithPrecision(p.Location.Latitude, p.Location.Longitude, nearbyPrecision)
		if cells[cell] {
			nearby = append(nearby, *p)
		}
	}
	return nearby, nil
}

func (uc *PropertyUC) GetInvestedProperties(ctx context.Context, userID string) ([]models.Property, error) {
	return uc.properties.PropertyRepository(userID).GetUserInvestedProperties(ctx)
}

func (uc *PropertyUC) Invest(ctx context.Context, userID string, req property.InvestRequest) (*models.Transaction, error) {
	if req.PaymentMethodID == "" {
		return nil, ErrPaymentMethodRequired
	}

	propertyRepo := uc.properties.PropertyRepository(userID)
	paymentRepo := uc.payments.PaymentRepository(userID)

	prop, err := propertyRepo.GetPropertyByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, property.ErrNotFound
	}
	if req.Amount < prop.MinimumInvestment {
		return nil, ErrBelowMinimum
	}

	if err := uc.verifyPaymentMethod(ctx, paymentRepo, req.PaymentMethodID, req.PaymentMethodType); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	txn := &models.Transaction{
		ID:                uuid.New().String(),
		PropertyID:        prop.ID,
		PropertyName:      prop.Name,
		Amount:            req.Amount,
		Status:            models.TransactionPending,
		PaymentMethodID:   req.PaymentMethodID,
		PaymentMethodType: req.PaymentMethodType,
		ExpectedROI:       prop.ExpectedROI,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := paymentRepo.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}

	if err := paymentRepo.UpdateTransactionStatus(ctx, txn.ID, models.TransactionProcessing); err != nil {
		return nil, err
	}
	txn.Status = models.TransactionProcessing

	if err := propertyRepo.UpdatePropertyFunding(ctx, prop.ID, req.Amount); err != nil {
		if failErr := paymentRepo.UpdateTransactionStatus(ctx, txn.ID, models.TransactionFailed); failErr != nil {
			uc.log.Error("failed to mark transaction failed",
				logger.String("transaction_id", txn.ID), logger.Err(failErr))
		}
		txn.Status = models.TransactionFailed
		return txn, err
	}

	if prop.RaisedAmount+req.Amount > prop.GoalAmount {
		uc.log.Warn("property funded past its goal",
			logger.String("property_id", prop.ID),
			logger.Float64("goal_amount", prop.GoalAmount),
			logger.Float64("raised_amount", prop.RaisedAmount+req.Amount))
	}

	if err := paymentRepo.UpdateTransactionStatus(ctx, txn.ID, models.TransactionCompleted); err != nil {
		return nil, err
	}
	txn.Status = models.TransactionCompleted
	return txn, nil
}

// verifyPaymentMethod confirms the named method exists in the user's
// collections before a transaction is recorded against it.
func (uc *PropertyUC) verifyPaymentMethod(ctx context.Context, repo payment.PaymentRepo, id string, typ models.PaymentMethodType) error {
	switch typ {
	case models.PaymentMethodCard:
		cards, err := repo.GetCreditCards(ctx)
		if err != nil {
			return err
		}
		for i := range cards {
			if cards[i].ID == id {
				return nil
			}
		}
	case models.PaymentMethodBank:
		banks, err := repo.GetBankAccounts(ctx)
		if err != nil {
			return err
		}
		for i := range banks {
			if banks[i].ID == id {
				return nil
			}
		}
	}
	return payment.ErrNotFound
}

func (uc *PropertyUC) SubscribeToProperties(ctx context.Context, cb func([]models.Property)) (property.UnsubscribeFunc, error) {
	return uc.properties.PropertyRepository("").SubscribeToProperties(ctx, cb)
}
