package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harvestlink/checkoutapi/internal/checkout"
	"github.com/harvestlink/checkoutapi/internal/domain"
	"github.com/harvestlink/checkoutapi/internal/proof"
	"github.com/harvestlink/checkoutapi/internal/storebackend"
	"github.com/harvestlink/checkoutapi/pkg/errors"
)

const isoDate = "2006-01-02"

// StoreBackend is the store backend surface the services need
type StoreBackend interface {
	PlaceRequest(ctx context.Context, payload storebackend.PlaceRequestPayload) (*storebackend.PlaceRequestResponse, error)
	CreateCheckout(ctx context.Context, userID string, amount decimal.Decimal, items []domain.LineItem) (*storebackend.CreateCheckoutResponse, error)
	GetUserLocations(ctx context.Context, userID string) ([]domain.ShippingLocation, error)
}

// Submitter gates and performs the final order submission
type Submitter struct {
	backend      StoreBackend
	shipLeadDays int
	logger       *zap.Logger
	now          func() time.Time
}

// NewSubmitter creates a new submitter. shipLeadDays is added to the order
// date to produce ship_date.
func NewSubmitter(backend StoreBackend, shipLeadDays int, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{
		backend:      backend,
		shipLeadDays: shipLeadDays,
		logger:       logger,
		now:          time.Now,
	}
}

// Submit checks the preconditions in order (first failure wins) and fires
// the place-request call. On any failure the order state is preserved so
// the user may retry.
func (s *Submitter) Submit(ctx context.Context, order *domain.OrderAssembly) (domain.Destination, error) {
	if !order.PaymentMethod.IsValid() {
		return "", &errors.ErrSubmissionBlocked{
			Reason:  errors.ReasonMissingPaymentMethod,
			Message: "please select a payment method",
		}
	}

	if order.PaymentMethod == domain.PaymentMethodGCash {
		if order.Proof == nil {
			return "", &errors.ErrSubmissionBlocked{
				Reason:  errors.ReasonMissingProof,
				Message: "please upload your payment proof",
			}
		}
		if order.ReferenceCode == "" {
			return "", &errors.ErrSubmissionBlocked{
				Reason:  errors.ReasonMissingReference,
				Message: "reference number is required for GCash payments",
			}
		}
		if err := proof.ValidateReferenceCode(order.ReferenceCode); err != nil {
			return "", err
		}
	}

	if order.Location == nil {
		return "", &errors.ErrSubmissionBlocked{
			Reason:  errors.ReasonMissingLocation,
			Message: "please select a shipping address before placing the request",
		}
	}

	switch checkout.Classify(order.Total) {
	case domain.OrderClassBelowMinimum:
		return "", &errors.ErrSubmissionBlocked{
			Reason:  errors.ReasonBelowMinimum,
			Message: "minimum order amount is 150, please add more items",
		}
	case domain.OrderClassRequiresInitialPayment:
		if !order.IsInitialPayment {
			return "", &errors.ErrSubmissionBlocked{
				Reason:  errors.ReasonInitialPaymentRequired,
				Message: "order total exceeds 3000, a 30% initial payment is required",
			}
		}
	}

	orderDate := s.now()
	payload := storebackend.PlaceRequestPayload{
		UserID:           order.UserID,
		TotalPrice:       order.Total,
		PaymentMethod:    order.PaymentMethod,
		OrderDate:        orderDate.Format(isoDate),
		ShipDate:         orderDate.AddDate(0, 0, s.shipLeadDays).Format(isoDate),
		IsInitialPayment: order.IsInitialPayment,
		Items:            order.Items,
		LocationID:       order.Location.ID,
		RefCode:          order.ReferenceCode,
		Proof:            order.Proof,
	}

	s.logger.Info("placing request",
		zap.String("user_id", order.UserID),
		zap.String("payment_method", string(order.PaymentMethod)),
		zap.String("total", order.Total.String()),
		zap.Bool("is_initial_payment", order.IsInitialPayment),
	)

	resp, err := s.backend.PlaceRequest(ctx, payload)
	if err != nil {
		s.logger.Error("place request failed", zap.Error(err))
		return "", &errors.ErrNetwork{Op: "place request", Err: err}
	}
	if !resp.Success {
		s.logger.Warn("place request rejected", zap.String("message", resp.Message))
		msg := resp.Message
		if msg == "" {
			msg = "failed to place request"
		}
		return "", &errors.ErrServerRejection{Message: msg}
	}

	if resp.Screen == string(domain.DestinationToConfirm) {
		return domain.DestinationToConfirm, nil
	}
	return domain.DestinationToPay, nil
}

// CreateGCashCheckout requests a hosted GCash checkout URL for the item set.
// When initialPayment is set the charged amount is the 30% upfront share.
func (s *Submitter) CreateGCashCheckout(ctx context.Context, userID string, items []domain.LineItem, initialPayment bool) (string, error) {
	if err := checkout.ValidateItems(items); err != nil {
		return "", err
	}

	total := checkout.ComputeTotal(items)
	amount := total
	if initialPayment {
		amount = checkout.InitialPaymentAmount(total)
	}

	resp, err := s.backend.CreateCheckout(ctx, userID, amount, items)
	if err != nil {
		s.logger.Error("create checkout failed", zap.Error(err))
		return "", &errors.ErrNetwork{Op: "create checkout", Err: err}
	}
	if !resp.Success || resp.CheckoutURL == "" {
		msg := resp.Message
		if msg == "" {
			msg = "unable to create GCash checkout"
		}
		return "", &errors.ErrServerRejection{Message: msg}
	}
	return resp.CheckoutURL, nil
}
