package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harvestlink/checkoutapi/internal/checkout"
	"github.com/harvestlink/checkoutapi/internal/domain"
	"github.com/harvestlink/checkoutapi/internal/proof"
	"github.com/harvestlink/checkoutapi/internal/service"
	"github.com/harvestlink/checkoutapi/pkg/errors"
)

// OrderItem is one line item in a checkout request
type OrderItem struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Price     decimal.Decimal `json:"price"`
}

// PlaceOrderRequest is the place-request payload from the mobile client
type PlaceOrderRequest struct {
	UserID           string      `json:"user_id" binding:"required"`
	Items            []OrderItem `json:"items" binding:"required,min=1"`
	PaymentMethod    string      `json:"payment_method"`
	LocationID       string      `json:"location_id"`
	IsInitialPayment bool        `json:"is_initial_payment"`
	ProofAttemptID   string      `json:"proof_attempt_id"`
}

func toLineItems(items []OrderItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return out
}

// HandlePlaceRequest assembles the order, resolves location and payment
// proof, and submits it through the gate sequence
func HandlePlaceRequest(
	submitter *service.Submitter,
	locations *service.LocationService,
	proofStore *proof.Store,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		order, err := checkout.NewAssembly(req.UserID, toLineItems(req.Items))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		order.PaymentMethod = domain.PaymentMethod(req.PaymentMethod)
		order.IsInitialPayment = req.IsInitialPayment

		// Resolve the shipping location: the chosen one, falling back to the
		// user's first saved location the way the mobile flow does
		location, err := resolveLocation(c, locations, req.UserID, req.LocationID)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		order.Location = location

		if req.ProofAttemptID != "" {
			pipeline, err := proofStore.Get(req.ProofAttemptID)
			if err != nil {
				writeError(c, logger, err)
				return
			}
			order.Proof = pipeline.Image()
			order.ReferenceCode = pipeline.ReferenceCode()
		}

		destination, err := submitter.Submit(c.Request.Context(), order)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		// Order assembly is discarded on success; the proof attempt goes with it
		if req.ProofAttemptID != "" {
			proofStore.Delete(req.ProofAttemptID)
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "your request has been placed",
			"screen":  destination,
		})
	}
}

func resolveLocation(c *gin.Context, locations *service.LocationService, userID, locationID string) (*domain.ShippingLocation, error) {
	if locationID != "" {
		location, err := locations.LocationByID(c.Request.Context(), userID, locationID)
		if err == nil {
			return location, nil
		}
		var notFound *errors.ErrNotFound
		if !stderrors.As(err, &notFound) {
			return nil, err
		}
		// Stale saved id, fall through to the first saved location
	}
	return locations.FirstLocation(c.Request.Context(), userID)
}

// GCashCheckoutRequest is the direct-GCash-checkout payload
type GCashCheckoutRequest struct {
	UserID           string      `json:"user_id" binding:"required"`
	Items            []OrderItem `json:"items" binding:"required,min=1"`
	IsInitialPayment bool        `json:"is_initial_payment"`
}

// HandleGCashCheckout requests a hosted checkout URL; the client opens it in
// an external browser
func HandleGCashCheckout(submitter *service.Submitter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GCashCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		checkoutURL, err := submitter.CreateGCashCheckout(
			c.Request.Context(),
			req.UserID,
			toLineItems(req.Items),
			req.IsInitialPayment,
		)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"checkout_url": checkoutURL,
		})
	}
}
