// Package checkout holds the order-level policy: totals, classification and
// the initial-payment amount. Pure functions over the data model.
package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/harvestlink/checkoutapi/internal/domain"
	"github.com/harvestlink/checkoutapi/pkg/errors"
)

var (
	// MinimumOrderTotal - orders under this amount are blocked
	MinimumOrderTotal = decimal.NewFromInt(150)
	// InitialPaymentCeiling - orders over this amount require a 30% upfront payment
	InitialPaymentCeiling = decimal.NewFromInt(3000)
	// InitialPaymentRate - share of the total due upfront for large orders
	InitialPaymentRate = decimal.NewFromFloat(0.30)
)

// ValidateItems checks line items before assembly: quantity > 0, price >= 0
func ValidateItems(items []domain.LineItem) error {
	if len(items) == 0 {
		return &errors.ErrValidation{Message: "items list cannot be empty"}
	}
	for i, item := range items {
		if item.ProductID == "" {
			return &errors.ErrValidation{Message: fmt.Sprintf("item %d has no product id", i)}
		}
		if item.Quantity <= 0 {
			return &errors.ErrValidation{Message: fmt.Sprintf("item %d has invalid quantity", i)}
		}
		if item.Price.IsNegative() {
			return &errors.ErrValidation{Message: fmt.Sprintf("item %d has invalid price", i)}
		}
	}
	return nil
}

// ComputeTotal sums price*quantity over the items. Zero items yields zero;
// submission is then blocked by the minimum-order gate.
func ComputeTotal(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Classify maps an order total to its policy class. Boundaries are strict:
// 150 and 3000 are both NORMAL.
func Classify(total decimal.Decimal) domain.OrderClass {
	if total.LessThan(MinimumOrderTotal) {
		return domain.OrderClassBelowMinimum
	}
	if total.GreaterThan(InitialPaymentCeiling) {
		return domain.OrderClassRequiresInitialPayment
	}
	return domain.OrderClassNormal
}

// InitialPaymentAmount is the 30% upfront amount, rounded to 2 decimal places
func InitialPaymentAmount(total decimal.Decimal) decimal.Decimal {
	return total.Mul(InitialPaymentRate).Round(2)
}

// NewAssembly builds an in-progress order for a user and item set.
// The total is computed once here and never recomputed mid-flow.
func NewAssembly(userID string, items []domain.LineItem) (*domain.OrderAssembly, error) {
	if userID == "" {
		return nil, &errors.ErrValidation{Message: "user id is required"}
	}
	if err := ValidateItems(items); err != nil {
		return nil, err
	}
	return &domain.OrderAssembly{
		UserID: userID,
		Items:  items,
		Total:  ComputeTotal(items),
	}, nil
}
