package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/harvestlink/checkoutapi/internal/domain"
)

func item(id string, qty int, price string) domain.LineItem {
	return domain.LineItem{
		ProductID: id,
		Quantity:  qty,
		Price:     decimal.RequireFromString(price),
	}
}

func TestComputeTotal(t *testing.T) {
	items := []domain.LineItem{
		item("p1", 2, "49.50"),
		item("p2", 1, "100.00"),
		item("p3", 3, "0.35"),
	}

	total := ComputeTotal(items)
	assert.Equal(t, "200.05", total.StringFixed(2))
}

func TestComputeTotal_OrderIndependent(t *testing.T) {
	forward := []domain.LineItem{
		item("p1", 2, "10.10"),
		item("p2", 5, "3.33"),
		item("p3", 1, "99.99"),
	}
	reversed := []domain.LineItem{forward[2], forward[1], forward[0]}

	assert.True(t, ComputeTotal(forward).Equal(ComputeTotal(reversed)))
}

func TestComputeTotal_NoItems(t *testing.T) {
	total := ComputeTotal(nil)
	assert.True(t, total.IsZero())
	assert.Equal(t, domain.OrderClassBelowMinimum, Classify(total))
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		total string
		want  domain.OrderClass
	}{
		{"0", domain.OrderClassBelowMinimum},
		{"149.99", domain.OrderClassBelowMinimum},
		{"150", domain.OrderClassNormal},
		{"150.01", domain.OrderClassNormal},
		{"3000", domain.OrderClassNormal},
		{"3000.01", domain.OrderClassRequiresInitialPayment},
		{"5000", domain.OrderClassRequiresInitialPayment},
	}

	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(decimal.RequireFromString(tt.total)))
		})
	}
}

func TestInitialPaymentAmount(t *testing.T) {
	tests := []struct {
		total string
		want  string
	}{
		{"1000", "300.00"},
		{"3000.01", "900.00"},
		{"3333.33", "1000.00"},
		{"4999.99", "1500.00"},
	}

	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			got := InitialPaymentAmount(decimal.RequireFromString(tt.total))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name    string
		items   []domain.LineItem
		wantErr string
	}{
		{
			name:    "empty items",
			items:   []domain.LineItem{},
			wantErr: "items list cannot be empty",
		},
		{
			name:    "missing product id",
			items:   []domain.LineItem{item("", 1, "10")},
			wantErr: "item 0 has no product id",
		},
		{
			name:    "zero quantity",
			items:   []domain.LineItem{item("p1", 0, "10")},
			wantErr: "item 0 has invalid quantity",
		},
		{
			name:    "negative price",
			items:   []domain.LineItem{item("p1", 1, "-1")},
			wantErr: "item 0 has invalid price",
		},
		{
			name:  "valid",
			items: []domain.LineItem{item("p1", 1, "0")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItems(tt.items)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewAssembly(t *testing.T) {
	items := []domain.LineItem{
		item("p1", 2, "75"),
		item("p2", 1, "50"),
	}

	order, err := NewAssembly("user-1", items)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, "200.00", order.Total.StringFixed(2))
	assert.Len(t, order.Items, 2)
	assert.Empty(t, order.ReferenceCode)
	assert.Nil(t, order.Location)
}

func TestNewAssembly_MissingUser(t *testing.T) {
	_, err := NewAssembly("", []domain.LineItem{item("p1", 1, "10")})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "user id is required")
}
