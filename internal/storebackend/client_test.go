package storebackend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvestlink/checkoutapi/internal/config"
	"github.com/harvestlink/checkoutapi/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(config.StoreBackendConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, nil)
	return client, srv
}

func proofImage() *domain.ProofImage {
	return &domain.ProofImage{
		Filename:    "receipt.png",
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	}
}

func TestExtractReference_Detected(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/extract-reference.php", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "receipt.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		data, _ := io.ReadAll(file)
		assert.Equal(t, []byte("png-bytes"), data)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"Ref_code": "REF1234567",
		})
	})

	result, err := client.ExtractReference(context.Background(), proofImage())
	assert.NoError(t, err)
	assert.Equal(t, domain.ExtractionDetected, result.Status)
	assert.Equal(t, "REF1234567", result.Code)
}

func TestExtractReference_NoReferenceDetected(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "no_reference_detected",
		})
	})

	result, err := client.ExtractReference(context.Background(), proofImage())
	assert.NoError(t, err)
	assert.Equal(t, domain.ExtractionNotDetected, result.Status)
}

func TestExtractReference_MalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>fatal error</html>"))
	})

	_, err := client.ExtractReference(context.Background(), proofImage())
	assert.Error(t, err)
}

func TestExtractReference_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ExtractReference(context.Background(), proofImage())
	assert.Error(t, err)
}

func TestPlaceRequest_WireFormat(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place-request.php", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "42", r.FormValue("user_id"))
		assert.Equal(t, "5000", r.FormValue("total_price"))
		assert.Equal(t, "GCash", r.FormValue("payment_method"))
		assert.Equal(t, "2026-08-28", r.FormValue("order_date"))
		assert.Equal(t, "2026-08-31", r.FormValue("ship_date"))
		assert.Equal(t, "1", r.FormValue("is_initial_payment"))
		assert.Equal(t, "9", r.FormValue("location_id"))
		// Capitalized field name is the backend schema, not a typo
		assert.Equal(t, "REF1234567", r.FormValue("Ref_code"))

		var items []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("items")), &items))
		require.Len(t, items, 2)
		assert.Equal(t, "p1", items[0]["product_id"])
		assert.Equal(t, float64(2), items[0]["quantity"])
		assert.Equal(t, float64(100), items[0]["price"])
		assert.Equal(t, 49.75, items[1]["price"])

		file, header, err := r.FormFile("payment_proof")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "receipt.png", header.Filename)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"screen":  "to-confirm",
		})
	})

	resp, err := client.PlaceRequest(context.Background(), PlaceRequestPayload{
		UserID:           "42",
		TotalPrice:       decimal.RequireFromString("5000"),
		PaymentMethod:    domain.PaymentMethodGCash,
		OrderDate:        "2026-08-28",
		ShipDate:         "2026-08-31",
		IsInitialPayment: true,
		Items: []domain.LineItem{
			{ProductID: "p1", Quantity: 2, Price: decimal.RequireFromString("100")},
			{ProductID: "p2", Quantity: 1, Price: decimal.RequireFromString("49.75")},
		},
		LocationID: "9",
		RefCode:    "REF1234567",
		Proof:      proofImage(),
	})
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "to-confirm", resp.Screen)
}

func TestPlaceRequest_OmitsOptionalParts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "0", r.FormValue("is_initial_payment"))
		_, hasRefCode := r.MultipartForm.Value["Ref_code"]
		assert.False(t, hasRefCode)
		_, _, err := r.FormFile("payment_proof")
		assert.Error(t, err)

		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	resp, err := client.PlaceRequest(context.Background(), PlaceRequestPayload{
		UserID:        "42",
		TotalPrice:    decimal.RequireFromString("200"),
		PaymentMethod: domain.PaymentMethodCash,
		OrderDate:     "2026-08-28",
		ShipDate:      "2026-08-31",
		Items: []domain.LineItem{
			{ProductID: "p1", Quantity: 1, Price: decimal.RequireFromString("200")},
		},
		LocationID: "9",
	})
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Screen)
}

func TestPlaceRequest_StructuredRejection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "insufficient stock",
		})
	})

	resp, err := client.PlaceRequest(context.Background(), PlaceRequestPayload{
		UserID:        "42",
		TotalPrice:    decimal.RequireFromString("200"),
		PaymentMethod: domain.PaymentMethodCash,
		Items:         []domain.LineItem{{ProductID: "p1", Quantity: 1, Price: decimal.RequireFromString("200")}},
		LocationID:    "9",
	})
	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "insufficient stock", resp.Message)
}

func TestCreateCheckout(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/create_checkout.php", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "42", body["user_id"])
		assert.Equal(t, float64(1500), body["amount"])
		assert.Equal(t, "gcash", body["payment_method"])
		items := body["items"].([]interface{})
		require.Len(t, items, 1)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":      true,
			"checkout_url": "https://pay.example/c/abc",
		})
	})

	resp, err := client.CreateCheckout(context.Background(), "42",
		decimal.RequireFromString("1500"),
		[]domain.LineItem{{ProductID: "p1", Quantity: 1, Price: decimal.RequireFromString("5000")}},
	)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "https://pay.example/c/abc", resp.CheckoutURL)
}

func TestGetUserLocations(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get-user-location.php", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("user_id"))

		// The backend sometimes returns ids as numbers, sometimes as strings
		w.Write([]byte(`{"success":true,"locations":[
			{"id":7,"address":"123 Sample St","cp_no":"09171234567"},
			{"id":"8","address":"456 Other Rd","cp_no":"09187654321"}
		]}`))
	})

	locations, err := client.GetUserLocations(context.Background(), "42")
	assert.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "7", locations[0].ID)
	assert.Equal(t, "123 Sample St", locations[0].Address)
	assert.Equal(t, "09171234567", locations[0].ContactNumber)
	assert.Equal(t, "8", locations[1].ID)
}

func TestGetUserLocations_Unsuccessful(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	})

	locations, err := client.GetUserLocations(context.Background(), "42")
	assert.NoError(t, err)
	assert.Empty(t, locations)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(config.StoreBackendConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, nil)
	srv.Close()

	_, err := client.GetUserLocations(context.Background(), "42")
	assert.Error(t, err)
}
