// Package storebackend is the HTTP client for the PHP store backend.
// Field naming quirks (Ref_code, cp_no, is_initial_payment as "0"/"1",
// items as a JSON-encoded form field) follow the backend schema verbatim.
package storebackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harvestlink/checkoutapi/internal/config"
	"github.com/harvestlink/checkoutapi/internal/domain"
)

// Client calls the store backend endpoints
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a store backend HTTP client
func NewClient(cfg config.StoreBackendConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// wireItem is one order line as place-request.php and create_checkout.php
// expect it; price is sent as a bare number
type wireItem struct {
	ProductID string      `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
}

func toWireItems(items []domain.LineItem) []wireItem {
	out := make([]wireItem, 0, len(items))
	for _, item := range items {
		out = append(out, wireItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     json.Number(item.Price.String()),
		})
	}
	return out
}

type extractResponse struct {
	Success bool   `json:"success"`
	RefCode string `json:"Ref_code"`
	Message string `json:"message"`
}

// ExtractReference uploads a payment-proof image to the OCR endpoint and
// maps the response to a tagged extraction result. Transport and parse
// failures return an error; the caller degrades those to manual entry.
func (c *Client) ExtractReference(ctx context.Context, image *domain.ProofImage) (domain.ExtractionResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := writeFilePart(w, "image", image); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("failed to encode image: %w", err)
	}
	if err := w.Close(); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("failed to finalize form: %w", err)
	}

	respBody, err := c.postForm(ctx, "/extract-reference.php", &body, w.FormDataContentType())
	if err != nil {
		return domain.ExtractionResult{}, err
	}

	var result extractResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("failed to unmarshal extraction response: %w", err)
	}

	if result.Success && result.RefCode != "" {
		return domain.Detected(result.RefCode), nil
	}
	// no_reference_detected and any other structured failure both mean the
	// image was processed but nothing usable came back
	return domain.NotDetected(), nil
}

// PlaceRequestPayload is the assembled order plus payment metadata for
// place-request.php
type PlaceRequestPayload struct {
	UserID           string
	TotalPrice       decimal.Decimal
	PaymentMethod    domain.PaymentMethod
	OrderDate        string // ISO date
	ShipDate         string // ISO date
	IsInitialPayment bool
	Items            []domain.LineItem
	LocationID       string
	RefCode          string
	Proof            *domain.ProofImage
}

// PlaceRequestResponse is the structured place-request.php response
type PlaceRequestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Screen  string `json:"screen"`
}

// PlaceRequest submits the assembled order as a multipart form
func (c *Client) PlaceRequest(ctx context.Context, payload PlaceRequestPayload) (*PlaceRequestResponse, error) {
	itemsJSON, err := json.Marshal(toWireItems(payload.Items))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}

	isInitial := "0"
	if payload.IsInitialPayment {
		isInitial = "1"
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := map[string]string{
		"user_id":            payload.UserID,
		"total_price":        payload.TotalPrice.String(),
		"payment_method":     string(payload.PaymentMethod),
		"order_date":         payload.OrderDate,
		"ship_date":          payload.ShipDate,
		"is_initial_payment": isInitial,
		"items":              string(itemsJSON),
		"location_id":        payload.LocationID,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}
	// Capitalized by backend convention; the database column is Ref_code
	if payload.RefCode != "" {
		if err := w.WriteField("Ref_code", payload.RefCode); err != nil {
			return nil, fmt.Errorf("failed to write field Ref_code: %w", err)
		}
	}
	if payload.Proof != nil {
		if err := writeFilePart(w, "payment_proof", payload.Proof); err != nil {
			return nil, fmt.Errorf("failed to encode payment proof: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	respBody, err := c.postForm(ctx, "/place-request.php", &body, w.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var result PlaceRequestResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal place-request response: %w", err)
	}
	return &result, nil
}

// CreateCheckoutRequest is the create_checkout.php payload for the direct
// GCash checkout path
type CreateCheckoutRequest struct {
	UserID        string          `json:"user_id"`
	Amount        json.Number     `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Items         json.RawMessage `json:"items"`
}

// CreateCheckoutResponse is the structured create_checkout.php response
type CreateCheckoutResponse struct {
	Success     bool   `json:"success"`
	CheckoutURL string `json:"checkout_url"`
	Message     string `json:"message"`
}

// CreateCheckout requests a hosted GCash checkout URL
func (c *Client) CreateCheckout(ctx context.Context, userID string, amount decimal.Decimal, items []domain.LineItem) (*CreateCheckoutResponse, error) {
	itemsJSON, err := json.Marshal(toWireItems(items))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}
	reqBody := CreateCheckoutRequest{
		UserID:        userID,
		Amount:        json.Number(amount.String()),
		PaymentMethod: "gcash",
		Items:         itemsJSON,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create_checkout.php", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var result CreateCheckoutResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout response: %w", err)
	}
	return &result, nil
}

type locationsResponse struct {
	Success   bool          `json:"success"`
	Locations []locationDTO `json:"locations"`
}

// locationDTO tolerates the backend returning id as number or string
type locationDTO struct {
	ID      json.Number `json:"id"`
	Address string      `json:"address"`
	CPNo    string      `json:"cp_no"`
}

// GetUserLocations fetches the user's saved shipping locations
func (c *Client) GetUserLocations(ctx context.Context, userID string) ([]domain.ShippingLocation, error) {
	u, err := url.Parse(c.baseURL + "/get-user-location.php")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("user_id", userID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var result locationsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal locations response: %w", err)
	}
	if !result.Success {
		return nil, nil
	}

	locations := make([]domain.ShippingLocation, 0, len(result.Locations))
	for _, dto := range result.Locations {
		locations = append(locations, domain.ShippingLocation{
			ID:            dto.ID.String(),
			Address:       dto.Address,
			ContactNumber: dto.CPNo,
		})
	}
	return locations, nil
}

func (c *Client) postForm(ctx context.Context, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("store backend request failed",
			zap.Error(err),
			zap.String("path", req.URL.Path),
		)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store backend returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// writeFilePart writes an image as a file part with its real content type
// (CreateFormFile would hardcode application/octet-stream)
func writeFilePart(w *multipart.Writer, field string, image *domain.ProofImage) error {
	filename := image.Filename
	if filename == "" {
		filename = "proof.jpg"
	}
	contentType := image.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(image.Data)
	return err
}
