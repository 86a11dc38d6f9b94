// Package gateway is the thin REST client for the storefront backend. It
// only shapes requests, surfaces errors and decodes responses; all business
// decisions stay with the callers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
)

var (
	// ErrNetwork wraps transport failures and 5xx responses; callers may
	// retry these.
	ErrNetwork = errors.New("backend request failed")
	// ErrOrderNotFound maps a 404 on the order read paths.
	ErrOrderNotFound = errors.New("order not found")
)

// BackendError is a non-retryable rejection from the backend (4xx).
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend rejected request (%d): %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	timeout    time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		// stops hammering a backend that keeps failing; an open breaker
		// surfaces as ErrNetwork so callers treat it like any outage
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:    "storefront-backend",
			Timeout: 30 * time.Second,
		}),
		timeout: timeout,
	}
}

type CreateOrderRequest struct {
	DeliveryAddress string            `json:"delivery_address"`
	PhoneNumber     string            `json:"phone_number"`
	Notes           string            `json:"notes"`
	PaymentMethod   string            `json:"payment_method"`
	Items           []domain.OrderItem `json:"items"`
	TotalAmount     string            `json:"total_amount"`
}

type CreateOrderResponse struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	TotalAmount string `json:"total_amount"`
}

type InitializePaymentRequest struct {
	Amount  string `json:"amount"`
	Email   string `json:"email"`
	OrderID string `json:"order_id"`
}

type InitializePaymentResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

type VerifyPaymentRequest struct {
	Reference string `json:"reference"`
}

// VerifyPaymentResponse carries the settlement outcome. A "failed" status is
// data, not an error: the call itself succeeded.
type VerifyPaymentResponse struct {
	Status string        `json:"status"`
	Order  *domain.Order `json:"order,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	var resp CreateOrderResponse
	if err := c.post(ctx, "/orders", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) InitializePayment(ctx context.Context, req *InitializePaymentRequest) (*InitializePaymentResponse, error) {
	var resp InitializePaymentResponse
	if err := c.post(ctx, "/payments/initialize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VerifyPayment(ctx context.Context, reference string) (*VerifyPaymentResponse, error) {
	var resp VerifyPaymentResponse
	if err := c.post(ctx, "/payments/verify", &VerifyPaymentRequest{Reference: reference}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.get(ctx, "/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	if err := c.get(ctx, "/orders/"+orderID, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListSellerProducts(ctx context.Context, sellerID string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/products?seller_id="+sellerID, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		// 5xx counts against the breaker like a transport failure
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: backend returned %d", ErrNetwork, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrOrderNotFound
	}
	if resp.StatusCode >= 400 {
		return &BackendError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return "unknown error"
	}
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return "unknown error"
}
