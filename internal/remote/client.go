// Package remote is the REST client of the remote cart service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nikolayk812/cartmirror/internal/api"
	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/nikolayk812/cartmirror/internal/port"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var _ port.RemoteCart = (*Client)(nil)

const maxResponseBodySize = 1 << 20

type Options struct {
	BaseURL string
	// Timeout bounds a single HTTP round trip. Zero means no timeout.
	Timeout time.Duration
	// BreakerMaxFailures consecutive transport or 5xx failures open the breaker.
	BreakerMaxFailures uint32
	// BreakerOpenTimeout is how long the breaker stays open before probing again.
	BreakerOpenTimeout time.Duration
	// Transport overrides the base transport, mainly for tests.
	Transport http.RoundTripper
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[response]
}

type response struct {
	status int
	body   []byte
}

func NewClient(opts Options) (*Client, error) {
	baseURL, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("base url[%s] must be absolute", opts.BaseURL)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	maxFailures := opts.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:        "remote-cart",
		MaxRequests: 1,
		Timeout:     opts.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		breaker: breaker,
	}, nil
}

func (c *Client) AddItem(ctx context.Context, item domain.CartItem) (domain.CartItem, error) {
	resp, err := c.do(ctx, http.MethodPost, itemsPath(item.CartID), api.AddItemRequest{
		ProductID: item.ProductID,
		Price:     api.MoneyFromDomain(item.Price),
		Quantity:  item.Quantity,
	})
	if err != nil {
		return domain.CartItem{}, err
	}

	var dto api.CartItemDTO
	if err := decode(resp, &dto); err != nil {
		return domain.CartItem{}, err
	}

	stored, err := dto.ToDomain()
	if err != nil {
		return domain.CartItem{}, errors.Join(domain.ErrRemoteRejection, fmt.Errorf("malformed cart item: %w", err))
	}

	return stored, nil
}

func (c *Client) GetCart(ctx context.Context, cartID domain.CartID) ([]domain.CartItem, error) {
	resp, err := c.do(ctx, http.MethodGet, itemsPath(cartID), nil)
	if err != nil {
		return nil, err
	}

	var dtos []api.CartItemDTO
	if err := decode(resp, &dtos); err != nil {
		return nil, err
	}

	items, err := api.CartItemsToDomain(dtos)
	if err != nil {
		return nil, errors.Join(domain.ErrRemoteRejection, fmt.Errorf("malformed cart: %w", err))
	}

	return items, nil
}

func (c *Client) UpdateItem(ctx context.Context, cartID domain.CartID, productID string, quantity int) error {
	_, err := c.do(ctx, http.MethodPost, itemsPath(cartID)+"/update", api.UpdateItemRequest{
		ProductID: productID,
		Quantity:  quantity,
	})
	return err
}

func (c *Client) DeleteItem(ctx context.Context, cartID domain.CartID, productID string) error {
	_, err := c.do(ctx, http.MethodPost, itemsPath(cartID)+"/delete", api.DeleteItemRequest{
		ProductID: productID,
	})
	return err
}

// do performs the request through the breaker and maps non-2xx statuses to the
// domain error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, payload any) (response, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return response{}, fmt.Errorf("json.Marshal: %w", err)
		}
	}

	resp, err := c.breaker.Execute(func() (response, error) {
		return c.roundTrip(ctx, method, path, body)
	})
	if err != nil {
		return response{}, errors.Join(domain.ErrRemoteRejection, fmt.Errorf("%s %s: %w", method, path, err))
	}

	switch {
	case resp.status >= 200 && resp.status < 300:
		return resp, nil
	case resp.status == http.StatusNotFound:
		return resp, errors.Join(domain.ErrNotFound, fmt.Errorf("%s %s: %s", method, path, errorMessage(resp)))
	default:
		return resp, errors.Join(domain.ErrRemoteRejection, fmt.Errorf("%s %s: status %d: %s", method, path, resp.status, errorMessage(resp)))
	}
}

// roundTrip reports transport failures and 5xx as errors so that only they count
// against the breaker; 4xx are returned as responses.
func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte) (response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return response{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("http.Do: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBodySize))
	if err != nil {
		return response{}, fmt.Errorf("io.ReadAll: %w", err)
	}

	resp := response{status: httpResp.StatusCode, body: respBody}
	if resp.status >= http.StatusInternalServerError {
		return resp, fmt.Errorf("status %d: %s", resp.status, errorMessage(resp))
	}

	return resp, nil
}

func decode(resp response, v any) error {
	if err := json.Unmarshal(resp.body, v); err != nil {
		return errors.Join(domain.ErrRemoteRejection, fmt.Errorf("malformed payload: %w", err))
	}
	return nil
}

func errorMessage(resp response) string {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(resp.body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return http.StatusText(resp.status)
}

func itemsPath(cartID domain.CartID) string {
	return "/carts/" + url.PathEscape(cartID.String()) + "/items"
}
