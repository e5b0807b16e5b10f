// Package paypal is a stateless adapter over the PayPal v2 Checkout API:
// token exchange, order creation and capture. It keeps no local state beyond
// its configuration.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"

	defaultTimeout = 10 * time.Second
)

// AuthError reports a failed client-credentials exchange. Transport failures
// and non-2xx token responses both land here; callers may retry the whole
// checkout.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("paypal auth: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// CreateError reports a rejected or malformed order-creation response.
type CreateError struct {
	Status  int
	Message string
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("paypal create order (%d): %s", e.Status, e.Message)
}

// CaptureError reports a rejected capture.
type CaptureError struct {
	Status  int
	Message string
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("paypal capture (%d): %s", e.Status, e.Message)
}

type Config struct {
	ClientID      string
	Secret        string
	Mode          string // "sandbox" or "live"
	PublicBaseURL string // absolute base for return/cancel URLs
	BaseURL       string // overrides the mode-derived API base when set
	Timeout       time.Duration
}

// ConfigFromEnv reads the processor settings the same way the rest of the
// application reads its env config.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		ClientID:      os.Getenv("PAYPAL_CLIENT_ID"),
		Secret:        os.Getenv("PAYPAL_SECRET"),
		Mode:          os.Getenv("PAYPAL_MODE"),
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),
	}
	if cfg.ClientID == "" || cfg.Secret == "" || cfg.PublicBaseURL == "" {
		return Config{}, fmt.Errorf("paypal configuration missing")
	}
	return cfg, nil
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) baseURL() string {
	if c.cfg.BaseURL != "" {
		return c.cfg.BaseURL
	}
	if c.cfg.Mode == "live" {
		return liveBaseURL
	}
	return sandboxBaseURL
}

// AccessToken exchanges the configured client credentials for a short-lived
// bearer token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL()+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", &AuthError{Err: err}
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Err: fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, body)}
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		return "", &AuthError{Err: fmt.Errorf("malformed token response")}
	}
	return token.AccessToken, nil
}

type createOrderResponse struct {
	ID    string `json:"id"`
	Links []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
	Message string `json:"message"`
}

// CreateOrder submits a CAPTURE-intent order for the local order's total and
// returns the processor's order id plus the approval redirect URL. The
// PayPal-Request-Id header is derived from the local order id so a retried
// request cannot mint a duplicate remote order.
func (c *Client) CreateOrder(ctx context.Context, orderID uint, total float64) (string, string, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return "", "", err
	}

	amount := decimal.NewFromFloat(total).StringFixed(2)
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"amount": map[string]string{
				"currency_code": "USD",
				"value":         amount,
			},
			"description": fmt.Sprintf("Order #%d from eStore", orderID),
		}},
		"application_context": map[string]string{
			"return_url": fmt.Sprintf("%s/checkout/capture?order_id=%d", c.cfg.PublicBaseURL, orderID),
			"cancel_url": c.cfg.PublicBaseURL + "/cart",
		},
	}

	jsonData, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL()+"/v2/checkout/orders", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", "", &CreateError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("PayPal-Request-Id", fmt.Sprintf("order-%d", orderID))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", &CreateError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return "", "", &CreateError{Status: resp.StatusCode, Message: gatewayMessage(body)}
	}

	var created createOrderResponse
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		return "", "", &CreateError{Status: resp.StatusCode, Message: "malformed create response"}
	}

	for _, link := range created.Links {
		if link.Rel == "approve" {
			return created.ID, link.Href, nil
		}
	}
	return "", "", &CreateError{Status: resp.StatusCode, Message: "no approval link in response"}
}

// CaptureOrder finalizes the fund transfer for a previously approved remote
// order.
func (c *Client) CaptureOrder(ctx context.Context, remoteID string) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.baseURL(), remoteID), nil)
	if err != nil {
		return &CaptureError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &CaptureError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return &CaptureError{Status: resp.StatusCode, Message: gatewayMessage(body)}
	}
	return nil
}

// gatewayMessage pulls the human-readable message out of an error body,
// falling back to the raw payload.
func gatewayMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return string(body)
}
