package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PayTabsConfig holds the PayTabs merchant profile configuration.
type PayTabsConfig struct {
	ProfileID   string
	ServerKey   string
	BaseURL     string // defaults to the production endpoint
	CallbackURL string // inbound webhook the gateway posts results to
	ReturnURL   string // browser redirect after hosted-page checkout
}

// PayTabsGateway creates hosted-page payment requests against the PayTabs
// REST API and answers status queries for reconciliation.
type PayTabsGateway struct {
	config     *PayTabsConfig
	httpClient *http.Client
}

// payTabsSuccessCode is the response_code PayTabs returns when a payment
// request was accepted and a hosted page was created.
const payTabsSuccessCode = 4012

func NewPayTabsGateway(cfg *PayTabsConfig) *PayTabsGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://secure.paytabs.com"
	}
	return &PayTabsGateway{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *PayTabsGateway) Name() string {
	return "paytabs"
}

// ValidateConfig checks the merchant credentials are present.
func (g *PayTabsGateway) ValidateConfig() error {
	if g.config.ProfileID == "" {
		return fmt.Errorf("PAYTABS_PROFILE_ID is not set")
	}
	if g.config.ServerKey == "" {
		return fmt.Errorf("PAYTABS_SERVER_KEY is not set")
	}
	if g.config.CallbackURL == "" {
		return fmt.Errorf("PAYTABS_CALLBACK_URL is not set")
	}
	return nil
}

type payTabsCustomerDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Street1 string `json:"street1,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

type payTabsPaymentRequest struct {
	ProfileID       string                 `json:"profile_id"`
	TranType        string                 `json:"tran_type"`
	TranClass       string                 `json:"tran_class"`
	CartID          string                 `json:"cart_id"`
	CartDescription string                 `json:"cart_description,omitempty"`
	CartCurrency    string                 `json:"cart_currency"`
	CartAmount      float64                `json:"cart_amount"`
	Callback        string                 `json:"callback"`
	Return          string                 `json:"return"`
	CustomerDetails payTabsCustomerDetails `json:"customer_details"`
	PaymentToken    string                 `json:"payment_token"`
}

type payTabsPaymentResponse struct {
	TranRef      string `json:"tran_ref"`
	RedirectURL  string `json:"redirect_url"`
	ResponseCode int    `json:"response_code"`
	Result       string `json:"result"`
}

// CreatePayment requests a hosted payment page. The payment token travels
// with the request so the gateway echoes it back in the callback.
func (g *PayTabsGateway) CreatePayment(ctx context.Context, token string, req PaymentRequest) (*GatewayResult, error) {
	payload := payTabsPaymentRequest{
		ProfileID:       g.config.ProfileID,
		TranType:        "sale",
		TranClass:       "ecom",
		CartID:          req.ApplicationID,
		CartDescription: fmt.Sprintf("Service payment for application %s", req.ApplicationID),
		CartCurrency:    req.Currency,
		CartAmount:      req.Amount.InexactFloat64(),
		Callback:        g.config.CallbackURL,
		Return:          g.config.ReturnURL,
		CustomerDetails: payTabsCustomerDetails{
			Name:  req.CustomerInfo.Name,
			Email: req.CustomerInfo.Email,
			Phone: req.CustomerInfo.Phone,
		},
		PaymentToken: token,
	}
	if addr := req.BillingAddress; addr != nil {
		payload.CustomerDetails.Street1 = addr.Street
		payload.CustomerDetails.City = addr.City
		payload.CustomerDetails.State = addr.State
		payload.CustomerDetails.Country = addr.Country
		payload.CustomerDetails.Zip = addr.Zip
	}

	body, err := g.post(ctx, "/payment/request", payload)
	if err != nil {
		return nil, err
	}

	var resp payTabsPaymentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling paytabs response: %w", err)
	}

	if resp.ResponseCode != payTabsSuccessCode {
		return nil, fmt.Errorf("paytabs rejected payment request (code %d): %s", resp.ResponseCode, resp.Result)
	}

	return &GatewayResult{
		TransactionID: resp.TranRef,
		RedirectURL:   resp.RedirectURL,
		RawResponse:   body,
	}, nil
}

type payTabsQueryResponse struct {
	TranRef       string `json:"tran_ref"`
	PaymentResult struct {
		ResponseStatus  string `json:"response_status"`
		ResponseCode    string `json:"response_code"`
		ResponseMessage string `json:"response_message"`
	} `json:"payment_result"`
}

// QueryTransaction fetches the current transaction state from PayTabs and
// maps it to an internal status. Used by the reconciler for payments whose
// callback never arrived.
func (g *PayTabsGateway) QueryTransaction(ctx context.Context, tranRef string) (PaymentStatus, []byte, error) {
	payload := map[string]string{
		"profile_id": g.config.ProfileID,
		"tran_ref":   tranRef,
	}

	body, err := g.post(ctx, "/payment/query", payload)
	if err != nil {
		return "", nil, err
	}

	var resp payTabsQueryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, fmt.Errorf("error unmarshaling paytabs query response: %w", err)
	}

	status := MapPayTabsStatus(resp.PaymentResult.ResponseStatus, resp.PaymentResult.ResponseCode)
	return status, body, nil
}

// ValidateSignature verifies the HMAC-SHA256 signature PayTabs sends with
// callbacks, computed over the raw request body with the server key.
func (g *PayTabsGateway) ValidateSignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(g.config.ServerKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *PayTabsGateway) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", g.config.ServerKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling paytabs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading paytabs response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paytabs API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
