package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/plutov/paypal/v4"
)

// PayPalConfig holds PayPal REST credentials and checkout URLs.
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	Live         bool
	ReturnURL    string
	CancelURL    string
}

// PayPalGateway creates checkout orders through the PayPal Orders v2 API.
type PayPalGateway struct {
	config *PayPalConfig
	client *paypal.Client
}

// NewPayPalGateway builds the client and fetches an initial access token so
// credential problems surface at startup rather than on the first payment.
func NewPayPalGateway(cfg *PayPalConfig) (*PayPalGateway, error) {
	apiBase := paypal.APIBaseSandBox
	if cfg.Live {
		apiBase = paypal.APIBaseLive
	}

	client, err := paypal.NewClient(cfg.ClientID, cfg.ClientSecret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("error creating paypal client: %w", err)
	}
	if _, err := client.GetAccessToken(context.Background()); err != nil {
		return nil, fmt.Errorf("error fetching paypal access token: %w", err)
	}

	return &PayPalGateway{config: cfg, client: client}, nil
}

func (g *PayPalGateway) Name() string {
	return "paypal"
}

// CreatePayment creates a CAPTURE-intent order. The application ID rides in
// custom_id, the payment token in reference_id, and the approval URL comes
// from the order's HATEOAS links.
func (g *PayPalGateway) CreatePayment(ctx context.Context, token string, req PaymentRequest) (*GatewayResult, error) {
	purchaseUnits := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: token,
			CustomID:    req.ApplicationID,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: strings.ToUpper(req.Currency),
				Value:    req.Amount.StringFixed(2),
			},
			Description: fmt.Sprintf("Service payment for application %s", req.ApplicationID),
		},
	}

	applicationContext := &paypal.ApplicationContext{
		ReturnURL: g.config.ReturnURL,
		CancelURL: g.config.CancelURL,
	}

	order, err := g.client.CreateOrder(ctx, "CAPTURE", purchaseUnits, nil, applicationContext)
	if err != nil {
		return nil, fmt.Errorf("error creating paypal order: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("paypal order was not created")
	}

	approvalURL := approvalLink(order)
	if approvalURL == "" {
		return nil, fmt.Errorf("paypal order %s has no approval link", order.ID)
	}

	raw, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("error marshaling paypal order: %w", err)
	}

	return &GatewayResult{
		TransactionID: order.ID,
		RedirectURL:   approvalURL,
		RawResponse:   raw,
	}, nil
}

func approvalLink(order *paypal.Order) string {
	for _, link := range order.Links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}
