package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPayTabsGateway_ValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *PayTabsConfig
		wantErr bool
	}{
		{
			name: "valid config",
			config: &PayTabsConfig{
				ProfileID:   "12345",
				ServerKey:   "test-server-key",
				CallbackURL: "https://test.com/callback",
			},
			wantErr: false,
		},
		{
			name: "missing profile id",
			config: &PayTabsConfig{
				ServerKey:   "test-server-key",
				CallbackURL: "https://test.com/callback",
			},
			wantErr: true,
		},
		{
			name: "missing server key",
			config: &PayTabsConfig{
				ProfileID:   "12345",
				CallbackURL: "https://test.com/callback",
			},
			wantErr: true,
		},
		{
			name: "missing callback url",
			config: &PayTabsConfig{
				ProfileID: "12345",
				ServerKey: "test-server-key",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewPayTabsGateway(tt.config)
			err := g.ValidateConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPayTabsGateway_CreatePayment(t *testing.T) {
	tests := []struct {
		name           string
		mockResponse   string
		mockStatusCode int
		wantTranRef    string
		wantErr        bool
	}{
		{
			name:           "hosted page created",
			mockResponse:   `{"tran_ref": "TST2201", "redirect_url": "https://secure.paytabs.com/payment/page/abc", "response_code": 4012}`,
			mockStatusCode: http.StatusOK,
			wantTranRef:    "TST2201",
			wantErr:        false,
		},
		{
			name:           "request rejected",
			mockResponse:   `{"response_code": 4001, "result": "Invalid profile"}`,
			mockStatusCode: http.StatusOK,
			wantErr:        true,
		},
		{
			name:           "api error",
			mockResponse:   `{"message": "Unauthorized"}`,
			mockStatusCode: http.StatusUnauthorized,
			wantErr:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPayload map[string]interface{}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/payment/request" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if r.Header.Get("Authorization") != "test-server-key" {
					t.Errorf("missing server key authorization header")
				}
				json.NewDecoder(r.Body).Decode(&gotPayload)
				w.WriteHeader(tt.mockStatusCode)
				w.Write([]byte(tt.mockResponse))
			}))
			defer server.Close()

			g := NewPayTabsGateway(&PayTabsConfig{
				ProfileID:   "12345",
				ServerKey:   "test-server-key",
				BaseURL:     server.URL,
				CallbackURL: "https://test.com/callback",
				ReturnURL:   "https://test.com/return",
			})

			result, err := g.CreatePayment(context.Background(), "token-123", PaymentRequest{
				ApplicationID: "app-1",
				Amount:        decimal.NewFromFloat(250.50),
				Currency:      "AED",
				PaymentMethod: "paytabs",
				CustomerInfo: CustomerInfo{
					Name:  "Jane Doe",
					Email: "jane@example.com",
				},
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreatePayment() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if result.TransactionID != tt.wantTranRef {
				t.Errorf("CreatePayment() tran_ref = %s, want %s", result.TransactionID, tt.wantTranRef)
			}
			if gotPayload["payment_token"] != "token-123" {
				t.Errorf("payment_token = %v, want token-123", gotPayload["payment_token"])
			}
			if gotPayload["cart_id"] != "app-1" {
				t.Errorf("cart_id = %v, want app-1", gotPayload["cart_id"])
			}
			if gotPayload["cart_amount"] != 250.50 {
				t.Errorf("cart_amount = %v, want 250.50", gotPayload["cart_amount"])
			}
		})
	}
}

func TestPayTabsGateway_QueryTransaction(t *testing.T) {
	tests := []struct {
		name         string
		mockResponse string
		wantStatus   PaymentStatus
	}{
		{
			name:         "authorized",
			mockResponse: `{"tran_ref": "TST1", "payment_result": {"response_status": "A", "response_code": "100"}}`,
			wantStatus:   PaymentStatusCompleted,
		},
		{
			name:         "still pending",
			mockResponse: `{"tran_ref": "TST2", "payment_result": {"response_status": "P", "response_code": ""}}`,
			wantStatus:   PaymentStatusProcessing,
		},
		{
			name:         "declined",
			mockResponse: `{"tran_ref": "TST3", "payment_result": {"response_status": "D", "response_code": "321"}}`,
			wantStatus:   PaymentStatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/payment/query" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Write([]byte(tt.mockResponse))
			}))
			defer server.Close()

			g := NewPayTabsGateway(&PayTabsConfig{
				ProfileID: "12345",
				ServerKey: "test-server-key",
				BaseURL:   server.URL,
			})

			status, raw, err := g.QueryTransaction(context.Background(), "TST1")
			if err != nil {
				t.Fatalf("QueryTransaction() error = %v", err)
			}
			if status != tt.wantStatus {
				t.Errorf("QueryTransaction() status = %s, want %s", status, tt.wantStatus)
			}
			if len(raw) == 0 {
				t.Errorf("QueryTransaction() returned empty raw body")
			}
		})
	}
}

func TestPayTabsGateway_ValidateSignature(t *testing.T) {
	serverKey := "test-server-key"
	body := []byte(`{"payment_token": "token-1", "resp_status": "A", "resp_code": "100"}`)

	mac := hmac.New(sha256.New, []byte(serverKey))
	mac.Write(body)
	validSignature := hex.EncodeToString(mac.Sum(nil))

	g := NewPayTabsGateway(&PayTabsConfig{
		ProfileID: "12345",
		ServerKey: serverKey,
	})

	if !g.ValidateSignature(body, validSignature) {
		t.Errorf("expected valid signature to pass")
	}
	if g.ValidateSignature(body, "deadbeef") {
		t.Errorf("expected tampered signature to fail")
	}
	if g.ValidateSignature([]byte(`{"payment_token": "other"}`), validSignature) {
		t.Errorf("expected signature over different body to fail")
	}
	if g.ValidateSignature(body, "") {
		t.Errorf("expected empty signature to fail")
	}
}
