package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"mlmadmin/internal/models/db_models"
	"mlmadmin/pkg/utils"
)

const (
	GatewayCard   = "card"
	GatewayWallet = "wallet"
	GatewayPayPal = "paypal"
)

type ChargeRequest struct {
	AccountID        uuid.UUID
	SubscriptionID   uuid.UUID
	AmountMinor      int64
	Currency         string
	CustomerRef      string
	PaymentMethodRef string
	// IdempotencyKey is stable for one billing period so a replayed charge
	// yields the same gateway reference.
	IdempotencyKey string
	Description    string
}

type ChargeResult struct {
	GatewayRef string
}

type PaymentGateway interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type GatewayRegistry struct {
	gateways map[string]PaymentGateway
}

func NewGatewayRegistry(gateways ...PaymentGateway) *GatewayRegistry {
	r := &GatewayRegistry{gateways: make(map[string]PaymentGateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Name()] = g
	}
	return r
}

func (r *GatewayRegistry) Resolve(provider string) (PaymentGateway, error) {
	g, ok := r.gateways[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", utils.ErrUnsupportedGateway, provider)
	}
	return g, nil
}

// ------------------- Card processor -------------------

type CardGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCardGateway(baseURL, apiKey string, client *http.Client) *CardGateway {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &CardGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

func (g *CardGateway) Name() string { return GatewayCard }

type cardChargeRequest struct {
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	Customer      string            `json:"customer,omitempty"`
	PaymentMethod string            `json:"payment_method"`
	Description   string            `json:"description,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type cardChargeResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	FailureMessage string `json:"failure_message"`
	Error          *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *CardGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body, err := json.Marshal(cardChargeRequest{
		Amount:        req.AmountMinor,
		Currency:      strings.ToLower(req.Currency),
		Customer:      req.CustomerRef,
		PaymentMethod: req.PaymentMethodRef,
		Description:   req.Description,
		Metadata: map[string]string{
			"account_id":      req.AccountID.String(),
			"subscription_id": req.SubscriptionID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	res, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("card gateway: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("card gateway: read body: %w", err)
	}

	var out cardChargeResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("card gateway: decode status %d: %w", res.StatusCode, err)
		}
	}

	switch {
	case res.StatusCode == http.StatusPaymentRequired:
		msg := out.FailureMessage
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", utils.ErrPaymentDeclined, msg)
	case res.StatusCode >= 300:
		return nil, fmt.Errorf("card gateway: unexpected status %d", res.StatusCode)
	case out.Status != "succeeded":
		return nil, fmt.Errorf("%w: charge %s is %s %s", utils.ErrPaymentDeclined, out.ID, out.Status, out.FailureMessage)
	case out.ID == "":
		return nil, errors.New("card gateway: response has no charge id")
	}
	return &ChargeResult{GatewayRef: out.ID}, nil
}

// ------------------- PayPal -------------------

type PayPalGateway struct {
	baseURL string
	client  *http.Client
}

// NewPayPalGateway returns a gateway whose HTTP client fetches and refreshes
// an OAuth2 client-credentials token on demand.
func NewPayPalGateway(baseURL, clientID, clientSecret string, base *http.Client) *PayPalGateway {
	baseURL = strings.TrimRight(baseURL, "/")
	if base == nil {
		base = &http.Client{Timeout: 20 * time.Second}
	}

	cc := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     baseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	return &PayPalGateway{
		baseURL: baseURL,
		client:  cc.Client(ctx),
	}
}

func (g *PayPalGateway) Name() string { return GatewayPayPal }

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id"`
	CustomID    string       `json:"custom_id,omitempty"`
	Description string       `json:"description,omitempty"`
	Amount      paypalAmount `json:"amount"`
}

type paypalOrderRequest struct {
	Intent        string               `json:"intent"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
	PaymentSource struct {
		Token struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"token"`
	} `json:"payment_source"`
}

type paypalOrderResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (g *PayPalGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	order := paypalOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []paypalPurchaseUnit{{
			ReferenceID: req.SubscriptionID.String(),
			CustomID:    req.IdempotencyKey,
			Description: req.Description,
			Amount: paypalAmount{
				CurrencyCode: strings.ToUpper(req.Currency),
				Value:        decimal.New(req.AmountMinor, -2).StringFixed(2),
			},
		}},
	}
	order.PaymentSource.Token.ID = req.PaymentMethodRef
	order.PaymentSource.Token.Type = "BILLING_AGREEMENT"

	body, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v2/checkout/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Prefer", "return=minimal")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("PayPal-Request-Id", req.IdempotencyKey)
	}

	res, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("paypal: %w", err)
	}
	defer res.Body.Close()

	var out paypalOrderResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("paypal: decode status %d: %w", res.StatusCode, err)
	}

	switch {
	case res.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s", utils.ErrPaymentDeclined, out.Message)
	case res.StatusCode >= 300:
		return nil, fmt.Errorf("paypal: unexpected status %d", res.StatusCode)
	case out.Status != "COMPLETED":
		return nil, fmt.Errorf("%w: order %s is %s", utils.ErrPaymentDeclined, out.ID, out.Status)
	}
	return &ChargeResult{GatewayRef: out.ID}, nil
}

// ------------------- Internal wallet -------------------

type WalletGateway struct {
	wallet WalletServiceInterface
}

func NewWalletGateway(wallet WalletServiceInterface) *WalletGateway {
	return &WalletGateway{wallet: wallet}
}

func (g *WalletGateway) Name() string { return GatewayWallet }

// Charge derives the reference from the idempotency key and debits at most
// once per reference: a replay finds the earlier ledger line and returns the
// same reference without touching the balance.
func (g *WalletGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	ref := "wallet:" + req.IdempotencyKey
	if req.IdempotencyKey == "" {
		ref = "wallet:" + uuid.NewString()
	}

	_, err := g.wallet.Debit(ctx, req.AccountID, req.AmountMinor, db_models.ReasonSubscription, WalletRef{
		Type:        "payment",
		ID:          ref,
		Description: req.Description,
		OncePerRef:  true,
	})
	if errors.Is(err, utils.ErrInsufficientBalance) {
		return nil, fmt.Errorf("%w: %v", utils.ErrPaymentDeclined, err)
	}
	if err != nil {
		return nil, err
	}
	return &ChargeResult{GatewayRef: ref}, nil
}
