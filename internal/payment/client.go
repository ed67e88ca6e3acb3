// Package payment talks to the external payment-verification collaborator.
// The provider is the sole authority on whether a checkout succeeded; this
// client never interprets tokens beyond relaying them.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Verification is the collaborator's answer for one payment reference.
type Verification struct {
	Verified     bool   `json:"verified"`
	AccessToken  string `json:"accessToken,omitempty"`
	PurchaseType string `json:"purchaseType,omitempty"`
}

// Client verifies payment intents against an HTTP provider endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type verifyRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// Verify posts the payment reference to the provider and decodes its verdict.
func (c *Client) Verify(ctx context.Context, paymentRef string) (Verification, error) {
	body, err := json.Marshal(verifyRequest{PaymentIntentID: paymentRef})
	if err != nil {
		return Verification{}, fmt.Errorf("encode verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return Verification{}, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Verification{}, fmt.Errorf("verify payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Verification{}, fmt.Errorf("verify payment: provider returned %d", resp.StatusCode)
	}

	var verification Verification
	if err := json.NewDecoder(resp.Body).Decode(&verification); err != nil {
		return Verification{}, fmt.Errorf("decode verification: %w", err)
	}
	return verification, nil
}

// StaticVerifier approves a fixed reference-to-purchase table; used when no
// provider is configured (local development) and in tests.
type StaticVerifier struct {
	Grants map[string]Verification
}

func (v *StaticVerifier) Verify(_ context.Context, paymentRef string) (Verification, error) {
	if grant, ok := v.Grants[paymentRef]; ok {
		return grant, nil
	}
	return Verification{Verified: false}, nil
}
