package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a vendor-neutral JSON/HTTP Provider implementation. The request
// timeout bounds every call; retries are the caller's concern.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type statusResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

func (c *Client) FetchStatus(ctx context.Context, externalPaymentID string) (*StatusSnapshot, error) {
	url := fmt.Sprintf("%s/payments/%s", c.BaseURL, externalPaymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch payment status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("provider error: %s (status %d)", string(body), resp.StatusCode)
	}

	var parsed statusResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &StatusSnapshot{
		ExternalPaymentID: parsed.ID,
		State:             mapProviderStatus(parsed.Status),
		TransactionID:     parsed.TransactionID,
		RawData:           body,
	}, nil
}

func mapProviderStatus(status string) PaymentState {
	switch status {
	case "succeeded", "paid", "confirmed":
		return StateSucceeded
	case "failed", "canceled", "rejected":
		return StateFailed
	default:
		return StatePending
	}
}
