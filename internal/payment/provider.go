package payment

import "context"

// PaymentState is the provider's view of a payment. It is mapped onto order
// transitions by the polling worker and the webhook handler; the order state
// machine itself never sees provider vocabulary.
type PaymentState string

const (
	StatePending   PaymentState = "pending"
	StateSucceeded PaymentState = "succeeded"
	StateFailed    PaymentState = "failed"
)

// StatusSnapshot is what a poll of the provider returns. RawData is persisted
// opaquely on the order as paymentData.
type StatusSnapshot struct {
	ExternalPaymentID string
	State             PaymentState
	TransactionID     string
	RawData           []byte
}

// Provider is the bounded, retryable payment-gateway collaborator. Calls are
// expected to time out rather than block.
type Provider interface {
	FetchStatus(ctx context.Context, externalPaymentID string) (*StatusSnapshot, error)
}
