package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"telemart/storecore/internal/model"
	"telemart/storecore/internal/repository"
	"telemart/storecore/internal/service"
)

type webhookTestEnv struct {
	router *gin.Engine
	orders service.OrderService
	store  repository.Store
}

func newWebhookTestEnv(t *testing.T) *webhookTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	state := repository.NewMemoryStateStore()
	orders := service.NewOrderService(store, 600)

	router := gin.New()
	h := NewWebhookHandler(orders, state, zap.NewNop())
	router.POST("/webhooks/payment", h.HandlePayment)

	return &webhookTestEnv{router: router, orders: orders, store: store}
}

func (e *webhookTestEnv) createAwaitingOrder(t *testing.T, externalID string) *model.Order {
	t.Helper()
	ctx := context.Background()

	user := &model.User{Username: "buyer"}
	if err := e.store.Users().Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	product := &model.Product{
		Name:     "coins-1000",
		Kind:     model.ProductKindCoins,
		Price:    decimal.NewFromInt(100),
		Value:    1000,
		IsActive: true,
	}
	if err := e.store.Products().Create(ctx, product); err != nil {
		t.Fatalf("create product: %v", err)
	}

	order, err := e.orders.Create(ctx, service.CreateOrderParams{
		UserID:       user.ID,
		ProductID:    product.ID,
		Quantity:     1,
		PaymentType:  model.PaymentTypeCrypto,
		ExchangeRate: decimal.NewFromInt(50000),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := e.orders.AttachExternalPayment(ctx, order.ID, externalID, nil); err != nil {
		t.Fatalf("attach external payment: %v", err)
	}
	return order
}

func (e *webhookTestEnv) post(t *testing.T, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *webhookTestEnv) orderStatus(t *testing.T, externalID string) model.OrderStatus {
	t.Helper()
	order, err := e.orders.GetByExternalPaymentID(context.Background(), externalID)
	if err != nil {
		t.Fatalf("load order: %v", err)
	}
	return order.Status
}

func TestWebhookSucceededMarksPaid(t *testing.T) {
	env := newWebhookTestEnv(t)
	env.createAwaitingOrder(t, "prov-1")

	rec := env.post(t, map[string]any{
		"event_id":            "evt-1",
		"event":               "payment.succeeded",
		"external_payment_id": "prov-1",
		"transaction_id":      "tx-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	if got := env.orderStatus(t, "prov-1"); got != model.OrderStatusPaid {
		t.Fatalf("order status = %s, want paid", got)
	}
}

func TestWebhookReplayIsNoOp(t *testing.T) {
	env := newWebhookTestEnv(t)
	order := env.createAwaitingOrder(t, "prov-1")
	ctx := context.Background()

	body := map[string]any{
		"event_id":            "evt-1",
		"event":               "payment.succeeded",
		"external_payment_id": "prov-1",
		"transaction_id":      "tx-1",
	}
	if rec := env.post(t, body); rec.Code != http.StatusOK {
		t.Fatalf("first delivery: status = %d (body %s)", rec.Code, rec.Body)
	}
	before, err := env.orders.History(ctx, order.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	rec := env.post(t, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("replay: status = %d (body %s)", rec.Code, rec.Body)
	}
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode replay body: %v", err)
	}
	if envelope.Data["deduplicated"] != true {
		t.Fatalf("replay not deduplicated: %s", rec.Body)
	}

	after, err := env.orders.History(ctx, order.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("replay appended history: %d -> %d", len(before), len(after))
	}
	if got := env.orderStatus(t, "prov-1"); got != model.OrderStatusPaid {
		t.Fatalf("order status = %s, want paid", got)
	}
}

// A failed delivery must not burn its event id: the provider's retry carries
// the same event_id and has to be processed, not answered as a replay.
func TestWebhookRetryAfterFailedDelivery(t *testing.T) {
	env := newWebhookTestEnv(t)
	env.createAwaitingOrder(t, "prov-1")

	// Missing transaction_id: rejected as an integrity violation.
	rec := env.post(t, map[string]any{
		"event_id":            "evt-1",
		"event":               "payment.succeeded",
		"external_payment_id": "prov-1",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("broken delivery: status = %d, want 500 (body %s)", rec.Code, rec.Body)
	}
	if got := env.orderStatus(t, "prov-1"); got != model.OrderStatusAwaitingPayment {
		t.Fatalf("order status = %s, want awaiting_payment", got)
	}

	// Retry of the same event id, now complete.
	rec = env.post(t, map[string]any{
		"event_id":            "evt-1",
		"event":               "payment.succeeded",
		"external_payment_id": "prov-1",
		"transaction_id":      "tx-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("retry: status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode retry body: %v", err)
	}
	if envelope.Data["deduplicated"] == true {
		t.Fatalf("retry of a failed delivery was swallowed as a replay: %s", rec.Body)
	}
	if got := env.orderStatus(t, "prov-1"); got != model.OrderStatusPaid {
		t.Fatalf("order status = %s, want paid", got)
	}
}

func TestWebhookRegisteredRequiresOrderID(t *testing.T) {
	env := newWebhookTestEnv(t)

	rec := env.post(t, map[string]any{
		"event_id":            "evt-1",
		"event":               "payment.registered",
		"external_payment_id": "prov-1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body)
	}
}
