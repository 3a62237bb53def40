package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

func sampleRequest() domain.SubscriptionRequest {
	token := "tok_1"
	installments := 3
	return domain.SubscriptionRequest{
		Code:     "100000001",
		Customer: domain.Customer{ID: "cus_1", Email: "ana@example.com"},
		Items: []domain.SubProduct{{
			Description:   "Plan",
			Quantity:      2,
			PricingScheme: domain.UnitPricing(1000),
			Cycles:        1,
		}},
		IntervalType:  domain.IntervalMonth,
		IntervalCount: 1,
		CardToken:     &token,
		Installments:  &installments,
		PaymentMethod: domain.PaymentMethodCreditCard,
	}
}

func TestClient_CreateSubscription(t *testing.T) {
	var gotKey, gotUser string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/core/v1/subscriptions", r.URL.Path)
		gotUser, _, _ = r.BasicAuth()
		gotKey = r.Header.Get(idempotencyHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"sub_1","status":"active","interval_count":1}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/core/v1/", "sk_test")
	require.NoError(t, err)

	raw, err := client.CreateSubscription(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Equal(t, "sub_1", raw["id"])
	require.Equal(t, "active", raw["status"])

	require.Equal(t, "sk_test", gotUser)
	require.Equal(t, idempotencyKey("100000001"), gotKey)
	require.Equal(t, "month", gotBody["interval"])
	require.Equal(t, "tok_1", gotBody["card_token"])
	require.Equal(t, float64(3), gotBody["installments"])
}

func TestClient_CreateSubscription_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"The request is invalid.","errors":{"card_token":["invalid"]}}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "sk_test")
	require.NoError(t, err)

	raw, err := client.CreateSubscription(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Equal(t, "failed", raw["status"])
	require.Equal(t, "The request is invalid.", raw["message"])
	require.Equal(t, http.StatusUnprocessableEntity, raw["http_status"])
}

func TestClient_CreateSubscription_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "sk_test")
	require.NoError(t, err)

	_, err = client.CreateSubscription(context.Background(), sampleRequest())
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestClient_CreateSubscription_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "sk_test")
	require.NoError(t, err)

	_, err = client.CreateSubscription(context.Background(), sampleRequest())
	require.ErrorIs(t, err, domain.ErrInvalidGatewayResponse)
}

func TestClient_CancelSubscription(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		if r.URL.Path == "/subscriptions/sub_missing" {
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"id":"sub_1","status":"canceled"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "sk_test")
	require.NoError(t, err)

	require.NoError(t, client.CancelSubscription(context.Background(), domain.Subscription{ID: "sub_1"}))
	require.Equal(t, "/subscriptions/sub_1", gotPath)

	err = client.CancelSubscription(context.Background(), domain.Subscription{ID: "sub_missing"})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusNotFound, httpErr.StatusCode)

	require.Error(t, client.CancelSubscription(context.Background(), domain.Subscription{}))
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "sk_test", WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = client.CreateSubscription(context.Background(), sampleRequest())
	require.Error(t, err)
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "://bad"} {
		_, err := NewClient(raw, "sk_test")
		require.Error(t, err, raw)
	}
}
