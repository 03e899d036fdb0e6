package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/coursemart/internal/currency"
)

func newTestClient(url string) *Client {
	c := NewClient(url, "sk_test")
	c.httpClient.RetryWaitMin = time.Millisecond
	c.httpClient.RetryWaitMax = 5 * time.Millisecond
	return c
}

func TestVerify_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/transaction/verify/T-123" {
			t.Fatalf("path = %s, want /transaction/verify/T-123", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Fatalf("authorization = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","reference":"T-123","amount":1500000,"currency":"NGN","paid_at":"2026-03-01T10:00:00Z"}}`))
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, err := client.Verify(ctx, "T-123")
	require.NoError(t, err)
	assert.Equal(t, "T-123", v.Reference)
	assert.Equal(t, currency.NGN, v.Currency)
	assert.True(t, decimal.NewFromInt(15000).Equal(v.Amount), "amount = %s", v.Amount)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), v.PaidAt.UTC())
}

func TestVerify_Declined(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":true,"data":{"status":"abandoned","reference":"T-1","amount":0,"currency":"NGN"}}`))
	}))
	defer ts.Close()

	v, err := newTestClient(ts.URL).Verify(context.Background(), "T-1")
	assert.ErrorIs(t, err, ErrDeclined)
	require.NotNil(t, v)
	assert.Equal(t, "abandoned", v.Status)
}

func TestVerify_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Verify(context.Background(), "T-404")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestVerify_RetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"status":true,"data":{"status":"success","reference":"T-9","amount":100,"currency":"USD"}}`))
	}))
	defer ts.Close()

	v, err := newTestClient(ts.URL).Verify(context.Background(), "T-9")
	require.NoError(t, err)
	assert.Equal(t, currency.USD, v.Currency)
	assert.Equal(t, int32(2), calls.Load())
}

func TestVerify_GivesUpOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Verify(context.Background(), "T-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDeclined))
	assert.Equal(t, int32(4), calls.Load())
}

func TestVerify_NotConfigured(t *testing.T) {
	var c *Client
	_, err := c.Verify(context.Background(), "T-1")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient("", "").Verify(context.Background(), "T-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
