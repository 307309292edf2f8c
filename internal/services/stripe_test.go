package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func signPayload(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhook(t *testing.T) {
	svc := NewStripeService("sk_test", "whsec_test")
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)

	ts := time.Now().Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, signPayload("whsec_test", ts, payload))

	event, err := svc.VerifyWebhook(payload, header)
	require.NoError(t, err)
	require.Equal(t, "evt_1", event.ID)
	require.Equal(t, "payment_intent.succeeded", event.Type)
}

func TestVerifyWebhookRejectsBadSignature(t *testing.T) {
	svc := NewStripeService("sk_test", "whsec_test")
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	ts := time.Now().Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, signPayload("whsec_other", ts, payload))

	_, err := svc.VerifyWebhook(payload, header)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookRejectsStaleTimestamp(t *testing.T) {
	svc := NewStripeService("sk_test", "whsec_test")
	payload := []byte(`{"id":"evt_1","type":"charge.refunded"}`)

	ts := time.Now().Add(-10 * time.Minute).Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, signPayload("whsec_test", ts, payload))

	_, err := svc.VerifyWebhook(payload, header)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookRejectsMalformedHeader(t *testing.T) {
	svc := NewStripeService("sk_test", "whsec_test")

	_, err := svc.VerifyWebhook([]byte(`{}`), "nonsense")
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = svc.VerifyWebhook([]byte(`{}`), "t=notanumber,v1=deadbeef")
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookRequiresConfiguration(t *testing.T) {
	svc := NewStripeService("sk_test", "")

	_, err := svc.VerifyWebhook([]byte(`{}`), "t=1,v1=deadbeef")
	require.ErrorIs(t, err, ErrStripeNotConfigured)
}

func TestCreatePaymentIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		require.Equal(t, "49500", r.PostForm.Get("amount"))
		require.Equal(t, "inr", r.PostForm.Get("currency"))
		require.Equal(t, "KOLZO-20250101-0001", r.PostForm.Get("metadata[order_number]"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"pi_1","client_secret":"pi_1_secret","status":"requires_payment_method","amount":49500,"currency":"inr"}`)
	}))
	defer server.Close()

	svc := NewStripeService("sk_test", "whsec_test")
	svc.baseURL = server.URL

	intent, err := svc.CreatePaymentIntent(context.Background(), 49500, "inr", "KOLZO-20250101-0001")
	require.NoError(t, err)
	require.Equal(t, "pi_1", intent.ID)
	require.Equal(t, "pi_1_secret", intent.ClientSecret)
	require.Equal(t, int64(49500), intent.Amount)
}

func TestCreatePaymentIntentSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error":{"message":"Your card was declined."}}`)
	}))
	defer server.Close()

	svc := NewStripeService("sk_test", "whsec_test")
	svc.baseURL = server.URL

	_, err := svc.CreatePaymentIntent(context.Background(), 100, "inr", "KOLZO-20250101-0002")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Your card was declined.")
}

func TestCreatePaymentIntentRequiresConfiguration(t *testing.T) {
	svc := NewStripeService("", "")

	_, err := svc.CreatePaymentIntent(context.Background(), 100, "inr", "KOLZO-20250101-0003")
	require.ErrorIs(t, err, ErrStripeNotConfigured)
}
