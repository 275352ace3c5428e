package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
)

const testSigningSecret = "test-signing-secret"

func signSlackRequest(t *testing.T, req *http.Request, body []byte, secret string) {
	t.Helper()

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(secret))
	_, err := mac.Write([]byte(baseString))
	gt.NoError(t, err).Required()

	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySlackSignature(t *testing.T) {
	body := []byte(`{"type":"url_verification"}`)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	sign := func(secret string) string {
		baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(baseString)) //nolint:errcheck
		return "v0=" + hex.EncodeToString(mac.Sum(nil))
	}

	t.Run("valid signature", func(t *testing.T) {
		err := verifySlackSignature(testSigningSecret, timestamp, sign(testSigningSecret), body)
		gt.NoError(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		err := verifySlackSignature(testSigningSecret, timestamp, sign("other-secret"), body)
		gt.Error(t, err)
	})

	t.Run("missing headers", func(t *testing.T) {
		gt.Error(t, verifySlackSignature(testSigningSecret, "", sign(testSigningSecret), body))
		gt.Error(t, verifySlackSignature(testSigningSecret, timestamp, "", body))
	})

	t.Run("stale timestamp", func(t *testing.T) {
		old := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)
		baseString := fmt.Sprintf("v0:%s:%s", old, body)
		mac := hmac.New(sha256.New, []byte(testSigningSecret))
		mac.Write([]byte(baseString)) //nolint:errcheck
		sig := "v0=" + hex.EncodeToString(mac.Sum(nil))

		gt.Error(t, verifySlackSignature(testSigningSecret, old, sig, body))
	})
}

func TestSlackWebhookEndpoint(t *testing.T) {
	server := New(WithSlackWebhook(NewSlackWebhookHandler(nil), testSigningSecret))

	t.Run("url verification challenge", func(t *testing.T) {
		body := []byte(`{"type":"url_verification","challenge":"challenge-token-123"}`)
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		signSlackRequest(t, req, body, testSigningSecret)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Body.String()).Contains("challenge-token-123")
	})

	t.Run("unsigned request is rejected", func(t *testing.T) {
		body := []byte(`{"type":"url_verification","challenge":"nope"}`)
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("tampered body is rejected", func(t *testing.T) {
		body := []byte(`{"type":"url_verification","challenge":"original"}`)
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event",
			bytes.NewReader([]byte(`{"type":"url_verification","challenge":"tampered"}`)))
		signSlackRequest(t, req, body, testSigningSecret)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})
}

func TestHealthEndpoint(t *testing.T) {
	server := New()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains("ok")
}
