package http_api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tipdrop/tipdrop/internal/models"
	"github.com/tipdrop/tipdrop/internal/webhook"
	"github.com/tipdrop/tipdrop/pkg/logger"
)

// Test errors
var (
	ErrMockStorage = errors.New("storage error")
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type reconcileCall struct {
	chargeID    string
	recipientID string
	status      models.DonationStatus
}

// mockTipdrop implements models.TipdropI for handler tests.
type mockTipdrop struct {
	recipients map[string]*models.Profile // keyed by username

	reconcileErr   error
	reconcileCalls []reconcileCall

	donations []*models.Donation
	profile   *models.Profile
	hostedURL string
	tipErr    error
}

func (m *mockTipdrop) LookupRecipient(username string) (*models.Profile, error) {
	if p, ok := m.recipients[username]; ok && p.WebhookSecret != "" {
		return p, nil
	}
	return nil, models.ErrRecipientNotFound
}

func (m *mockTipdrop) ReconcileDonation(chargeID, recipientID string, status models.DonationStatus) error {
	m.reconcileCalls = append(m.reconcileCalls, reconcileCall{chargeID, recipientID, status})
	return m.reconcileErr
}

func (m *mockTipdrop) CreateTip(_ context.Context, req *models.TipRequest) (*models.Donation, string, error) {
	if m.tipErr != nil {
		return nil, "", m.tipErr
	}
	return &models.Donation{ChargeID: "ch_new", Status: models.StatusPending}, m.hostedURL, nil
}

func (m *mockTipdrop) PublicProfile(username string) (*models.PublicProfile, error) {
	if p, ok := m.recipients[username]; ok {
		return p.Public(), nil
	}
	return nil, models.ErrRecipientNotFound
}

func (m *mockTipdrop) Profile(user *models.AuthUser) (*models.Profile, error) {
	return m.profile, nil
}

func (m *mockTipdrop) SetUsername(userID, username string) error { return nil }

func (m *mockTipdrop) SetCommerceKey(userID, key string) error { return nil }

func (m *mockTipdrop) SetNotificationTargets(userID, tgUsername, notifyEmail string) error {
	return nil
}

func (m *mockTipdrop) RotateWebhookSecret(userID string) (string, error) {
	return "rotated-secret", nil
}

func (m *mockTipdrop) ListDonations(userID string) ([]*models.Donation, error) {
	return m.donations, nil
}

// mockAuth resolves one fixed token.
type mockAuth struct {
	token string
	user  *models.AuthUser
}

func (m *mockAuth) GetUser(_ context.Context, accessToken string) (*models.AuthUser, error) {
	if m.user != nil && accessToken == m.token {
		return m.user, nil
	}
	return nil, models.ErrUnauthorized
}

func newTestServer(app *mockTipdrop, authSvc models.AuthService) *HTTPServer {
	if authSvc == nil {
		authSvc = &mockAuth{}
	}
	return NewHTTPServer(app, webhook.NewClassifier(true), authSvc, 0, testLogger())
}

func appWithAlice() *mockTipdrop {
	return &mockTipdrop{
		recipients: map[string]*models.Profile{
			"alice": {ID: "user-alice", Username: "alice", WebhookSecret: "S", CoinbaseCommerceKey: "key"},
		},
	}
}

func deliver(s *HTTPServer, username, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/"+username, bytes.NewBufferString(body))
	if signature != "" {
		req.Header.Set(webhook.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestWebhookHappyPath(t *testing.T) {
	app := appWithAlice()
	s := newTestServer(app, nil)

	body := `{"event":{"type":"charge:confirmed","data":{"id":"ch_1"}}}`
	w := deliver(s, "alice", body, webhook.Sign([]byte(body), "S"))

	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("response = %d %q, want 200 OK", w.Code, w.Body.String())
	}
	if len(app.reconcileCalls) != 1 {
		t.Fatalf("reconcile calls = %d, want 1", len(app.reconcileCalls))
	}
	call := app.reconcileCalls[0]
	if call.chargeID != "ch_1" || call.recipientID != "user-alice" || call.status != models.StatusCompleted {
		t.Errorf("reconcile call = %+v", call)
	}
}

func TestWebhookMissingSignature(t *testing.T) {
	app := appWithAlice()
	s := newTestServer(app, nil)

	w := deliver(s, "alice", `{"event":{"type":"charge:confirmed","data":{"id":"ch_1"}}}`, "")

	if w.Code != http.StatusUnauthorized || w.Body.String() != "No signature" {
		t.Errorf("response = %d %q, want 401 No signature", w.Code, w.Body.String())
	}
	if len(app.reconcileCalls) != 0 {
		t.Error("nothing may be reconciled without a signature")
	}
}

func TestWebhookInvalidSignature(t *testing.T) {
	app := appWithAlice()
	s := newTestServer(app, nil)

	body := `{"event":{"type":"charge:confirmed","data":{"id":"ch_1"}}}`
	w := deliver(s, "alice", body, webhook.Sign([]byte(body), "wrong-key"))

	if w.Code != http.StatusUnauthorized || w.Body.String() != "Invalid signature" {
		t.Errorf("response = %d %q, want 401 Invalid signature", w.Code, w.Body.String())
	}
	if len(app.reconcileCalls) != 0 {
		t.Error("donation must stay untouched on signature mismatch")
	}
}

func TestWebhookUnknownRecipient(t *testing.T) {
	app := appWithAlice()
	s := newTestServer(app, nil)

	body := `{"event":{"type":"charge:confirmed","data":{"id":"ch_1"}}}`
	w := deliver(s, "nonexistent", body, webhook.Sign([]byte(body), "S"))

	if w.Code != http.StatusNotFound || w.Body.String() != "User not found" {
		t.Errorf("response = %d %q, want 404 User not found", w.Code, w.Body.String())
	}
}

func TestWebhookRecipientWithoutSecret(t *testing.T) {
	app := appWithAlice()
	app.recipients["carol"] = &models.Profile{ID: "user-carol", Username: "carol"}
	s := newTestServer(app, nil)

	body := `{"event":{"type":"charge:confirmed","data":{"id":"ch_1"}}}`
	w := deliver(s, "carol", body, webhook.Sign([]byte(body), "S"))

	// Indistinguishable from an unknown username.
	if w.Code != http.StatusNotFound || w.Body.String() != "User not found" {
		t.Errorf("response = %d %q, want 404 User not found", w.Code, w.Body.String())
	}
}

func TestWebhookUnknownEventType(t *testing.T) {
	app := appWithAlice()
	s := newTestServer(app, nil)

	body := `{"event":{"type":"charge:delayed","data":{"id":"ch_1"}}}`
	w := deliver(s, "alice", body, webhook.Sign([]byte(body), "S"))

	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Errorf("response = %d %q, want 200 OK", w.Code, w.Body.String())
	}
	if len(app.reconcileCalls) != 0 {
		t.Error("unrecognized events must not mutate donations")
	}
}

func TestWebhookDonationNotFound(t *testing.T) {
	app := appWithAlice()
	app.reconcileErr = models.ErrDonationNotFound
	s := newTestServer(app, nil)

	body := `{"event":{"type":"charge:confirmed","data":{"id":"ch_missing"}}}`
	w := deliver(s, "alice", body, webhook.Sign([]byte(body), "S"))

	if w.Code != http.StatusNotFound {
		t.Errorf("response = %d, want 404", w.Code)
	}
}

func TestWebhookUpdateFailed(t *testing.T) {
	app := appWithAlice()
	app.reconcileErr = models.ErrUpdateFailed
	s := newTestServer(app, nil)

	body := `{"event":{"type":"charge:failed","data":{"id":"ch_1"}}}`
	w := deliver(s, "alice", body, webhook.Sign([]byte(body), "S"))

	// 5xx invites a provider retry for transient storage failures.
	if w.Code != http.StatusInternalServerError {
		t.Errorf("response = %d, want 500", w.Code)
	}
}

func TestWebhookUnexpectedError(t *testing.T) {
	app := appWithAlice()
	app.reconcileErr = ErrMockStorage
	s := newTestServer(app, nil)

	body := `{"event":{"type":"charge:confirmed","data":{"id":"ch_1"}}}`
	w := deliver(s, "alice", body, webhook.Sign([]byte(body), "S"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("response = %d, want 500", w.Code)
	}
}

func TestWebhookMalformedPayload(t *testing.T) {
	app := appWithAlice()
	s := newTestServer(app, nil)

	body := `this is not json`
	w := deliver(s, "alice", body, webhook.Sign([]byte(body), "S"))

	if w.Code != http.StatusInternalServerError || w.Body.String() != "Internal error" {
		t.Errorf("response = %d %q, want 500 Internal error", w.Code, w.Body.String())
	}
}

func TestWebhookChargeEventMissingID(t *testing.T) {
	app := appWithAlice()
	s := newTestServer(app, nil)

	body := `{"event":{"type":"charge:confirmed","data":{}}}`
	w := deliver(s, "alice", body, webhook.Sign([]byte(body), "S"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("response = %d, want 500", w.Code)
	}
	if len(app.reconcileCalls) != 0 {
		t.Error("reconciliation needs a charge id")
	}
}

func TestWebhookPendingEvent(t *testing.T) {
	app := appWithAlice()
	s := newTestServer(app, nil)

	body := `{"event":{"type":"charge:pending","data":{"id":"ch_1"}}}`
	w := deliver(s, "alice", body, webhook.Sign([]byte(body), "S"))

	if w.Code != http.StatusOK {
		t.Fatalf("response = %d, want 200", w.Code)
	}
	if len(app.reconcileCalls) != 1 || app.reconcileCalls[0].status != models.StatusPending {
		t.Errorf("reconcile calls = %+v, want one pending transition", app.reconcileCalls)
	}
}

func TestGetPublicProfile(t *testing.T) {
	app := appWithAlice()
	s := newTestServer(app, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/alice", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("response = %d, want 200", w.Code)
	}
	var profile models.PublicProfile
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if profile.Username != "alice" || !profile.AcceptsDonations {
		t.Errorf("profile = %+v", profile)
	}
}

func TestGetPublicProfileNotFound(t *testing.T) {
	s := newTestServer(appWithAlice(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/missing", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("response = %d, want 404", w.Code)
	}
}

func TestCreateTip(t *testing.T) {
	app := appWithAlice()
	app.hostedURL = "https://commerce.example/pay/ch_new"
	s := newTestServer(app, nil)

	body, _ := json.Marshal(gin.H{"username": "alice", "donor_name": "Dana", "message": "hi", "amount": "5.00"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tips", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("response = %d %s, want 201", w.Code, w.Body.String())
	}
	var resp TipResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Success || resp.ChargeID != "ch_new" || resp.HostedURL != app.hostedURL {
		t.Errorf("response = %+v", resp)
	}
}

func TestCreateTipValidation(t *testing.T) {
	s := newTestServer(appWithAlice(), nil)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing donor name", gin.H{"username": "alice", "amount": "5.00"}},
		{"missing amount", gin.H{"username": "alice", "donor_name": "Dana"}},
		{"negative amount", gin.H{"username": "alice", "donor_name": "Dana", "amount": "-5"}},
		{"non-numeric amount", gin.H{"username": "alice", "donor_name": "Dana", "amount": "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/tips", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("response = %d, want 400", w.Code)
			}
		})
	}
}

func TestCreateTipDonationsDisabled(t *testing.T) {
	app := appWithAlice()
	app.tipErr = models.ErrDonationsDisabled
	s := newTestServer(app, nil)

	body, _ := json.Marshal(gin.H{"username": "alice", "donor_name": "Dana", "amount": "5.00"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tips", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("response = %d, want 409", w.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	app := appWithAlice()
	app.profile = &models.Profile{ID: "user-alice", Username: "alice"}
	authSvc := &mockAuth{token: "good-token", user: &models.AuthUser{ID: "user-alice", Email: "a@example.com"}}
	s := newTestServer(app, authSvc)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer bad-token", http.StatusUnauthorized},
		{"valid token", "Bearer good-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("response = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestListDonations(t *testing.T) {
	app := appWithAlice()
	app.profile = &models.Profile{ID: "user-alice"}
	app.donations = []*models.Donation{
		{ID: "don-2", ChargeID: "ch_2", Status: models.StatusCompleted},
		{ID: "don-1", ChargeID: "ch_1", Status: models.StatusPending},
	}
	authSvc := &mockAuth{token: "good-token", user: &models.AuthUser{ID: "user-alice"}}
	s := newTestServer(app, authSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/donations", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("response = %d, want 200", w.Code)
	}
	var resp struct {
		Donations []*models.Donation `json:"donations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Donations) != 2 {
		t.Errorf("donations = %d, want 2", len(resp.Donations))
	}
}

func TestRotateWebhookSecret(t *testing.T) {
	app := appWithAlice()
	authSvc := &mockAuth{token: "good-token", user: &models.AuthUser{ID: "user-alice"}}
	s := newTestServer(app, authSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/webhook-secret", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("response = %d, want 200", w.Code)
	}
	var resp struct {
		WebhookSecret string `json:"webhook_secret"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.WebhookSecret != "rotated-secret" {
		t.Errorf("webhook_secret = %q", resp.WebhookSecret)
	}
}
