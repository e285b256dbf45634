package tipdrop

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/tipdrop/tipdrop/internal/models"
	"github.com/tipdrop/tipdrop/pkg/logger"
)

// Test errors
var (
	ErrMockFind   = errors.New("find error")
	ErrMockUpdate = errors.New("update error")
	ErrMockCharge = errors.New("charge error")
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// mockStore is an in-memory implementation of both store handles. Updates
// honor the (charge_id, recipient_id) scoping the real store applies.
type mockStore struct {
	mu sync.Mutex

	profiles  map[string]*models.Profile // keyed by profile id
	donations []*models.Donation

	findErr   error
	updateErr error

	updateCalls       int
	lastPendingOnly   bool
	createdDonations  int
	createdProfileIDs []string
}

func newMockStore() *mockStore {
	return &mockStore{profiles: make(map[string]*models.Profile)}
}

func (m *mockStore) addProfile(p *models.Profile) {
	m.profiles[p.ID] = p
}

func (m *mockStore) addDonation(d *models.Donation) {
	m.donations = append(m.donations, d)
}

func (m *mockStore) donation(chargeID, recipientID string) *models.Donation {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.donations {
		if d.ChargeID == chargeID && d.RecipientID == recipientID {
			return d
		}
	}
	return nil
}

// AdminStore

func (m *mockStore) GetRecipientByUsername(username string) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.Username == username {
			return p, nil
		}
	}
	return nil, models.ErrRecipientNotFound
}

func (m *mockStore) FindDonations(chargeID, recipientID string) ([]*models.Donation, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Donation
	for _, d := range m.donations {
		if d.ChargeID == chargeID && d.RecipientID == recipientID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateDonationStatus(chargeID, recipientID string, status models.DonationStatus, pendingOnly bool) (int64, error) {
	if m.updateErr != nil {
		return 0, m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	m.lastPendingOnly = pendingOnly
	var updated int64
	for _, d := range m.donations {
		if d.ChargeID != chargeID || d.RecipientID != recipientID {
			continue
		}
		if d.Status == status {
			continue
		}
		if pendingOnly && d.Status != models.StatusPending {
			continue
		}
		d.Status = status
		updated++
	}
	return updated, nil
}

// UserStore

func (m *mockStore) GetProfileByID(id string) (*models.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, models.ErrRecipientNotFound
}

func (m *mockStore) GetProfileByUsername(username string) (*models.Profile, error) {
	return m.GetRecipientByUsername(username)
}

func (m *mockStore) CreateProfile(profile *models.Profile) error {
	m.profiles[profile.ID] = profile
	m.createdProfileIDs = append(m.createdProfileIDs, profile.ID)
	return nil
}

func (m *mockStore) UpdateUsername(id, username string) error {
	for _, p := range m.profiles {
		if p.Username == username && p.ID != id {
			return models.ErrUsernameTaken
		}
	}
	m.profiles[id].Username = username
	return nil
}

func (m *mockStore) UpdateCommerceKey(id, key string) error {
	m.profiles[id].CoinbaseCommerceKey = key
	return nil
}

func (m *mockStore) UpdateWebhookSecret(id, secret string) error {
	m.profiles[id].WebhookSecret = secret
	return nil
}

func (m *mockStore) UpdateNotificationTargets(id, telegramUsername, notifyEmail string) error {
	m.profiles[id].TelegramUsername = telegramUsername
	m.profiles[id].NotifyEmail = notifyEmail
	return nil
}

func (m *mockStore) GetProfileByTelegramUsername(telegramUsername string) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.TelegramUsername == telegramUsername {
			return p, nil
		}
	}
	return nil, models.ErrRecipientNotFound
}

func (m *mockStore) SetTelegramChatID(telegramUsername, chatID string) error {
	for _, p := range m.profiles {
		if p.TelegramUsername == telegramUsername {
			p.TelegramChatID = chatID
		}
	}
	return nil
}

func (m *mockStore) CreateDonation(donation *models.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.donations = append(m.donations, donation)
	m.createdDonations++
	return nil
}

func (m *mockStore) ListDonations(recipientID string) ([]*models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Donation
	for _, d := range m.donations {
		if d.RecipientID == recipientID {
			out = append(out, d)
		}
	}
	return out, nil
}

// mockChargeService returns a fixed charge or a configured error.
type mockChargeService struct {
	charge *models.Charge
	err    error

	lastAPIKey string
	lastParams models.ChargeParams
}

func (m *mockChargeService) CreateCharge(_ context.Context, apiKey string, params models.ChargeParams) (*models.Charge, error) {
	m.lastAPIKey = apiKey
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	return m.charge, nil
}

// mockNotifier records completed-donation notifications on a channel so
// tests can wait for the async dispatch.
type mockNotifier struct {
	notified chan string
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{notified: make(chan string, 8)}
}

func (m *mockNotifier) DonationCompleted(donation *models.Donation, profile *models.Profile) {
	m.notified <- donation.ChargeID
}
