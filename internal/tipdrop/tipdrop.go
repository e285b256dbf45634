package tipdrop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tipdrop/tipdrop/internal/config"
	"github.com/tipdrop/tipdrop/internal/models"
	"github.com/tipdrop/tipdrop/pkg/logger"
	"github.com/tipdrop/tipdrop/pkg/validation"
)

// Tipdrop is the main struct for the tipdrop application.
// It serves all business logic: the webhook reconciliation path operates
// through the elevated admin store, everything else through the user store.
type Tipdrop struct {
	logger *logger.Logger
	config *config.Config

	admin       models.AdminStore
	users       models.UserStore
	charges     models.ChargeService
	notificator models.NotificationService
}

// NewTipdrop creates a new Tipdrop instance
func NewTipdrop(
	admin models.AdminStore,
	users models.UserStore,
	charges models.ChargeService,
	notificator models.NotificationService,
	logger *logger.Logger,
	config *config.Config,
) models.TipdropI {
	return &Tipdrop{
		admin:       admin,
		users:       users,
		charges:     charges,
		notificator: notificator,
		logger:      logger,
		config:      config,
	}
}

// LookupRecipient resolves a webhook recipient. A recipient without a
// configured webhook secret cannot authenticate deliveries, so it is reported
// not found rather than leaving the endpoint to fail later.
func (t *Tipdrop) LookupRecipient(username string) (*models.Profile, error) {
	profile, err := t.admin.GetRecipientByUsername(username)
	if err != nil {
		return nil, err
	}

	if profile.WebhookSecret == "" {
		return nil, models.ErrRecipientNotFound
	}

	return profile, nil
}

// ReconcileDonation applies a charge lifecycle status to the donations
// matching (chargeID, recipientID). Both the lookup and the update carry the
// recipient scope so a delivery authenticated under one recipient's secret
// can never touch another recipient's rows, even on a charge id collision.
func (t *Tipdrop) ReconcileDonation(chargeID, recipientID string, status models.DonationStatus) error {
	donations, err := t.admin.FindDonations(chargeID, recipientID)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrUpdateFailed, err)
	}

	if len(donations) == 0 {
		// A charge with no recorded donation is an integration bug worth
		// surfacing, not a silent success.
		return models.ErrDonationNotFound
	}

	updated, err := t.admin.UpdateDonationStatus(chargeID, recipientID, status, t.config.GuardTerminalStatus)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrUpdateFailed, err)
	}

	// Redelivered or guard-refused transitions change no rows. They are
	// still successes, but must not repeat the notification side effect.
	if updated == 0 {
		t.logger.Info("Donation status unchanged", "charge_id", chargeID, "recipient_id", recipientID, "status", status)
		return nil
	}

	t.logger.Info("Donation status updated", "charge_id", chargeID, "recipient_id", recipientID, "status", status)

	if status == models.StatusCompleted && t.notificator != nil {
		profile, perr := t.users.GetProfileByID(recipientID)
		if perr != nil {
			t.logger.Error("Failed to load profile for notification", "recipient_id", recipientID, "error", perr)
			return nil
		}
		donation := donations[0]
		go t.notificator.DonationCompleted(donation, profile)
	}

	return nil
}

// CreateTip creates a hosted charge with the recipient's payment-processor
// key and records a pending donation for it. Returns the donation and the
// hosted checkout URL the donor is redirected to.
func (t *Tipdrop) CreateTip(ctx context.Context, req *models.TipRequest) (*models.Donation, string, error) {
	profile, err := t.users.GetProfileByUsername(req.Username)
	if err != nil {
		return nil, "", err
	}

	if profile.CoinbaseCommerceKey == "" {
		return nil, "", models.ErrDonationsDisabled
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	charge, err := t.charges.CreateCharge(ctx, profile.CoinbaseCommerceKey, models.ChargeParams{
		Name:        "Donation from " + req.DonorName,
		Description: req.Message,
		Amount:      req.Amount,
		Currency:    currency,
		Username:    profile.Username,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create charge: %s", err)
	}

	donation := &models.Donation{
		ID:          uuid.NewString(),
		ChargeID:    charge.ID,
		RecipientID: profile.ID,
		DonorName:   req.DonorName,
		Message:     req.Message,
		Amount:      req.Amount,
		Currency:    currency,
		Status:      models.StatusPending,
	}

	if err := t.users.CreateDonation(donation); err != nil {
		// The charge exists on the processor side but was never recorded;
		// the webhook for it will answer 404 until this is resolved.
		t.logger.Error("Charge created but donation insert failed", "charge_id", charge.ID, "error", err)
		return nil, "", err
	}

	t.logger.Info("Donation created", "charge_id", charge.ID, "recipient", profile.Username, "amount", req.Amount)
	return donation, charge.HostedURL, nil
}

// PublicProfile returns the tip-page view of a recipient.
func (t *Tipdrop) PublicProfile(username string) (*models.PublicProfile, error) {
	profile, err := t.users.GetProfileByUsername(username)
	if err != nil {
		return nil, err
	}

	return profile.Public(), nil
}

// Profile returns the dashboard profile for an authenticated user, creating
// it on first access with a fresh webhook secret.
func (t *Tipdrop) Profile(user *models.AuthUser) (*models.Profile, error) {
	profile, err := t.users.GetProfileByID(user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, models.ErrRecipientNotFound) {
		return nil, err
	}

	profile = &models.Profile{
		ID:            user.ID,
		Email:         user.Email,
		WebhookSecret: newWebhookSecret(),
	}
	if err := t.users.CreateProfile(profile); err != nil {
		return nil, err
	}

	t.logger.Info("Profile created", "id", user.ID)
	return profile, nil
}

func (t *Tipdrop) SetUsername(userID, username string) error {
	normalized, err := validation.ValidateAndNormalizeUsername(username)
	if err != nil {
		return err
	}

	return t.users.UpdateUsername(userID, normalized)
}

func (t *Tipdrop) SetCommerceKey(userID, key string) error {
	return t.users.UpdateCommerceKey(userID, key)
}

func (t *Tipdrop) SetNotificationTargets(userID, telegramUsername, notifyEmail string) error {
	return t.users.UpdateNotificationTargets(userID, strings.TrimPrefix(telegramUsername, "@"), notifyEmail)
}

// RotateWebhookSecret generates and stores a fresh webhook secret. The
// recipient has to re-enter it in the payment processor's dashboard.
func (t *Tipdrop) RotateWebhookSecret(userID string) (string, error) {
	secret := newWebhookSecret()
	if err := t.users.UpdateWebhookSecret(userID, secret); err != nil {
		return "", err
	}

	t.logger.Info("Webhook secret rotated", "id", userID)
	return secret, nil
}

// ListDonations returns the user's donations, newest first.
func (t *Tipdrop) ListDonations(userID string) ([]*models.Donation, error) {
	return t.users.ListDonations(userID)
}

// newWebhookSecret returns a 64-character random hex secret.
func newWebhookSecret() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
