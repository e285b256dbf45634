package models

import "context"

// TipRequest is a donor's submission from the public tip page.
type TipRequest struct {
	Username  string
	DonorName string
	Message   string
	Amount    string
	Currency  string
}

type TipdropI interface {
	// LookupRecipient resolves a webhook recipient by username. Recipients
	// with no configured webhook secret are reported as not found so the
	// response never reveals whether the username exists.
	LookupRecipient(username string) (*Profile, error)

	// ReconcileDonation applies a charge lifecycle status to the donations
	// matching (chargeID, recipientID). The update is idempotent and scoped
	// to the recipient so an event authenticated under one recipient's
	// secret can never alter another recipient's donations.
	ReconcileDonation(chargeID, recipientID string, status DonationStatus) error

	// CreateTip creates a hosted charge with the recipient's payment
	// processor key and records a pending donation for it. Returns the
	// donation and the hosted checkout URL.
	CreateTip(ctx context.Context, req *TipRequest) (*Donation, string, error)

	// PublicProfile returns the tip-page view of a recipient.
	PublicProfile(username string) (*PublicProfile, error)

	// Profile returns the dashboard profile for an authenticated user,
	// creating it on first access.
	Profile(user *AuthUser) (*Profile, error)

	SetUsername(userID, username string) error
	SetCommerceKey(userID, key string) error
	SetNotificationTargets(userID, telegramUsername, notifyEmail string) error

	// RotateWebhookSecret generates and stores a fresh webhook secret and
	// returns it. The previous secret stops validating immediately.
	RotateWebhookSecret(userID string) (string, error)

	// ListDonations returns the user's donations, newest first.
	ListDonations(userID string) ([]*Donation, error)
}
