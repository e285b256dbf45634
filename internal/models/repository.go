package models

// AdminStore is the elevated, cross-tenant store handle used by the webhook
// ingestion path. It is injected into the webhook endpoint only; the ordinary
// user-facing surface receives a UserStore instead.
type AdminStore interface {
	// GetRecipientByUsername resolves a recipient including its webhook
	// secret. Returns ErrRecipientNotFound if no such username exists.
	GetRecipientByUsername(username string) (*Profile, error)

	// FindDonations returns all donations matching the (chargeID,
	// recipientID) pair. An empty slice is not an error.
	FindDonations(chargeID, recipientID string) ([]*Donation, error)

	// UpdateDonationStatus sets the status of every donation matching the
	// (chargeID, recipientID) pair and reports how many rows actually
	// changed state. Rows already carrying the requested status are left
	// untouched and not counted. When pendingOnly is set, only donations
	// still in the pending state are touched, leaving terminal states as
	// they are.
	UpdateDonationStatus(chargeID, recipientID string, status DonationStatus, pendingOnly bool) (int64, error)
}

// UserStore is the recipient-scoped store handle backing the public tip
// surface and the authenticated dashboard surface.
type UserStore interface {
	GetProfileByID(id string) (*Profile, error)
	GetProfileByUsername(username string) (*Profile, error)
	CreateProfile(profile *Profile) error

	UpdateUsername(id, username string) error
	UpdateCommerceKey(id, key string) error
	UpdateWebhookSecret(id, secret string) error
	UpdateNotificationTargets(id, telegramUsername, notifyEmail string) error

	// GetProfileByTelegramUsername resolves the profile that registered the
	// given Telegram username for notifications.
	GetProfileByTelegramUsername(telegramUsername string) (*Profile, error)
	// SetTelegramChatID links a Telegram chat to the profile that registered
	// the given Telegram username.
	SetTelegramChatID(telegramUsername, chatID string) error

	CreateDonation(donation *Donation) error
	// ListDonations returns the recipient's donations, newest first.
	ListDonations(recipientID string) ([]*Donation, error)
}
