package models

import "time"

// Profile represents a donation recipient in the system.
type Profile struct {
	// ID is the recipient identifier issued by the auth provider.
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// Username is the public handle used in tip page and webhook URLs.
	Username string `json:"username" gorm:"column:username;uniqueIndex"`
	// Email is the account email from the auth provider.
	Email string `json:"email" gorm:"column:email"`
	// CoinbaseCommerceKey is the recipient's payment-processor API key.
	// Donations are disabled while it is empty.
	CoinbaseCommerceKey string `json:"coinbase_commerce_key,omitempty" gorm:"column:coinbase_commerce_key"`
	// WebhookSecret is the shared secret the payment processor signs webhook
	// deliveries with. A recipient with an empty secret cannot receive
	// webhook updates.
	WebhookSecret string `json:"-" gorm:"column:webhook_secret"`
	// TelegramUsername is the Telegram handle used to link a chat for
	// completed-donation notifications.
	TelegramUsername string `json:"telegram_username,omitempty" gorm:"column:telegram_username;index"`
	// TelegramChatID is filled in once the recipient messages the bot.
	TelegramChatID string `json:"-" gorm:"column:telegram_chat_id"`
	// NotifyEmail is the address completed-donation notifications go to.
	NotifyEmail string `json:"notify_email,omitempty" gorm:"column:notify_email"`
	// CreatedAt is the date when the profile was created.
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	// UpdatedAt is the date when the profile was last updated.
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// PublicProfile is the subset of a profile exposed on the public tip page.
type PublicProfile struct {
	Username string `json:"username"`
	// AcceptsDonations is true once a payment-processor API key is configured.
	AcceptsDonations bool `json:"accepts_donations"`
}

// Public returns the tip-page view of the profile.
func (p *Profile) Public() *PublicProfile {
	return &PublicProfile{
		Username:         p.Username,
		AcceptsDonations: p.CoinbaseCommerceKey != "",
	}
}
