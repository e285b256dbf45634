package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tipdrop/tipdrop/internal/models"
	"github.com/tipdrop/tipdrop/pkg/logger"
)

// UserStore is the recipient-scoped store handle for the tip and dashboard
// surfaces. Every write is keyed by the owning profile id.
type UserStore struct {
	logger *logger.Logger

	conn *gorm.DB
}

func NewUserStore(conn *gorm.DB, logger *logger.Logger) models.UserStore {
	return &UserStore{conn: conn, logger: logger}
}

func (s *UserStore) GetProfileByID(id string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.conn.Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %s", err)
	}

	return &profile, nil
}

func (s *UserStore) GetProfileByUsername(username string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.conn.Where("username = ?", username).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to get profile by username: %s", err)
	}

	return &profile, nil
}

func (s *UserStore) CreateProfile(profile *models.Profile) error {
	if err := s.conn.Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %s", err)
	}

	return nil
}

func (s *UserStore) UpdateUsername(id, username string) error {
	err := s.conn.Model(&models.Profile{}).Where("id = ?", id).Update("username", username).Error
	if err != nil {
		// Unique index on username turns races into a constraint violation.
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return models.ErrUsernameTaken
		}
		return fmt.Errorf("failed to update username: %s", err)
	}

	return nil
}

func (s *UserStore) UpdateCommerceKey(id, key string) error {
	if err := s.conn.Model(&models.Profile{}).Where("id = ?", id).Update("coinbase_commerce_key", key).Error; err != nil {
		return fmt.Errorf("failed to update commerce key: %s", err)
	}

	return nil
}

func (s *UserStore) UpdateWebhookSecret(id, secret string) error {
	if err := s.conn.Model(&models.Profile{}).Where("id = ?", id).Update("webhook_secret", secret).Error; err != nil {
		return fmt.Errorf("failed to update webhook secret: %s", err)
	}

	return nil
}

func (s *UserStore) UpdateNotificationTargets(id, telegramUsername, notifyEmail string) error {
	updates := map[string]interface{}{
		"telegram_username": telegramUsername,
		"notify_email":      notifyEmail,
	}
	if err := s.conn.Model(&models.Profile{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update notification targets: %s", err)
	}

	return nil
}

func (s *UserStore) GetProfileByTelegramUsername(telegramUsername string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.conn.Where("telegram_username = ?", telegramUsername).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to get profile by telegram username: %s", err)
	}

	return &profile, nil
}

func (s *UserStore) SetTelegramChatID(telegramUsername, chatID string) error {
	if err := s.conn.Model(&models.Profile{}).Where("telegram_username = ?", telegramUsername).Update("telegram_chat_id", chatID).Error; err != nil {
		return fmt.Errorf("failed to set telegram chat ID: %s", err)
	}

	return nil
}

func (s *UserStore) CreateDonation(donation *models.Donation) error {
	if err := s.conn.Create(donation).Error; err != nil {
		return fmt.Errorf("failed to create donation: %s", err)
	}

	return nil
}

func (s *UserStore) ListDonations(recipientID string) ([]*models.Donation, error) {
	var donations []*models.Donation
	if err := s.conn.Where("recipient_id = ?", recipientID).Order("created_at DESC").Find(&donations).Error; err != nil {
		return nil, fmt.Errorf("failed to list donations: %s", err)
	}

	return donations, nil
}
