package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tipdrop/tipdrop/internal/models"
	"github.com/tipdrop/tipdrop/pkg/logger"
)

// AdminStore is the cross-tenant store handle for the webhook ingestion path.
// Privilege is explicit in the type: only the webhook endpoint is constructed
// with one of these.
type AdminStore struct {
	logger *logger.Logger

	conn *gorm.DB
}

func NewAdminStore(conn *gorm.DB, logger *logger.Logger) models.AdminStore {
	return &AdminStore{conn: conn, logger: logger}
}

func (s *AdminStore) GetRecipientByUsername(username string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.conn.Where("username = ?", username).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to get recipient: %s", err)
	}

	return &profile, nil
}

func (s *AdminStore) FindDonations(chargeID, recipientID string) ([]*models.Donation, error) {
	var donations []*models.Donation
	if err := s.conn.Where("charge_id = ? AND recipient_id = ?", chargeID, recipientID).Find(&donations).Error; err != nil {
		return nil, fmt.Errorf("failed to find donations: %s", err)
	}

	return donations, nil
}

func (s *AdminStore) UpdateDonationStatus(chargeID, recipientID string, status models.DonationStatus, pendingOnly bool) (int64, error) {
	query := s.conn.Model(&models.Donation{}).
		Where("charge_id = ? AND recipient_id = ?", chargeID, recipientID).
		Where("status <> ?", status)
	if pendingOnly {
		query = query.Where("status = ?", models.StatusPending)
	}

	result := query.Update("status", status)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update donation status: %s", result.Error)
	}

	return result.RowsAffected, nil
}
