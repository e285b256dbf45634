package models

import "time"

// DonationStatus is the lifecycle state of a donation.
type DonationStatus string

const (
	StatusPending   DonationStatus = "pending"
	StatusCompleted DonationStatus = "completed"
	StatusFailed    DonationStatus = "failed"
)

// Terminal reports whether no further transition is defined out of the status.
func (s DonationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Donation represents a single payment attempt against a recipient.
type Donation struct {
	// ID is the unique identifier for the donation.
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// ChargeID is the payment-processor-assigned charge identifier. It is not
	// guaranteed unique across recipients, so lookups are always scoped by
	// (charge_id, recipient_id).
	ChargeID string `json:"charge_id" gorm:"column:charge_id;index"`
	// RecipientID is the profile that receives the donation.
	RecipientID string `json:"recipient_id" gorm:"column:recipient_id;index"`
	// DonorName is the name the donor entered on the tip page.
	DonorName string `json:"donor_name" gorm:"column:donor_name"`
	// Message is the donor's message.
	Message string `json:"message" gorm:"column:message"`
	// Amount is the fixed-price amount as sent to the payment processor.
	Amount string `json:"amount" gorm:"column:amount"`
	// Currency is the ISO currency code of the amount.
	Currency string `json:"currency" gorm:"column:currency"`
	// Status is the donation lifecycle state. It is the only field the
	// webhook path ever mutates.
	Status DonationStatus `json:"status" gorm:"column:status;index"`
	// CreatedAt is the date when the donation was created.
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	// UpdatedAt is the date when the donation was last updated.
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}
