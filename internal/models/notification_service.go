package models

// NotificationService delivers best-effort notifications to recipients.
// Delivery failures are logged and never affect the donation pipeline.
type NotificationService interface {
	// DonationCompleted notifies the recipient that a donation reached the
	// completed state.
	DonationCompleted(donation *Donation, profile *Profile)
}
