package webhook

import "github.com/tipdrop/tipdrop/internal/models"

// Charge lifecycle event types emitted by the payment processor. The
// processor emits many other kinds (invoice, refund, ...) that this system
// ignores.
const (
	EventChargePending   = "charge:pending"
	EventChargeConfirmed = "charge:confirmed"
	EventChargeFailed    = "charge:failed"
)

// Classifier maps provider event types to donation statuses.
type Classifier struct {
	applyPending bool
}

// NewClassifier creates a classifier. applyPending controls whether
// charge:pending events map to the pending status or are ignored.
func NewClassifier(applyPending bool) *Classifier {
	return &Classifier{applyPending: applyPending}
}

// Classify returns the donation status implied by eventType. The second
// return is false for event types that do not affect donations; those must
// still be answered with success so the provider does not retry forever.
func (c *Classifier) Classify(eventType string) (models.DonationStatus, bool) {
	switch eventType {
	case EventChargePending:
		if !c.applyPending {
			return "", false
		}
		return models.StatusPending, true
	case EventChargeConfirmed:
		return models.StatusCompleted, true
	case EventChargeFailed:
		return models.StatusFailed, true
	default:
		return "", false
	}
}
