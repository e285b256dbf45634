package notificator

import (
	"fmt"
	"runtime/debug"

	"github.com/tipdrop/tipdrop/internal/models"
	"github.com/tipdrop/tipdrop/pkg/logger"
)

// Notificator fans completed-donation notifications out to whatever channels
// the recipient has configured. Delivery is best effort: failures are logged
// and never propagate back into the donation pipeline.
type Notificator struct {
	logger *logger.Logger

	TelegramNotificator *TelegramNotificator
	EmailNotificator    *EmailNotificator
}

func NewNotificator(logger *logger.Logger, telNotif *TelegramNotificator, emailNotif *EmailNotificator) *Notificator {
	return &Notificator{logger: logger, TelegramNotificator: telNotif, EmailNotificator: emailNotif}
}

// safeCall runs a function with panic recovery (synchronous, no goroutine spawning)
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (n *Notificator) DonationCompleted(donation *models.Donation, profile *models.Profile) {
	message := fmt.Sprintf("New donation: %s %s from %s", donation.Amount, donation.Currency, donation.DonorName)
	if donation.Message != "" {
		message += "\n" + donation.Message
	}

	if n.TelegramNotificator != nil && profile.TelegramChatID != "" {
		chatID := profile.TelegramChatID
		n.safeCall(func() { n.TelegramNotificator.SendNotification(chatID, message) }, "telegramNotification")
	}
	if n.EmailNotificator != nil && profile.NotifyEmail != "" {
		email := profile.NotifyEmail
		n.safeCall(func() { n.EmailNotificator.SendNotification(email, message) }, "emailNotification")
	}
}
