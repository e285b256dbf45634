package notificator

import (
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/tipdrop/tipdrop/pkg/logger"
)

type EmailNotificator struct {
	logger *logger.Logger

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string

	SMTPAuth smtp.Auth
}

func NewEmailNotificator(logger *logger.Logger, SMTPHost string, SMTPPort int, SMTPUser string, SMTPPassword string, SMTPSender string) *EmailNotificator {
	auth := smtp.PlainAuth(
		"",
		SMTPUser,
		SMTPPassword,
		SMTPHost,
	)

	return &EmailNotificator{
		logger:       logger,
		SMTPAuth:     auth,
		SMTPHost:     SMTPHost,
		SMTPPort:     SMTPPort,
		SMTPUser:     SMTPUser,
		SMTPPassword: SMTPPassword,
		SMTPSender:   SMTPSender,
	}
}

func (e *EmailNotificator) SendNotification(to, message string) {
	addr := fmt.Sprintf("%s:%s", e.SMTPHost, strconv.Itoa(e.SMTPPort))
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		e.SMTPSender,   // From address
		to,             // To address
		"New donation", // Subject
		message,        // Email body
	)
	if err := smtp.SendMail(addr, e.SMTPAuth, e.SMTPSender, []string{to}, []byte(msg)); err != nil {
		e.logger.Error("Failed to send email: ", err)
	}
}
