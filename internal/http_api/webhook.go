package http_api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tipdrop/tipdrop/internal/models"
	"github.com/tipdrop/tipdrop/internal/webhook"
)

// handleWebhook receives charge lifecycle deliveries from the payment
// processor. The pipeline is strictly linear: signature check, event
// classification, donation reconciliation. Response codes drive the
// provider's retry policy, so terminal conditions (bad signature, unknown
// recipient, unrecognized event) answer with non-retryable codes while
// transient storage failures answer 500 to invite a retry. Response bodies
// stay fixed and non-sensitive; detail goes to the log only.
func (s *HTTPServer) handleWebhook(c *gin.Context) {
	signature := c.GetHeader(webhook.SignatureHeader)
	if signature == "" {
		c.String(http.StatusUnauthorized, "No signature")
		return
	}

	// The raw body bytes are what the provider signed; they must be read
	// before any parsing.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.logger.Error("Failed to read webhook body", "error", err)
		c.String(http.StatusInternalServerError, "Internal error")
		return
	}

	username := c.Param("username")
	recipient, err := s.tipdrop.LookupRecipient(username)
	if err != nil {
		if !errors.Is(err, models.ErrRecipientNotFound) {
			s.logger.Error("Failed to look up webhook recipient", "username", username, "error", err)
			c.String(http.StatusInternalServerError, "Internal error")
			return
		}
		// Unknown username and missing secret answer identically.
		c.String(http.StatusNotFound, "User not found")
		return
	}

	if !webhook.VerifySignature(body, signature, recipient.WebhookSecret) {
		s.logger.Warn("Webhook signature mismatch", "username", username)
		c.String(http.StatusUnauthorized, "Invalid signature")
		return
	}

	payload, err := webhook.ParsePayload(body)
	if err != nil {
		s.logger.Error("Failed to parse webhook payload", "username", username, "error", err)
		c.String(http.StatusInternalServerError, "Internal error")
		return
	}

	status, ok := s.classifier.Classify(payload.Event.Type)
	if !ok {
		// Unknown and future event types fail open so the provider does
		// not retry them indefinitely.
		c.String(http.StatusOK, "OK")
		return
	}

	if payload.Event.Data.ID == "" {
		s.logger.Error("Charge event missing charge id", "username", username, "type", payload.Event.Type)
		c.String(http.StatusInternalServerError, "Internal error")
		return
	}

	if err := s.tipdrop.ReconcileDonation(payload.Event.Data.ID, recipient.ID, status); err != nil {
		if errors.Is(err, models.ErrDonationNotFound) {
			s.logger.Warn("Webhook for unknown donation", "username", username, "charge_id", payload.Event.Data.ID)
			c.String(http.StatusNotFound, "Donation not found")
			return
		}
		s.logger.Error("Failed to reconcile donation", "username", username, "charge_id", payload.Event.Data.ID, "error", err)
		c.String(http.StatusInternalServerError, "Error updating donation")
		return
	}

	c.String(http.StatusOK, "OK")
}
