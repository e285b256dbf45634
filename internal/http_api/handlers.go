package http_api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tipdrop/tipdrop/internal/models"
	"github.com/tipdrop/tipdrop/pkg/validation"
)

// authUserKey is the gin context key the auth middleware stores the
// authenticated user under.
const authUserKey = "authUser"

// TipRequest represents the JSON body for creating a donation from the tip page
type TipRequest struct {
	Username  string `json:"username" binding:"required"`
	DonorName string `json:"donor_name" binding:"required,max=100"`
	Message   string `json:"message" binding:"max=500"`
	Amount    string `json:"amount" binding:"required"`
	Currency  string `json:"currency" binding:"omitempty,len=3"`
}

// TipResponse represents the success response for a created donation
type TipResponse struct {
	Success   bool   `json:"success"`
	ChargeID  string `json:"charge_id"`
	HostedURL string `json:"hosted_url"`
}

// UsernameRequest represents the JSON body for setting a username
type UsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// CommerceKeyRequest represents the JSON body for setting the processor API key
type CommerceKeyRequest struct {
	CommerceKey string `json:"commerce_key" binding:"required"`
}

// NotificationsRequest represents the JSON body for notification targets
type NotificationsRequest struct {
	TelegramUsername string `json:"telegram_username"`
	NotifyEmail      string `json:"notify_email" binding:"omitempty,email"`
}

// healthz is a liveness probe.
func (s *HTTPServer) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requireAuth resolves the bearer token against the external auth provider
// and stores the resulting user on the request context.
func (s *HTTPServer) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	user, err := s.auth.GetUser(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		s.logger.Error("Auth provider lookup failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication unavailable"})
		return
	}

	c.Set(authUserKey, user)
	c.Next()
}

// authUser returns the user stored by requireAuth.
func authUser(c *gin.Context) *models.AuthUser {
	return c.MustGet(authUserKey).(*models.AuthUser)
}

// getPublicProfile is a handler for the public tip-page profile lookup.
func (s *HTTPServer) getPublicProfile(c *gin.Context) {
	username := validation.NormalizeUsername(c.Param("username"))
	if err := validation.ValidateUsername(username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid username: " + err.Error()})
		return
	}

	profile, err := s.tipdrop.PublicProfile(username)
	if err != nil {
		if errors.Is(err, models.ErrRecipientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		} else {
			s.logger.Error("Failed to get public profile", "username", username, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		}
		return
	}

	c.JSON(http.StatusOK, profile)
}

// createTip is a handler for the donor tip flow. It creates a hosted charge
// and records the pending donation.
func (s *HTTPServer) createTip(c *gin.Context) {
	var req TipRequest

	// Parse and validate JSON request body
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	if err := validation.ValidateAmount(req.Amount); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid amount: " + err.Error(),
		})
		return
	}

	donation, hostedURL, err := s.tipdrop.CreateTip(c.Request.Context(), &models.TipRequest{
		Username:  validation.NormalizeUsername(req.Username),
		DonorName: req.DonorName,
		Message:   req.Message,
		Amount:    req.Amount,
		Currency:  strings.ToUpper(req.Currency),
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRecipientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		case errors.Is(err, models.ErrDonationsDisabled):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "User has not set up donations"})
		default:
			s.logger.Error("Failed to create tip", "username", req.Username, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create donation"})
		}
		return
	}

	c.JSON(http.StatusCreated, TipResponse{
		Success:   true,
		ChargeID:  donation.ChargeID,
		HostedURL: hostedURL,
	})
}

// getProfile is a handler for the authenticated dashboard profile.
func (s *HTTPServer) getProfile(c *gin.Context) {
	profile, err := s.tipdrop.Profile(authUser(c))
	if err != nil {
		s.logger.Error("Failed to get profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// updateUsername is a handler for claiming or changing the public username.
func (s *HTTPServer) updateUsername(c *gin.Context) {
	var req UsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	user := authUser(c)
	if err := s.tipdrop.SetUsername(user.ID, req.Username); err != nil {
		if errors.Is(err, models.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username is already taken"})
			return
		}
		// Validation errors come back with a caller-safe message.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// updateCommerceKey is a handler for setting the payment-processor API key.
func (s *HTTPServer) updateCommerceKey(c *gin.Context) {
	var req CommerceKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	user := authUser(c)
	if err := s.tipdrop.SetCommerceKey(user.ID, req.CommerceKey); err != nil {
		s.logger.Error("Failed to update commerce key", "id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update commerce key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// updateNotifications is a handler for setting notification targets.
func (s *HTTPServer) updateNotifications(c *gin.Context) {
	var req NotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	user := authUser(c)
	if err := s.tipdrop.SetNotificationTargets(user.ID, req.TelegramUsername, req.NotifyEmail); err != nil {
		s.logger.Error("Failed to update notification targets", "id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notification targets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// rotateWebhookSecret is a handler for regenerating the webhook shared
// secret. The new secret is returned once; it is never readable afterwards.
func (s *HTTPServer) rotateWebhookSecret(c *gin.Context) {
	user := authUser(c)
	secret, err := s.tipdrop.RotateWebhookSecret(user.ID)
	if err != nil {
		s.logger.Error("Failed to rotate webhook secret", "id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate webhook secret"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "webhook_secret": secret})
}

// listDonations is a handler for the dashboard and stream donation history.
func (s *HTTPServer) listDonations(c *gin.Context) {
	user := authUser(c)
	donations, err := s.tipdrop.ListDonations(user.ID)
	if err != nil {
		s.logger.Error("Failed to list donations", "id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list donations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"donations": donations})
}
