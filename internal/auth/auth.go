package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tipdrop/tipdrop/internal/models"
	"github.com/tipdrop/tipdrop/pkg/logger"
)

const requestTimeout = 10 * time.Second

// Client resolves access tokens against the external auth provider's user
// endpoint. Sessions, sign-in and sign-up all live on the provider; this is
// the only call the service makes against it.
type Client struct {
	logger *logger.Logger

	baseURL string
	anonKey string

	client *http.Client
}

func NewClient(baseURL, anonKey string, logger *logger.Logger) models.AuthService {
	return &Client{
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		anonKey: anonKey,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*models.AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %s", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call auth provider: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, models.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth provider returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth provider response: %s", err)
	}

	var user models.AuthUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode auth provider response: %s", err)
	}

	if user.ID == "" {
		return nil, models.ErrUnauthorized
	}

	return &user, nil
}
