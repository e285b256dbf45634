package commerce

import (
	"bytes"
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

const requestTimeout = 30 * time.Second

// Coinbase creates hosted charges through the Coinbase Commerce API. Each
// call authenticates with the recipient's own API key; the service itself
// holds no credentials.
type Coinbase struct {
	logger *logger.Logger

	baseURL string
	// publicBaseURL is this service's external base URL, used to build the
	// redirect and webhook callback URLs embedded in each charge.
	publicBaseURL string

	client *http.Client
}

func NewCoinbase(baseURL, publicBaseURL string, logger *logger.Logger) models.ChargeService {
	return &Coinbase{
		logger:        logger,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		client:        &http.Client{Timeout: requestTimeout},
	}
}

// chargeRequest is the Commerce charges API request body.
type chargeRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	PricingType string     `json:"pricing_type"`
	LocalPrice  localPrice `json:"local_price"`
	RedirectURL string     `json:"redirect_url"`
	WebhookURL  string     `json:"webhook_url"`
}

type localPrice struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// chargeResponse is the subset of the Commerce charges API response we use.
type chargeResponse struct {
	Data struct {
		ID        string `json:"id"`
		HostedURL string `json:"hosted_url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Coinbase) CreateCharge(ctx context.Context, apiKey string, params models.ChargeParams) (*models.Charge, error) {
	reqBody := chargeRequest{
		Name:        params.Name,
		Description: params.Description,
		PricingType: "fixed_price",
		LocalPrice: localPrice{
			Amount:   params.Amount,
			Currency: params.Currency,
		},
		RedirectURL: c.publicBaseURL + "/success",
		WebhookURL:  c.publicBaseURL + "/webhooks/" + params.Username,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charge request: %s", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %s", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CC-Api-Key", apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call commerce API: %s", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read commerce API response: %s", err)
	}

	var chargeResp chargeResponse
	if err := json.Unmarshal(respBody, &chargeResp); err != nil {
		return nil, fmt.Errorf("failed to decode commerce API response: %s", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Commerce API rejected charge", "status", resp.StatusCode, "message", chargeResp.Error.Message)
		if chargeResp.Error.Message != "" {
			return nil, fmt.Errorf("failed to create charge: %s", chargeResp.Error.Message)
		}
		return nil, fmt.Errorf("failed to create charge: commerce API returned %d", resp.StatusCode)
	}

	if chargeResp.Data.ID == "" || chargeResp.Data.HostedURL == "" {
		return nil, fmt.Errorf("commerce API response missing charge id or hosted URL")
	}

	return &models.Charge{
		ID:        chargeResp.Data.ID,
		HostedURL: chargeResp.Data.HostedURL,
	}, nil
}
