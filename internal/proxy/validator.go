package proxy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/haytac/cogbot/pkg/interfaces"
	"github.com/rs/zerolog/log"
)

// DefaultValidationTarget answers 204 to any successful request.
const DefaultValidationTarget = "https://www.google.com/generate_204"

// DefaultProxyValidator implements interfaces.ProxyValidator.
type DefaultProxyValidator struct {
	clientFactory interfaces.HTTPClientFactory
}

// NewDefaultProxyValidator creates a new validator.
func NewDefaultProxyValidator(factory interfaces.HTTPClientFactory) *DefaultProxyValidator {
	return &DefaultProxyValidator{clientFactory: factory}
}

// Validate checks that the factory's client can reach targetURL.
func (v *DefaultProxyValidator) Validate(ctx context.Context, targetURL string) error {
	if targetURL == "" {
		targetURL = DefaultValidationTarget
	}

	client, err := v.clientFactory.GetClient()
	if err != nil {
		return fmt.Errorf("failed to get HTTP client: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, targetURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", targetURL, err)
	}
	req.Header.Set("User-Agent", "CogbotProxyValidator/1.0")

	log.Debug().Str("target_url", targetURL).Msg("Attempting to validate proxy")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connection test to %s failed: %w", targetURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Info().Int("status_code", resp.StatusCode).Msg("Proxy validation successful")
		return nil
	}

	return fmt.Errorf("connection test to %s returned status %d", targetURL, resp.StatusCode)
}
