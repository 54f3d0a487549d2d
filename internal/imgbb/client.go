// Package imgbb uploads images to imgbb.com.
package imgbb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/haytac/cogbot/internal/metrics"
	"github.com/haytac/cogbot/pkg/interfaces"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the imgbb v1 API root.
const DefaultBaseURL = "https://api.imgbb.com/1"

// ErrAPI is returned when imgbb answers with anything but a successful upload.
var ErrAPI = errors.New("imgbb API error")

// UploadResult describes an uploaded image.
type UploadResult struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	DisplayURL string `json:"display_url"`
	DeleteURL  string `json:"delete_url"`
}

type uploadResponse struct {
	Data    *UploadResult `json:"data"`
	Success bool          `json:"success"`
	Status  int           `json:"status"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the imgbb API.
type Client struct {
	clientFactory interfaces.HTTPClientFactory
	baseURL       string
}

// NewClient creates a new Client. An empty baseURL selects DefaultBaseURL.
func NewClient(clientFactory interfaces.HTTPClientFactory, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{clientFactory: clientFactory, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload asks imgbb to fetch image (a URL or base64 data) and host it.
// name is optional.
func (c *Client) Upload(ctx context.Context, apiKey, image, name string) (*UploadResult, error) {
	httpClient, err := c.clientFactory.GetClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTTP client for imgbb: %w", err)
	}

	form := url.Values{}
	form.Set("key", apiKey)
	form.Set("image", image)
	if name != "" {
		form.Set("name", name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create imgbb request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Cogbot/1.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.HTTPAPICalls.WithLabelValues("imgbb", "error").Inc()
		return nil, fmt.Errorf("imgbb upload request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.HTTPAPICalls.WithLabelValues("imgbb", "error").Inc()
		return nil, fmt.Errorf("reading imgbb response: %w", err)
	}

	var parsed uploadResponse
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr != nil && resp.StatusCode == http.StatusOK {
		metrics.HTTPAPICalls.WithLabelValues("imgbb", "error").Inc()
		return nil, fmt.Errorf("%w: malformed response: %v", ErrAPI, jsonErr)
	}

	if resp.StatusCode != http.StatusOK || parsed.Data == nil || parsed.Data.URL == "" {
		metrics.HTTPAPICalls.WithLabelValues("imgbb", "error").Inc()
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		log.Warn().Int("status_code", resp.StatusCode).Str("error", msg).Msg("imgbb upload failed")
		return nil, fmt.Errorf("%w: status %d: %s", ErrAPI, resp.StatusCode, msg)
	}

	metrics.HTTPAPICalls.WithLabelValues("imgbb", "success").Inc()
	return parsed.Data, nil
}
