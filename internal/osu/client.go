// Package osu is a client for the osu! v1 API.
package osu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/haytac/cogbot/internal/metrics"
	"github.com/haytac/cogbot/pkg/interfaces"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL   = "https://osu.ppy.sh/api"
	DefaultAvatarURL = "https://a.ppy.sh"

	defaultCacheSize = 256
	defaultCacheTTL  = 2 * time.Minute

	maxRetries        = 3
	initialRetryDelay = 1 * time.Second
	maxRetryDelay     = 10 * time.Second
)

// ErrUserNotFound is returned when the API knows no such player.
var ErrUserNotFound = errors.New("osu! user not found")

// Mode is an osu! game mode.
type Mode int

const (
	Standard Mode = iota
	Taiko
	Catch
	Mania
)

func (m Mode) String() string {
	switch m {
	case Taiko:
		return "osu!taiko"
	case Catch:
		return "osu!catch"
	case Mania:
		return "osu!mania"
	default:
		return "osu!standard"
	}
}

// Event is an entry of a user's recent activity.
type Event struct {
	DisplayHTML  string `json:"display_html"`
	BeatmapID    string `json:"beatmap_id"`
	BeatmapsetID string `json:"beatmapset_id"`
	Date         string `json:"date"`
	EpicFactor   string `json:"epicfactor"`
}

// User is the get_user payload. The API sends every number as a string and
// null for players without plays in a mode.
type User struct {
	UserID             string  `json:"user_id"`
	Username           string  `json:"username"`
	JoinDate           string  `json:"join_date"`
	Count300           string  `json:"count300"`
	Count100           string  `json:"count100"`
	Count50            string  `json:"count50"`
	PlayCount          string  `json:"playcount"`
	RankedScore        string  `json:"ranked_score"`
	TotalScore         string  `json:"total_score"`
	PPRank             string  `json:"pp_rank"`
	Level              string  `json:"level"`
	PPRaw              string  `json:"pp_raw"`
	Accuracy           string  `json:"accuracy"`
	CountRankSS        string  `json:"count_rank_ss"`
	CountRankSSH       string  `json:"count_rank_ssh"`
	CountRankS         string  `json:"count_rank_s"`
	CountRankSH        string  `json:"count_rank_sh"`
	CountRankA         string  `json:"count_rank_a"`
	Country            string  `json:"country"`
	TotalSecondsPlayed string  `json:"total_seconds_played"`
	PPCountryRank      string  `json:"pp_country_rank"`
	Events             []Event `json:"events"`
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	AvatarURL string
	CacheSize int
	CacheTTL  time.Duration
}

// Client calls the osu! API through a short-lived lookup cache.
type Client struct {
	clientFactory interfaces.HTTPClientFactory
	baseURL       string
	avatarURL     string
	cache         *expirable.LRU[string, *User]
	retryDelay    time.Duration
}

// NewClient creates a new Client.
func NewClient(clientFactory interfaces.HTTPClientFactory, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AvatarURL == "" {
		cfg.AvatarURL = DefaultAvatarURL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	return &Client{
		clientFactory: clientFactory,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		avatarURL:     strings.TrimRight(cfg.AvatarURL, "/"),
		cache:         expirable.NewLRU[string, *User](cfg.CacheSize, nil, cfg.CacheTTL),
		retryDelay:    initialRetryDelay,
	}
}

func cacheKey(username string, mode Mode) string {
	return fmt.Sprintf("%d/%s", mode, strings.ToLower(username))
}

// GetUser looks up username in mode.
func (c *Client) GetUser(ctx context.Context, apiKey, username string, mode Mode) (*User, error) {
	key := cacheKey(username, mode)
	if u, ok := c.cache.Get(key); ok {
		metrics.HTTPAPICalls.WithLabelValues("osu", "cache_hit").Inc()
		return u, nil
	}

	q := url.Values{}
	q.Set("k", apiKey)
	q.Set("u", username)
	q.Set("m", fmt.Sprint(int(mode)))
	q.Set("type", "string")
	q.Set("event_days", "31")

	body, err := c.get(ctx, c.baseURL+"/get_user?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var users []*User
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("decoding get_user response: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	c.cache.Add(key, users[0])
	return users[0], nil
}

// Avatar downloads the avatar image of userID.
func (c *Client) Avatar(ctx context.Context, userID string) ([]byte, string, error) {
	body, contentType, err := c.do(ctx, c.avatarURL+"/"+url.PathEscape(userID))
	if err != nil {
		return nil, "", err
	}
	return body, contentType, nil
}

// AvatarURL returns the public URL of userID's avatar.
func (c *Client) AvatarURL(userID string) string {
	return c.avatarURL + "/" + url.PathEscape(userID)
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, err := c.do(ctx, rawURL)
	return body, err
}

// do performs a GET with retries on transport errors and 5xx answers.
func (c *Client) do(ctx context.Context, rawURL string) ([]byte, string, error) {
	var lastErr error
	currentDelay := c.retryDelay
	// The API key travels in the query string and must not be logged.
	logURL := rawURL
	if i := strings.IndexByte(logURL, '?'); i >= 0 {
		logURL = logURL[:i]
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().Str("url", logURL).Int("attempt", attempt).Dur("delay", currentDelay).Msg("Retrying osu! request after error")
			select {
			case <-time.After(currentDelay):
				currentDelay *= 2
				if currentDelay > maxRetryDelay {
					currentDelay = maxRetryDelay
				}
			case <-ctx.Done():
				return nil, "", fmt.Errorf("osu! request cancelled during retry backoff: %w", ctx.Err())
			}
		}

		httpClient, err := c.clientFactory.GetClient()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get HTTP client for osu!: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create osu! request: %w", err)
		}
		req.Header.Set("User-Agent", "Cogbot/1.0")

		resp, err := httpClient.Do(req)
		if err != nil {
			metrics.HTTPAPICalls.WithLabelValues("osu", "error").Inc()
			lastErr = fmt.Errorf("attempt %d: osu! request to %s failed: %w", attempt, logURL, err)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, "", lastErr
			}
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			metrics.HTTPAPICalls.WithLabelValues("osu", "error").Inc()
			snippet := body
			if len(snippet) > 256 {
				snippet = snippet[:256]
			}
			lastErr = fmt.Errorf("attempt %d: osu! request to %s: status %d, body: %s", attempt, logURL, resp.StatusCode, snippet)
			if resp.StatusCode == http.StatusNotFound {
				return nil, "", ErrUserNotFound
			}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, "", lastErr
			}
			continue
		}
		if readErr != nil {
			lastErr = fmt.Errorf("attempt %d: reading osu! response: %w", attempt, readErr)
			continue
		}

		metrics.HTTPAPICalls.WithLabelValues("osu", "success").Inc()
		return body, resp.Header.Get("Content-Type"), nil
	}
	return nil, "", fmt.Errorf("all %d osu! request attempts failed: %w", maxRetries+1, lastErr)
}
