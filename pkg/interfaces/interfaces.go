package interfaces

import (
	"context"
	"net/http"

	"github.com/haytac/cogbot/internal/database"
)

// HTTPClientFactory creates HTTP clients.
type HTTPClientFactory interface {
	GetClient() (*http.Client, error)
}

// ProxyValidator checks if the configured proxy is working.
type ProxyValidator interface {
	Validate(ctx context.Context, targetURL string) error
}

// TokenStore looks up third-party API keys. A missing key is "" with a nil error.
type TokenStore interface {
	Get(ctx context.Context, service, name string) (string, error)
	Set(ctx context.Context, service, name, rawToken string) error
}

// SettingsStore persists per-scope cog settings.
type SettingsStore interface {
	Get(ctx context.Context, scope database.Scope, scopeID, key string) (string, bool, error)
	Set(ctx context.Context, scope database.Scope, scopeID, key, value string) error
	GetBool(ctx context.Context, scope database.Scope, scopeID, key string, def bool) (bool, error)
	SetBool(ctx context.Context, scope database.Scope, scopeID, key string, value bool) error
	Clear(ctx context.Context, scope database.Scope, scopeID, key string) error
}
