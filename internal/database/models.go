package database

import (
	"time"
)

// Scope groups settings the same way the bot does: bot-wide, per guild or per user.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeGuild  Scope = "guild"
	ScopeUser   Scope = "user"
)

// Setting is one persisted key/value pair.
type Setting struct {
	Scope     Scope     `db:"scope"`
	ScopeID   string    `db:"scope_id"` // empty for ScopeGlobal
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// APIToken is a third-party credential shared by the cogs (imgbb, osu).
type APIToken struct {
	Service        string    `db:"service"`
	Name           string    `db:"name"`
	TokenHash      string    `db:"token_hash"`      // sha256 of the raw value
	EncryptedValue *string   `db:"encrypted_value"` // AES-GCM, base64
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
