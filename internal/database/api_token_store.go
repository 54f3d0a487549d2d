package database

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// insecureDefaultKey is used when no encryption_key is configured so that
// the bot stays usable. Values stored with it are only obfuscated.
const insecureDefaultKey = "cogbot insecure default key 0001"

// ErrInsecureKey is returned by DeriveKey when no key was configured.
var ErrInsecureKey = errors.New("encryption key not configured; using insecure default")

// DeriveKey turns the configured passphrase into a 32 byte AES-256 key.
// An empty passphrase yields the insecure default key and ErrInsecureKey.
func DeriveKey(passphrase string) ([]byte, error) {
	if passphrase == "" {
		return []byte(insecureDefaultKey), ErrInsecureKey
	}
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:], nil
}

func encryptAES(key []byte, plaintext string) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("encrypt NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("encrypt NewGCM: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("encrypt ReadFull nonce: %w", err)
	}
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decryptAES(key []byte, cryptoText string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(cryptoText)
	if err != nil {
		return "", fmt.Errorf("decrypt DecodeString: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("decrypt NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("decrypt NewGCM: %w", err)
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("decrypt: ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt GCM Open: %w", err)
	}
	return string(plaintext), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// APITokenStore keeps third-party API keys encrypted at rest.
type APITokenStore struct {
	db  *DB
	key []byte
}

// NewAPITokenStore creates a new APITokenStore using a key from DeriveKey.
func NewAPITokenStore(db *DB, key []byte) *APITokenStore {
	return &APITokenStore{db: db, key: key}
}

// Set stores or replaces the token for service/name.
func (s *APITokenStore) Set(ctx context.Context, service, name, rawToken string) error {
	encrypted, err := encryptAES(s.key, rawToken)
	if err != nil {
		return fmt.Errorf("Set token encryption failed: %w", err)
	}

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO api_tokens (service, name, token_hash, encrypted_value) VALUES (?, ?, ?, ?)
		ON CONFLICT(service, name) DO UPDATE SET
			token_hash = excluded.token_hash,
			encrypted_value = excluded.encrypted_value,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("Set token prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, service, name, hashToken(rawToken), encrypted); err != nil {
		return fmt.Errorf("Set token exec: %w", err)
	}
	return nil
}

// Get returns the decrypted token, or "" when none is stored.
func (s *APITokenStore) Get(ctx context.Context, service, name string) (string, error) {
	var encrypted sql.NullString
	query := `SELECT encrypted_value FROM api_tokens WHERE service = ? AND name = ?`
	err := s.db.QueryRowContext(ctx, query, service, name).Scan(&encrypted)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("Get token %s/%s: %w", service, name, err)
	}
	if !encrypted.Valid || encrypted.String == "" {
		return "", nil
	}

	token, err := decryptAES(s.key, encrypted.String)
	if err != nil {
		log.Error().Err(err).Str("service", service).Msg("Failed to decrypt API token. Was the encryption key changed?")
		return "", fmt.Errorf("Get token %s/%s decryption failed: %w", service, name, err)
	}
	return token, nil
}

// Remove deletes the token for service/name.
func (s *APITokenStore) Remove(ctx context.Context, service, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM api_tokens WHERE service = ? AND name = ?`, service, name)
	if err != nil {
		return false, fmt.Errorf("Remove token %s/%s: %w", service, name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Remove token rows affected: %w", err)
	}
	return n > 0, nil
}

// List returns token metadata without decrypting values.
func (s *APITokenStore) List(ctx context.Context) ([]*APIToken, error) {
	query := `SELECT service, name, token_hash, encrypted_value, created_at, updated_at FROM api_tokens ORDER BY service, name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List tokens query: %w", err)
	}
	defer rows.Close()

	var tokens []*APIToken
	for rows.Next() {
		t := &APIToken{}
		var encrypted sql.NullString
		if err := rows.Scan(&t.Service, &t.Name, &t.TokenHash, &encrypted, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("List tokens scan: %w", err)
		}
		if encrypted.Valid {
			t.EncryptedValue = &encrypted.String
		}
		tokens = append(tokens, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("List tokens rows error: %w", err)
	}
	return tokens, nil
}
