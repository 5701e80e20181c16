package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ericfisherdev/oncoassist/internal/domain/model"
	"github.com/ericfisherdev/oncoassist/internal/domain/port/driven"
)

// Stored values carry a scheme prefix so a database written without a key
// stays readable after one is configured.
const (
	plainPrefix = "plain:"
	gcmPrefix   = "gcm:"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// The API key lives in one row of the settings table under
// model.CredentialName. Values are plaintext unless a key is supplied, in
// which case new writes are sealed with AES-256-GCM.
type CredentialRepo struct {
	db   *DB
	name string
	key  []byte // 32-byte AES-256 key; nil stores plaintext.
}

// NewCredentialRepo creates a CredentialRepo. key must be 32 bytes or nil.
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	return &CredentialRepo{db: db, name: model.CredentialName, key: key}
}

// Load returns the stored secret. Returns ("", false, nil) when none is stored.
func (r *CredentialRepo) Load(ctx context.Context) (string, bool, error) {
	cred, err := r.get(ctx)
	if err != nil || cred == nil {
		return "", false, err
	}
	return cred.Value, true, nil
}

// Save stores or replaces the secret. A whitespace-only secret clears it.
func (r *CredentialRepo) Save(ctx context.Context, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return r.Clear(ctx)
	}

	stored, err := r.seal(secret)
	if err != nil {
		return err
	}

	const query = `INSERT OR REPLACE INTO settings (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, r.name, stored); err != nil {
		return fmt.Errorf("save credential %q: %w", r.name, err)
	}
	return nil
}

// Clear removes the stored secret.
func (r *CredentialRepo) Clear(ctx context.Context) error {
	const query = `DELETE FROM settings WHERE name = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, r.name); err != nil {
		return fmt.Errorf("clear credential %q: %w", r.name, err)
	}
	return nil
}

// Get returns the stored credential with its update time, or nil when absent.
func (r *CredentialRepo) Get(ctx context.Context) (*model.Credential, error) {
	return r.get(ctx)
}

func (r *CredentialRepo) get(ctx context.Context) (*model.Credential, error) {
	const query = `SELECT value, updated_at FROM settings WHERE name = ?`

	var stored, updatedAt string
	err := r.db.Reader.QueryRowContext(ctx, query, r.name).Scan(&stored, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credential %q: %w", r.name, err)
	}

	value, err := r.open(stored)
	if err != nil {
		return nil, fmt.Errorf("open credential %q: %w", r.name, err)
	}

	cred := &model.Credential{Name: r.name, Value: value}
	cred.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for credential %q: %w", r.name, err)
	}
	return cred, nil
}

// seal encodes plaintext for storage: GCM-sealed when a key is configured,
// prefixed plaintext otherwise.
func (r *CredentialRepo) seal(plaintext string) (string, error) {
	if r.key == nil {
		return plainPrefix + plaintext, nil
	}

	gcm, err := newGCM(r.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return gcmPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// open reverses seal.
func (r *CredentialRepo) open(stored string) (string, error) {
	switch {
	case strings.HasPrefix(stored, plainPrefix):
		return strings.TrimPrefix(stored, plainPrefix), nil
	case strings.HasPrefix(stored, gcmPrefix):
		if r.key == nil {
			return "", driven.ErrEncryptionKeyNotSet
		}
	default:
		return "", fmt.Errorf("unknown storage scheme")
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, gcmPrefix))
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := newGCM(r.key)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
