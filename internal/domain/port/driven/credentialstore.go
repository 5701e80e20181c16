package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned when a stored credential was sealed with
// a key but the adapter was constructed without one.
var ErrEncryptionKeyNotSet = errors.New("credential is encrypted but no key is configured: set ONCOASSIST_SECRET_KEY")

// CredentialStore defines the driven port for the persisted API key. It holds
// exactly one secret under a fixed name.
type CredentialStore interface {
	// Load returns the stored secret and true, or ("", false, nil) when no
	// secret is stored.
	Load(ctx context.Context) (string, bool, error)

	// Save stores or replaces the secret. A secret that is empty after
	// trimming whitespace is treated as Clear.
	Save(ctx context.Context, secret string) error

	// Clear removes the stored secret. Clearing an absent secret is not an error.
	Clear(ctx context.Context) error
}
