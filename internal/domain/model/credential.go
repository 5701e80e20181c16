package model

import "time"

// CredentialName is the fixed settings key under which the Azure OpenAI API
// key is persisted.
const CredentialName = "OPENAI_API_KEY"

// Credential is a single stored secret. Value is kept exactly as the user
// typed it; callers trim it when it is sent upstream.
type Credential struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}
