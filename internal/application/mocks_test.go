package application_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ericfisherdev/oncoassist/internal/domain/model"
)

// --- Mock implementations ---

type mockCompleter struct {
	raw   *model.RawResponse
	err   error
	calls atomic.Int32

	// release, when non-nil, holds Complete until it is closed.
	release chan struct{}

	mu           sync.Mutex
	lastQuestion string
	lastSecret   string
}

func (m *mockCompleter) Complete(ctx context.Context, question, secret string) (*model.RawResponse, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastQuestion = question
	m.lastSecret = secret
	m.mu.Unlock()

	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.raw, m.err
}

type mockCredentialStore struct {
	mu      sync.Mutex
	value   string
	present bool
	saveErr error
}

func (m *mockCredentialStore) Load(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.present, nil
}

func (m *mockCredentialStore) Save(ctx context.Context, secret string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if strings.TrimSpace(secret) == "" {
		return m.Clear(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.present = secret, true
	return nil
}

func (m *mockCredentialStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.present = "", false
	return nil
}

// apiError mimics an adapter error that carries a provider message.
type apiError struct{ msg string }

func (e *apiError) Error() string       { return "upstream: " + e.msg }
func (e *apiError) UserMessage() string { return e.msg }

func rawWithCitations(text string, citations ...model.Citation) *model.RawResponse {
	return &model.RawResponse{Choices: []model.RawChoice{{
		Message: &model.RawMessage{
			Content: text,
			Context: &model.RawContext{Citations: citations},
		},
	}}}
}
