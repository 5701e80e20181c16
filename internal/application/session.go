package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/oncoassist/internal/domain/model"
	"github.com/ericfisherdev/oncoassist/internal/domain/port/driven"
)

// ErrSubmitInFlight is returned by Ask while an earlier submission is pending.
var ErrSubmitInFlight = errors.New("a question is already being answered")

// Session owns the page state for the single local user. Every change goes
// through model.Reduce under the session mutex, so readers always see a
// whole state. Credential edits are persisted through the CredentialStore.
type Session struct {
	mu     sync.Mutex
	state  model.AppState
	store  driven.CredentialStore
	asker  *AskService
	logger *slog.Logger
}

// NewSession creates a Session, seeding the credential from store.
func NewSession(ctx context.Context, store driven.CredentialStore, asker *AskService, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	secret, _, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored credential: %w", err)
	}

	return &Session{
		state:  model.Reduce(model.AppState{}, model.EditKey{Value: secret}),
		store:  store,
		asker:  asker,
		logger: logger,
	}, nil
}

// State returns a snapshot of the current state.
func (s *Session) State() model.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetKey replaces the credential and persists it. A blank value removes the
// stored credential.
func (s *Session) SetKey(ctx context.Context, value string) (model.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, value); err != nil {
		return s.state, fmt.Errorf("persist credential: %w", err)
	}
	s.state = model.Reduce(s.state, model.EditKey{Value: value})
	s.logger.Info("api key updated", "configured", s.state.HasCredential())
	return s.state, nil
}

// SetQuestion replaces the question field.
func (s *Session) SetQuestion(question string) model.AppState {
	return s.dispatch(model.EditQuestion{Value: question})
}

// Clear empties the question, answer and error.
func (s *Session) Clear() model.AppState {
	return s.dispatch(model.Clear{})
}

// Ask records question and, when the preconditions hold, submits it and
// waits for the result. Request failures are reported in the returned
// state's Error field, not as an error. The returned error is
// ErrPreconditionSkip or ErrSubmitInFlight when nothing was sent.
//
// The upstream request is detached from ctx's cancellation: once issued it
// runs until the transport succeeds or fails.
func (s *Session) Ask(ctx context.Context, question string) (model.AppState, error) {
	s.mu.Lock()
	if s.state.Loading {
		s.state = model.Reduce(s.state, model.EditQuestion{Value: question})
		st := s.state
		s.mu.Unlock()
		return st, ErrSubmitInFlight
	}

	s.state = model.Reduce(s.state, model.EditQuestion{Value: question})
	if !s.state.CanSubmit() {
		st := s.state
		s.mu.Unlock()
		return st, ErrPreconditionSkip
	}

	s.state = model.Reduce(s.state, model.Submit{})
	secret := s.state.Credential
	s.mu.Unlock()

	answer, err := s.asker.Submit(context.WithoutCancel(ctx), question, secret)

	if err != nil {
		return s.dispatch(model.SubmitFailed{Message: model.UserMessage(err)}), nil
	}
	return s.dispatch(model.SubmitSucceeded{Answer: answer}), nil
}

func (s *Session) dispatch(ev model.Event) model.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = model.Reduce(s.state, ev)
	return s.state
}
