package model

import "strings"

// Phase is the coarse position of the page in its submit cycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// AppState is the full state of the question page. Every transition replaces
// the whole value; nothing is mutated in place.
type AppState struct {
	Credential string
	Question   string
	Answer     Answer
	Error      string
	Loading    bool
	Phase      Phase
}

// Event is a user or network action that moves AppState forward.
type Event interface {
	apply(AppState) AppState
}

// EditKey replaces the credential field.
type EditKey struct{ Value string }

// EditQuestion replaces the question field.
type EditQuestion struct{ Value string }

// Submit asks for the current question to be sent.
type Submit struct{}

// SubmitSucceeded delivers the answer for the in-flight submission. The
// question stays in place so it can be refined and resent.
type SubmitSucceeded struct{ Answer Answer }

// SubmitFailed delivers the banner text for the in-flight submission.
type SubmitFailed struct{ Message string }

// Clear empties the question, answer and error. The credential is kept.
type Clear struct{}

// Reduce returns the state that results from applying ev to s.
func Reduce(s AppState, ev Event) AppState {
	if ev == nil {
		return s
	}
	next := ev.apply(s)
	if next.Phase == "" {
		next.Phase = PhaseIdle
	}
	return next
}

// CanSubmit reports whether a Submit event would start a request.
func (s AppState) CanSubmit() bool {
	return !s.Loading &&
		strings.TrimSpace(s.Question) != "" &&
		strings.TrimSpace(s.Credential) != ""
}

// HasCredential reports whether a usable key is present.
func (s AppState) HasCredential() bool {
	return strings.TrimSpace(s.Credential) != ""
}

func (e EditKey) apply(s AppState) AppState {
	s.Credential = e.Value
	return s.settle()
}

func (e EditQuestion) apply(s AppState) AppState {
	s.Question = e.Value
	return s.settle()
}

func (Submit) apply(s AppState) AppState {
	if !s.CanSubmit() {
		return s
	}
	s.Loading = true
	s.Phase = PhaseSubmitting
	s.Answer = Answer{}
	s.Error = ""
	return s
}

func (e SubmitSucceeded) apply(s AppState) AppState {
	if !s.Loading {
		return s
	}
	s.Loading = false
	s.Phase = PhaseSucceeded
	s.Answer = e.Answer
	s.Error = ""
	return s
}

func (e SubmitFailed) apply(s AppState) AppState {
	if !s.Loading {
		return s
	}
	s.Loading = false
	s.Phase = PhaseFailed
	s.Answer = Answer{}
	s.Error = e.Message
	if s.Error == "" {
		s.Error = FallbackErrorMessage
	}
	return s
}

func (Clear) apply(s AppState) AppState {
	if s.Loading {
		return s
	}
	s.Question = ""
	s.Answer = Answer{}
	s.Error = ""
	s.Phase = PhaseIdle
	return s
}

// settle drops a terminal phase back to idle on the next edit. The error
// banner is dismissed by the next action; a pending request is untouched.
func (s AppState) settle() AppState {
	if s.Loading {
		return s
	}
	s.Error = ""
	s.Phase = PhaseIdle
	return s
}
