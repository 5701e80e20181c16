// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/oncoassist/internal/domain/model"
	"github.com/ericfisherdev/oncoassist/internal/domain/port/driven"
)

// ErrPreconditionSkip is returned when the question or the key is blank.
// No request is made; callers show nothing.
var ErrPreconditionSkip = errors.New("question and api key are required")

// AskService sends one question upstream and turns the reply into an Answer.
type AskService struct {
	completer driven.ChatCompleter
	metrics   *Metrics
	logger    *slog.Logger
}

// NewAskService creates an AskService. metrics may be nil.
func NewAskService(completer driven.ChatCompleter, metrics *Metrics, logger *slog.Logger) *AskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AskService{
		completer: completer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Submit sends question and waits for the answer. It is Start followed by Wait.
func (s *AskService) Submit(ctx context.Context, question, secret string) (model.Answer, error) {
	task, err := s.Start(ctx, question, secret)
	if err != nil {
		return model.Answer{}, err
	}
	return task.Wait(ctx)
}

// Start validates the inputs and launches the request on its own goroutine.
// ctx is checked once, at the single network call; canceling it aborts the
// request. Returns ErrPreconditionSkip without launching anything when the
// trimmed question or secret is empty.
func (s *AskService) Start(ctx context.Context, question, secret string) (*Task, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(secret) == "" {
		s.metrics.skipped()
		return nil, ErrPreconditionSkip
	}

	task := newTask(uuid.NewString())
	s.metrics.started()

	go func() {
		start := time.Now()
		answer, err := s.run(ctx, task.ID, question, secret)
		s.metrics.finished(err, time.Since(start))
		task.finish(answer, err)
	}()

	return task, nil
}

func (s *AskService) run(ctx context.Context, taskID, question, secret string) (model.Answer, error) {
	logger := s.logger.With("task_id", taskID)
	logger.Info("question submitted", "question_chars", len(question))

	raw, err := s.completer.Complete(ctx, question, secret)
	if err != nil {
		logger.Error("chat completion failed", "error", err)
		return model.Answer{}, fmt.Errorf("complete question: %w", err)
	}

	answer, err := model.ExtractAnswer(raw)
	if err != nil {
		logger.Error("chat completion response unusable", "error", err)
		return model.Answer{}, fmt.Errorf("extract answer: %w", err)
	}

	logger.Info("answer received",
		"answer_chars", len(answer.Text),
		"citations", len(answer.Citations),
	)
	return answer, nil
}
