package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/oncoassist/internal/application"
	"github.com/ericfisherdev/oncoassist/internal/domain/model"
)

func TestAskService_PreconditionSkip(t *testing.T) {
	tests := []struct {
		name     string
		question string
		secret   string
	}{
		{name: "empty question", question: "", secret: "key123"},
		{name: "empty secret", question: "valid question", secret: ""},
		{name: "whitespace question", question: " \t", secret: "key123"},
		{name: "whitespace secret", question: "valid question", secret: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &mockCompleter{}
			svc := application.NewAskService(completer, nil, nil)

			_, err := svc.Submit(context.Background(), tt.question, tt.secret)

			require.ErrorIs(t, err, application.ErrPreconditionSkip)
			assert.Equal(t, int32(0), completer.calls.Load(), "no network call expected")
		})
	}
}

func TestAskService_SubmitExtractsAnswer(t *testing.T) {
	completer := &mockCompleter{raw: rawWithCitations("Answer text",
		model.Citation{Title: "T", URL: "U", Content: "C\naHR0xyz"},
	)}
	svc := application.NewAskService(completer, nil, nil)

	answer, err := svc.Submit(context.Background(), "What are early signs?", "key123")

	require.NoError(t, err)
	assert.Equal(t, "Answer text", answer.Text)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, model.Citation{Title: "T", URL: "U", Content: "C"}, answer.Citations[0])
	assert.Equal(t, "What are early signs?", completer.lastQuestion)
	assert.Equal(t, int32(1), completer.calls.Load())
}

func TestAskService_SubmitPropagatesCompleterError(t *testing.T) {
	completer := &mockCompleter{err: &apiError{msg: "Invalid key"}}
	svc := application.NewAskService(completer, nil, nil)

	_, err := svc.Submit(context.Background(), "q", "bad")

	require.Error(t, err)
	assert.Equal(t, "Invalid key", model.UserMessage(err))
}

func TestAskService_SubmitMalformedResponse(t *testing.T) {
	completer := &mockCompleter{raw: &model.RawResponse{}}
	svc := application.NewAskService(completer, nil, nil)

	_, err := svc.Submit(context.Background(), "q", "key")

	require.ErrorIs(t, err, model.ErrMissingChoices)
	assert.Equal(t, model.FallbackErrorMessage, model.UserMessage(err))
}

func TestAskService_StartRunsAsynchronously(t *testing.T) {
	completer := &mockCompleter{
		raw:     rawWithCitations("A"),
		release: make(chan struct{}),
	}
	svc := application.NewAskService(completer, nil, nil)

	task, err := svc.Start(context.Background(), "q", "key")
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)

	select {
	case <-task.Done():
		t.Fatal("task finished before upstream replied")
	case <-time.After(20 * time.Millisecond):
	}

	close(completer.release)

	answer, err := task.Result()
	require.NoError(t, err)
	assert.Equal(t, "A", answer.Text)
}

func TestAskService_CancelAbortsRequest(t *testing.T) {
	completer := &mockCompleter{release: make(chan struct{})}
	svc := application.NewAskService(completer, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	task, err := svc.Start(ctx, "q", "key")
	require.NoError(t, err)

	cancel()

	_, err = task.Result()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTask_WaitHonoursContext(t *testing.T) {
	completer := &mockCompleter{release: make(chan struct{})}
	t.Cleanup(func() { close(completer.release) })
	svc := application.NewAskService(completer, nil, nil)

	task, err := svc.Start(context.Background(), "q", "key")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAskService_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := application.NewMetrics(reg)
	require.NoError(t, err)

	ok := application.NewAskService(&mockCompleter{raw: rawWithCitations("A")}, metrics, nil)
	failing := application.NewAskService(&mockCompleter{err: &apiError{msg: "nope"}}, metrics, nil)
	broken := application.NewAskService(&mockCompleter{err: errors.New("dial tcp: refused")}, metrics, nil)
	malformed := application.NewAskService(&mockCompleter{err: fmt.Errorf("%w: eof", model.ErrMalformedResponse)}, metrics, nil)

	_, _ = ok.Submit(context.Background(), "q", "k")
	_, _ = ok.Submit(context.Background(), "", "k")
	_, _ = failing.Submit(context.Background(), "q", "k")
	_, _ = broken.Submit(context.Background(), "q", "k")
	_, _ = malformed.Submit(context.Background(), "q", "k")

	assert.Equal(t, 5, testutil.CollectAndCount(metrics.Submissions()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Submissions().WithLabelValues(application.OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Submissions().WithLabelValues(application.OutcomeSkipped)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Submissions().WithLabelValues(application.OutcomeAPIError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Submissions().WithLabelValues(application.OutcomeTransport)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Submissions().WithLabelValues(application.OutcomeMalformed)), 0)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := application.NewMetrics(reg)
	require.NoError(t, err)

	_, err = application.NewMetrics(reg)
	assert.Error(t, err)
}
