package application

import (
	"context"
	"sync"

	"github.com/ericfisherdev/oncoassist/internal/domain/model"
)

// Task is one in-flight submission. Its result becomes readable once Done
// is closed.
type Task struct {
	ID string

	done   chan struct{}
	once   sync.Once
	answer model.Answer
	err    error
}

func newTask(id string) *Task {
	return &Task{ID: id, done: make(chan struct{})}
}

// Done is closed when the task has a result.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result returns the answer or error. It blocks until the task finishes.
func (t *Task) Result() (model.Answer, error) {
	<-t.done
	return t.answer, t.err
}

// Wait blocks until the task finishes or ctx is done, whichever comes first.
func (t *Task) Wait(ctx context.Context) (model.Answer, error) {
	select {
	case <-t.done:
		return t.answer, t.err
	case <-ctx.Done():
		return model.Answer{}, ctx.Err()
	}
}

func (t *Task) finish(answer model.Answer, err error) {
	t.once.Do(func() {
		t.answer = answer
		t.err = err
		close(t.done)
	})
}
