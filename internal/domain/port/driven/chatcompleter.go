package driven

import (
	"context"

	"github.com/ericfisherdev/oncoassist/internal/domain/model"
)

// ChatCompleter defines the driven port for the retrieval-augmented chat
// completion endpoint. One call issues exactly one upstream request.
type ChatCompleter interface {
	// Complete sends question with the fixed system prompt and data source,
	// authenticated by secret. It does not retry.
	Complete(ctx context.Context, question, secret string) (*model.RawResponse, error)
}
