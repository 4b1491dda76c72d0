package secondary

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

// LanguageHandler runs source code of one language against one input.
// Implementations must not share state between calls and must stop work
// when ctx is cancelled.
type LanguageHandler interface {
	Language() string
	Execute(ctx context.Context, code, input string) (*domain.HandlerOutput, error)
}
