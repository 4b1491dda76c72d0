package engine

import (
	"context"
	"time"

	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

// IExecutionEngine dispatches code to the handler registered for its language
type IExecutionEngine interface {
	// Register adds a handler under its language id and any aliases
	Register(handler secondary.LanguageHandler, aliases ...string)

	// Resolve maps a language tag or alias to the registered id, case-insensitively
	Resolve(language string) (string, bool)

	// Languages lists the registered ids in registration order
	Languages() []string

	// Run executes code on input. It fails with errs.ErrExecutionTimeout when the
	// handler does not answer within timeout, errs.ErrUnsupportedLanguage when no
	// handler is registered, and errs.ErrHandler for any handler failure.
	Run(ctx context.Context, code, input, language string, timeout time.Duration) (*domain.HandlerOutput, error)
}
