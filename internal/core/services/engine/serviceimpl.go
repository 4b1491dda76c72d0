package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ IExecutionEngine = (*Engine)(nil)

type Engine struct {
	mu       sync.RWMutex
	handlers map[string]secondary.LanguageHandler
	aliases  map[string]string
	order    []string
	logger   primary.Logger
}

func NewEngine(logger primary.Logger) *Engine {
	return &Engine{
		handlers: make(map[string]secondary.LanguageHandler),
		aliases:  make(map[string]string),
		logger:   logger,
	}
}

func canonical(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}

func (e *Engine) Register(handler secondary.LanguageHandler, aliases ...string) {
	id := canonical(handler.Language())

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.handlers[id]; !exists {
		e.order = append(e.order, id)
	}
	e.handlers[id] = handler
	e.aliases[id] = id
	for _, alias := range aliases {
		if a := canonical(alias); a != "" {
			e.aliases[a] = id
		}
	}
	e.logger.Debug("Registered language handler", "language", id, "aliases", aliases)
}

func (e *Engine) Resolve(language string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.aliases[canonical(language)]
	return id, ok
}

func (e *Engine) Languages() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

type outcome struct {
	output *domain.HandlerOutput
	err    error
}

func (e *Engine) Run(ctx context.Context, code, input, language string, timeout time.Duration) (*domain.HandlerOutput, error) {
	id, ok := e.Resolve(language)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedLanguage, language)
	}
	e.mu.RLock()
	handler := e.handlers[id]
	e.mu.RUnlock()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// buffered so an abandoned handler can still finish and exit
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: panic: %v", errs.ErrHandler, r)}
			}
		}()
		out, err := handler.Execute(runCtx, code, input)
		done <- outcome{output: out, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, e.classify(ctx, runCtx, res.err)
		}
		if res.output == nil {
			res.output = &domain.HandlerOutput{}
		}
		return res.output, nil
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Debug("Handler timed out", "language", id, "timeout", timeout)
		return nil, errs.ErrExecutionTimeout
	}
}

func (e *Engine) classify(parent, runCtx context.Context, err error) error {
	switch {
	case parent.Err() != nil:
		return parent.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded), errors.Is(err, errs.ErrExecutionTimeout):
		return errs.ErrExecutionTimeout
	case errors.Is(err, errs.ErrHandler):
		return err
	default:
		return fmt.Errorf("%w: %w", errs.ErrHandler, err)
	}
}
