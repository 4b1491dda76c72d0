package errs

import "errors"

var (
	ErrInvalidCode         = errors.New("invalid code")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrExecutionTimeout    = errors.New("Execution timeout")
	ErrHandler             = errors.New("handler error")
	ErrStore               = errors.New("store error")
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrRateLimited     = errors.New("too many requests")
)
