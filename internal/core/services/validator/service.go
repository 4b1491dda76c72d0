package validator

import "gitlab.com/codeprep.net/internal/domain"

// ICodeValidator is a static pre-check run before any code is executed.
// It is a filter, not an isolation boundary.
type ICodeValidator interface {
	Validate(code string, language string) domain.ValidationResult
}
