package validator

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"gitlab.com/codeprep.net/internal/domain"
)

var _ ICodeValidator = (*CodeValidator)(nil)

const DefaultMaxCodeLength = 10000

type deniedPattern struct {
	name string
	re   *regexp.Regexp
}

func deny(name, expr string) deniedPattern {
	return deniedPattern{name: name, re: regexp.MustCompile(expr)}
}

// Checked in order; the first hit is reported.
var deniedPatterns = []deniedPattern{
	deny("import os", `\bimport\s+os\b`),
	deny("import subprocess", `\bimport\s+subprocess\b`),
	deny("import sys", `\bimport\s+sys\b`),
	deny("eval(", `\beval\s*\(`),
	deny("exec(", `\bexec\s*\(`),
	deny("__import__", `__import__`),
	deny("open(", `\bopen\s*\(`),
	deny("file(", `\bfile\s*\(`),
	deny("raw_input(", `\braw_input\s*\(`),
	deny("input(", `\binput\s*\(`),
	deny("execfile", `\bexecfile\b`),
	deny("compile", `\bcompile\b`),
	deny("reload", `\breload\b`),
	deny("vars", `\bvars\b`),
	deny("globals", `\bglobals\b`),
	deny("locals", `\blocals\b`),
	deny("dir", `\bdir\b`),
	deny("help", `\bhelp\b`),
	deny("quit", `\bquit\b`),
	deny("exit", `\bexit\b`),
}

type CodeValidator struct {
	maxLength int
}

// NewCodeValidator creates a validator; maxLength <= 0 uses DefaultMaxCodeLength
func NewCodeValidator(maxLength int) *CodeValidator {
	if maxLength <= 0 {
		maxLength = DefaultMaxCodeLength
	}
	return &CodeValidator{maxLength: maxLength}
}

func (v *CodeValidator) Validate(code string, _ string) domain.ValidationResult {
	for _, p := range deniedPatterns {
		if p.re.MatchString(code) {
			return domain.ValidationResult{
				Valid: false,
				Error: fmt.Sprintf("Dangerous operation detected: %s", p.name),
			}
		}
	}

	if utf8.RuneCountInString(code) > v.maxLength {
		return domain.ValidationResult{
			Valid: false,
			Error: fmt.Sprintf("Code too long (maximum %d characters)", v.maxLength),
		}
	}

	return domain.ValidationResult{Valid: true}
}
