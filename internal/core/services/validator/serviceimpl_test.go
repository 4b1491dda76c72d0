package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsPlainCode(t *testing.T) {
	v := NewCodeValidator(0)
	res := v.Validate("def add(a, b):\n    return a + b\nprint(add(1, 2))", "python")
	assert.True(t, res.Valid)
	assert.Empty(t, res.Error)
}

func TestValidateRejectsDeniedPatterns(t *testing.T) {
	v := NewCodeValidator(0)
	cases := map[string]string{
		"import os\nos.system('ls')":     "import os",
		"import   subprocess":            "import subprocess",
		"x = eval ('1+1')":               "eval(",
		"exec('print(1)')":               "exec(",
		"m = __import__('os')":           "__import__",
		"with open('/etc/passwd') as f:": "open(",
		"n = input()":                    "input(",
		"print(globals())":               "globals",
		"print(dir(x))":                  "dir",
		"System.exit(0);":                "exit",
	}
	for code, pattern := range cases {
		res := v.Validate(code, "python")
		assert.False(t, res.Valid, code)
		assert.Equal(t, "Dangerous operation detected: "+pattern, res.Error, code)
	}
}

func TestValidateReportsFirstPatternOnly(t *testing.T) {
	res := NewCodeValidator(0).Validate("eval(x)\nimport os", "python")
	assert.Equal(t, "Dangerous operation detected: import os", res.Error)
}

func TestValidateWordBoundaries(t *testing.T) {
	v := NewCodeValidator(0)
	for _, code := range []string{
		"direction = 1",
		"helper = 2",
		"exited_count = 0",
		"import osmosis",
		"user_input = 3",
	} {
		assert.True(t, v.Validate(code, "python").Valid, code)
	}
}

func TestValidateLengthBoundary(t *testing.T) {
	v := NewCodeValidator(0)

	assert.True(t, v.Validate(strings.Repeat("a", 10000), "python").Valid)

	res := v.Validate(strings.Repeat("a", 10001), "python")
	assert.False(t, res.Valid)
	assert.Equal(t, "Code too long (maximum 10000 characters)", res.Error)
}

func TestValidateCountsCharactersNotBytes(t *testing.T) {
	v := NewCodeValidator(3)
	assert.True(t, v.Validate("ééé", "python").Valid)
	assert.False(t, v.Validate("éééé", "python").Valid)
}

func TestValidateIsDeterministic(t *testing.T) {
	v := NewCodeValidator(0)
	for _, code := range []string{"print(1)", "import sys", strings.Repeat("b", 10001)} {
		assert.Equal(t, v.Validate(code, "python"), v.Validate(code, "python"))
	}
}
