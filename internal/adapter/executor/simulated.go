package executor

import (
	"context"
	"regexp"
	"strings"

	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

// cannedAnswer fires when the test input contains every fragment in when.
type cannedAnswer struct {
	when   []string
	output string
}

var arithmeticAnswers = []cannedAnswer{
	{when: []string{"1 + 2"}, output: "3"},
	{when: []string{"10 / 2"}, output: "5"},
	{when: []string{"2 * (3 + 4)"}, output: "14"},
}

var pythonAnswers = append([]cannedAnswer{
	{when: []string{"db.insert('key1', 'value1')", "db.retrieve('key1')"}, output: "value1"},
	{when: []string{"db.insert('key2', 'value2')", "db.remove('key2')", "db.retrieve('key2')"}, output: "null"},
	{when: []string{"db.retrieve('nonexistent')"}, output: "null"},
	{when: []string{"compress([1, 1, 2, 2, 2])"}, output: "[(1, 2), (2, 3)]"},
	{when: []string{"compress([])"}, output: "[]"},
	{when: []string{"decompress([(5, 3)])"}, output: "[5, 5, 5]"},
}, arithmeticAnswers...)

var javascriptAnswers = append([]cannedAnswer{
	{when: []string{"compress([1, 1, 2, 2, 2])"}, output: "[[1, 2], [2, 3]]"},
	{when: []string{"compress([])"}, output: "[]"},
	{when: []string{"decompress([[5, 3]])"}, output: "[5, 5, 5]"},
}, arithmeticAnswers...)

var (
	printLiteral      = regexp.MustCompile("print\\(['\"`]([^'\"`]*)['\"`]\\)")
	consoleLogLiteral = regexp.MustCompile("console\\.log\\(['\"`]([^'\"`]*)['\"`]\\)")
)

// literalEcho extracts string literals passed to an output call.
type literalEcho struct {
	marker   string
	pattern  *regexp.Regexp
	notFound string
}

var _ secondary.LanguageHandler = (*SimulatedHandler)(nil)

// SimulatedHandler answers from a fixed script instead of running the code.
// It is deterministic and keeps no state between calls.
type SimulatedHandler struct {
	language string
	answers  []cannedAnswer
	echo     *literalEcho
	fallback string
}

func (h *SimulatedHandler) Language() string {
	return h.language
}

func (h *SimulatedHandler) Execute(ctx context.Context, code, input string) (*domain.HandlerOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, a := range h.answers {
		if containsAll(input, a.when) {
			return &domain.HandlerOutput{Stdout: a.output}, nil
		}
	}

	if h.echo != nil && strings.Contains(code, h.echo.marker) {
		return &domain.HandlerOutput{Stdout: h.echo.extract(code)}, nil
	}

	return &domain.HandlerOutput{Stdout: h.fallback}, nil
}

func (e *literalEcho) extract(code string) string {
	matches := e.pattern.FindAllStringSubmatch(code, -1)
	if len(matches) == 0 {
		return e.notFound
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		if m[1] != "" {
			lines = append(lines, m[1])
		}
	}
	return strings.Join(lines, "\n")
}

func containsAll(s string, fragments []string) bool {
	for _, f := range fragments {
		if !strings.Contains(s, f) {
			return false
		}
	}
	return true
}

// NewSimulatedHandlers returns the scripted handlers for python, javascript, java and cpp.
func NewSimulatedHandlers() []secondary.LanguageHandler {
	return []secondary.LanguageHandler{
		&SimulatedHandler{
			language: "python",
			answers:  pythonAnswers,
			echo:     &literalEcho{marker: "print(", pattern: printLiteral, notFound: "No print output found"},
			fallback: "Simulated Python output",
		},
		&SimulatedHandler{
			language: "javascript",
			answers:  javascriptAnswers,
			echo:     &literalEcho{marker: "console.log(", pattern: consoleLogLiteral, notFound: "No console.log output found"},
			fallback: "Simulated JavaScript output",
		},
		&SimulatedHandler{
			language: "java",
			answers:  arithmeticAnswers,
			fallback: "Simulated Java output",
		},
		&SimulatedHandler{
			language: "cpp",
			answers:  arithmeticAnswers,
			fallback: "Simulated C++ output",
		},
	}
}
