package executor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// commandVars are the placeholders a catalog command template may use.
type commandVars struct {
	Src string
	Bin string
	Dir string
}

// expandCommand splits tmpl like a shell would and substitutes placeholders
// per argument, so paths never get re-split.
func expandCommand(tmpl string, vars commandVars) ([]string, error) {
	args, err := shlex.Split(tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command %q: %w", tmpl, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command template")
	}
	r := strings.NewReplacer("{src}", vars.Src, "{bin}", vars.Bin, "{dir}", vars.Dir)
	for i, a := range args {
		args[i] = r.Replace(a)
	}
	return args, nil
}

// shellQuote renders argv for sh -c.
func shellQuote(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}

// limitedBuffer keeps at most limit bytes and remembers if more were written.
type limitedBuffer struct {
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func newLimitedBuffer(limit int) *limitedBuffer {
	return &limitedBuffer{limit: limit}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.limit <= 0 {
		return b.buf.Write(p)
	}
	room := b.limit - b.buf.Len()
	if room <= 0 {
		b.overflow = b.overflow || len(p) > 0
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.overflow = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}

func (b *limitedBuffer) Overflowed() bool {
	return b.overflow
}
