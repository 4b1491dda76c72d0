package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

const (
	detailLimit = 4096
	waitDelay   = 200 * time.Millisecond
)

var _ secondary.LanguageHandler = (*ProcessHandler)(nil)

type ProcessOptions struct {
	// WorkDir is the parent for per-call temp dirs; empty uses os.TempDir
	WorkDir          string
	OutputLimitBytes int
	MemoryLimitMB    int
	// CgroupRoot is a delegated cgroup v2 directory. When set every run gets
	// its own child cgroup with memory.max and pids.max applied.
	CgroupRoot string
	PidsLimit  int
}

// ProcessHandler compiles and runs code as a local child process, one private
// directory per call. The process group (and run cgroup, if any) is killed
// when ctx ends.
type ProcessHandler struct {
	lang   domain.LanguageConfig
	opts   ProcessOptions
	logger primary.Logger
}

func NewProcessHandler(lang domain.LanguageConfig, opts ProcessOptions, logger primary.Logger) *ProcessHandler {
	if lang.MemoryLimitMB > 0 {
		opts.MemoryLimitMB = lang.MemoryLimitMB
	}
	return &ProcessHandler{lang: lang, opts: opts, logger: logger}
}

func (h *ProcessHandler) Language() string {
	return h.lang.ID
}

func (h *ProcessHandler) Execute(ctx context.Context, code, input string) (*domain.HandlerOutput, error) {
	dir, err := os.MkdirTemp(h.opts.WorkDir, h.lang.ID+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	vars := commandVars{
		Src: filepath.Join(dir, h.lang.SourceFile),
		Bin: filepath.Join(dir, "main"),
		Dir: dir,
	}
	if err := os.WriteFile(vars.Src, []byte(code), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write source: %w", err)
	}

	if h.lang.NeedsCompile() {
		out, err := h.compile(ctx, vars)
		if err != nil || out != nil {
			return out, err
		}
	}

	return h.run(ctx, vars, input)
}

func (h *ProcessHandler) compile(ctx context.Context, vars commandVars) (*domain.HandlerOutput, error) {
	argv, err := expandCommand(h.lang.CompileCommand, vars)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = vars.Dir
	cmd.WaitDelay = waitDelay
	isolateGroup(cmd)
	combined := newLimitedBuffer(detailLimit)
	cmd.Stdout = combined
	cmd.Stderr = combined

	err = cmd.Run()
	_ = killGroup(cmd)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &domain.HandlerOutput{
				Verdict: domain.StatusCompileError,
				Detail:  strings.TrimSpace(combined.String()),
			}, nil
		}
		return nil, fmt.Errorf("failed to start compiler: %w", err)
	}
	return nil, nil
}

func (h *ProcessHandler) run(ctx context.Context, vars commandVars, input string) (*domain.HandlerOutput, error) {
	argv, err := expandCommand(h.lang.RunCommand, vars)
	if err != nil {
		return nil, err
	}

	cg, err := newRunCgroup(h.opts.CgroupRoot, h.lang.ID, h.opts.MemoryLimitMB, h.opts.PidsLimit)
	if err != nil {
		return nil, err
	}
	defer cg.remove()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = vars.Dir
	cmd.WaitDelay = waitDelay
	isolateGroup(cmd)
	if cg != nil {
		cg.attach(cmd)
		killPgrp := cmd.Cancel
		cmd.Cancel = func() error {
			cg.kill()
			return killPgrp()
		}
	}
	cmd.Stdin = strings.NewReader(input)
	stdout := newLimitedBuffer(h.opts.OutputLimitBytes)
	stderr := newLimitedBuffer(detailLimit)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	runErr := cmd.Run()
	// background children must not outlive the call
	_ = killGroup(cmd)
	cg.kill()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	out := &domain.HandlerOutput{
		Stdout:   stdout.String(),
		MemoryMB: maxRSSMegabytes(cmd.ProcessState),
	}
	if peak := cg.peakMB(); peak > 0 {
		out.MemoryMB = peak
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("failed to start program: %w", runErr)
		}
		out.Verdict = domain.StatusRuntimeError
		out.Detail = strings.TrimSpace(stderr.String())
		if out.Detail == "" {
			out.Detail = exitErr.Error()
		}
	}

	switch {
	case cg.oomKilled():
		out.Verdict = domain.StatusMemoryLimitExceeded
	case h.opts.MemoryLimitMB > 0 && out.MemoryMB > float64(h.opts.MemoryLimitMB):
		out.Verdict = domain.StatusMemoryLimitExceeded
	case stdout.Overflowed():
		out.Verdict = domain.StatusOutputLimitExceeded
	}

	h.logger.Debug("Process finished", "language", h.lang.ID, "verdict", out.Verdict, "memoryMB", out.MemoryMB)
	return out, nil
}
