package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

const (
	containerWorkDir  = "/workspace"
	compileFailedExit = 97
	compileLogFile    = "compile.log"
	inputFile         = "input.txt"
	pidsLimit         = int64(64)

	memorySampleInterval = 10 * time.Millisecond
)

// containerSpec is what the handler needs from a container runtime.
type containerSpec struct {
	Image         string
	Cmd           []string
	HostDir       string
	MemoryLimitMB int
}

type containerRuntime interface {
	Create(ctx context.Context, spec containerSpec) (string, error)
	Start(ctx context.Context, id string) error
	Wait(ctx context.Context, id string) (int64, error)
	OOMKilled(ctx context.Context, id string) (bool, error)
	// MemoryUsage returns the bytes the container uses right now
	MemoryUsage(ctx context.Context, id string) (uint64, error)
	Logs(ctx context.Context, id string) (io.ReadCloser, error)
	Remove(ctx context.Context, id string) error
}

// NewDockerClient connects using the DOCKER_* environment
func NewDockerClient() (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return cli, nil
}

type dockerRuntime struct {
	cli *client.Client
}

func (d *dockerRuntime) Create(ctx context.Context, spec containerSpec) (string, error) {
	pids := pidsLimit
	resp, err := d.cli.ContainerCreate(ctx,
		&container.Config{
			Image:           spec.Image,
			Cmd:             spec.Cmd,
			WorkingDir:      containerWorkDir,
			NetworkDisabled: true,
		},
		&container.HostConfig{
			NetworkMode: "none",
			Resources: container.Resources{
				Memory:     int64(spec.MemoryLimitMB) * 1024 * 1024,
				MemorySwap: int64(spec.MemoryLimitMB) * 1024 * 1024,
				PidsLimit:  &pids,
			},
			Binds: []string{
				fmt.Sprintf("%s:%s:rw", spec.HostDir, containerWorkDir),
			},
		}, nil, nil, "")
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (d *dockerRuntime) Start(ctx context.Context, id string) error {
	return d.cli.ContainerStart(ctx, id, container.StartOptions{})
}

func (d *dockerRuntime) Wait(ctx context.Context, id string) (int64, error) {
	statusCh, errCh := d.cli.ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("container wait ended without status")
	case status := <-statusCh:
		if status.Error != nil {
			return status.StatusCode, fmt.Errorf("container wait: %s", status.Error.Message)
		}
		return status.StatusCode, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (d *dockerRuntime) OOMKilled(ctx context.Context, id string) (bool, error) {
	info, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		return false, err
	}
	if info.ContainerJSONBase == nil || info.State == nil {
		return false, nil
	}
	return info.State.OOMKilled, nil
}

func (d *dockerRuntime) MemoryUsage(ctx context.Context, id string) (uint64, error) {
	resp, err := d.cli.ContainerStatsOneShot(ctx, id)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var stats container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return 0, fmt.Errorf("failed to decode container stats: %w", err)
	}
	return memoryInUse(stats.MemoryStats), nil
}

// memoryInUse picks the best figure the daemon reports: the recorded peak on
// cgroup v1, else resident anonymous memory, else raw usage.
func memoryInUse(m container.MemoryStats) uint64 {
	if m.MaxUsage > 0 {
		return m.MaxUsage
	}
	if rss := m.Stats["rss"]; rss > 0 {
		return rss
	}
	if anon := m.Stats["anon"]; anon > 0 {
		return anon
	}
	return m.Usage
}

func (d *dockerRuntime) Logs(ctx context.Context, id string) (io.ReadCloser, error) {
	return d.cli.ContainerLogs(ctx, id, container.LogsOptions{ShowStdout: true, ShowStderr: true})
}

func (d *dockerRuntime) Remove(ctx context.Context, id string) error {
	return d.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true})
}

var _ secondary.LanguageHandler = (*DockerHandler)(nil)

// DockerHandler runs every call in a fresh container without network and
// with a memory cap. The container is force-removed when the call returns.
type DockerHandler struct {
	lang    domain.LanguageConfig
	opts    ProcessOptions
	runtime containerRuntime
	logger  primary.Logger
}

func NewDockerHandler(cli *client.Client, lang domain.LanguageConfig, opts ProcessOptions, logger primary.Logger) *DockerHandler {
	return newDockerHandler(&dockerRuntime{cli: cli}, lang, opts, logger)
}

func newDockerHandler(rt containerRuntime, lang domain.LanguageConfig, opts ProcessOptions, logger primary.Logger) *DockerHandler {
	if lang.MemoryLimitMB > 0 {
		opts.MemoryLimitMB = lang.MemoryLimitMB
	}
	return &DockerHandler{lang: lang, opts: opts, runtime: rt, logger: logger}
}

func (h *DockerHandler) Language() string {
	return h.lang.ID
}

// script builds the sh -c body. A compile failure exits with compileFailedExit.
func (h *DockerHandler) script() (string, error) {
	vars := commandVars{
		Src: containerWorkDir + "/" + h.lang.SourceFile,
		Bin: containerWorkDir + "/main",
		Dir: containerWorkDir,
	}
	var parts []string
	if h.lang.NeedsCompile() {
		argv, err := expandCommand(h.lang.CompileCommand, vars)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s > %s/%s 2>&1 || exit %d",
			shellQuote(argv), containerWorkDir, compileLogFile, compileFailedExit))
	}
	argv, err := expandCommand(h.lang.RunCommand, vars)
	if err != nil {
		return "", err
	}
	parts = append(parts, fmt.Sprintf("exec %s < %s/%s", shellQuote(argv), containerWorkDir, inputFile))
	return strings.Join(parts, "; "), nil
}

func (h *DockerHandler) Execute(ctx context.Context, code, input string) (*domain.HandlerOutput, error) {
	script, err := h.script()
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(h.opts.WorkDir, h.lang.ID+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)
	// the container user may differ from ours
	if err := os.Chmod(dir, 0o777); err != nil {
		return nil, fmt.Errorf("failed to prepare work dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, h.lang.SourceFile), []byte(code), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write source: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, inputFile), []byte(input), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write input: %w", err)
	}

	id, err := h.runtime.Create(ctx, containerSpec{
		Image:         h.lang.Image,
		Cmd:           []string{"sh", "-c", script},
		HostDir:       dir,
		MemoryLimitMB: h.opts.MemoryLimitMB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}
	defer func() {
		if err := h.runtime.Remove(context.Background(), id); err != nil {
			h.logger.Warn("Failed to remove container", "containerId", id, "error", err)
		}
	}()

	if err := h.runtime.Start(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	sampler := h.sampleMemory(ctx, id)
	exitCode, err := h.runtime.Wait(ctx, id)
	peakMB := sampler.stop()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to wait for container: %w", err)
	}

	if exitCode == compileFailedExit && h.lang.NeedsCompile() {
		detail, _ := os.ReadFile(filepath.Join(dir, compileLogFile))
		if len(detail) > detailLimit {
			detail = detail[:detailLimit]
		}
		return &domain.HandlerOutput{
			Verdict: domain.StatusCompileError,
			Detail:  strings.TrimSpace(string(detail)),
		}, nil
	}

	stdout := newLimitedBuffer(h.opts.OutputLimitBytes)
	stderr := newLimitedBuffer(detailLimit)
	logs, err := h.runtime.Logs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read container logs: %w", err)
	}
	defer logs.Close()
	if _, err := stdcopy.StdCopy(stdout, stderr, logs); err != nil {
		return nil, fmt.Errorf("failed to demux container logs: %w", err)
	}

	out := &domain.HandlerOutput{Stdout: stdout.String(), MemoryMB: peakMB}
	oom, err := h.runtime.OOMKilled(ctx, id)
	if err != nil {
		h.logger.Warn("Failed to inspect container", "containerId", id, "error", err)
	}

	switch {
	case oom:
		out.Verdict = domain.StatusMemoryLimitExceeded
	case exitCode != 0:
		out.Verdict = domain.StatusRuntimeError
		out.Detail = strings.TrimSpace(stderr.String())
		if out.Detail == "" {
			out.Detail = fmt.Sprintf("exit status %d", exitCode)
		}
	case stdout.Overflowed():
		out.Verdict = domain.StatusOutputLimitExceeded
	}
	return out, nil
}

// memorySampler polls container stats while the program runs and keeps the peak
type memorySampler struct {
	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
	peak   uint64
}

func (h *DockerHandler) sampleMemory(ctx context.Context, id string) *memorySampler {
	ctx, cancel := context.WithCancel(ctx)
	s := &memorySampler{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(memorySampleInterval)
		defer ticker.Stop()
		for {
			used, err := h.runtime.MemoryUsage(ctx, id)
			if err != nil && ctx.Err() == nil {
				h.logger.Debug("Failed to read container stats", "containerId", id, "error", err)
			}
			s.mu.Lock()
			if used > s.peak {
				s.peak = used
			}
			s.mu.Unlock()

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return s
}

// stop ends sampling and returns the peak in megabytes.
func (s *memorySampler) stop() float64 {
	s.cancel()
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.peak) / (1024 * 1024)
}
