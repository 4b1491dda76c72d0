package executor

import (
	"fmt"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

// Registration pairs a handler with the aliases it answers to
type Registration struct {
	Handler secondary.LanguageHandler
	Aliases []string
}

// BuildHandlers creates one handler per catalog language for the given mode.
// The returned func releases resources held by the handlers.
func BuildHandlers(cfg *config.ExecutionConfig, langs []domain.LanguageConfig, logger primary.Logger) ([]Registration, func() error, error) {
	opts := ProcessOptions{
		WorkDir:          cfg.WorkDir,
		OutputLimitBytes: cfg.OutputLimitBytes,
		MemoryLimitMB:    cfg.MemoryLimitMB,
		CgroupRoot:       cfg.CgroupRoot,
		PidsLimit:        cfg.PidsLimit,
	}
	noop := func() error { return nil }

	switch cfg.Mode {
	case config.ModeSimulated, "":
		aliases := make(map[string][]string, len(langs))
		for _, l := range langs {
			aliases[l.ID] = l.Aliases
		}
		var regs []Registration
		for _, h := range NewSimulatedHandlers() {
			regs = append(regs, Registration{Handler: h, Aliases: aliases[h.Language()]})
		}
		return regs, noop, nil

	case config.ModeProcess:
		regs := make([]Registration, 0, len(langs))
		for _, l := range langs {
			regs = append(regs, Registration{
				Handler: NewProcessHandler(l, opts, logger),
				Aliases: l.Aliases,
			})
		}
		return regs, noop, nil

	case config.ModeDocker:
		cli, err := NewDockerClient()
		if err != nil {
			return nil, nil, err
		}
		regs := make([]Registration, 0, len(langs))
		for _, l := range langs {
			if l.Image == "" {
				logger.Warn("Skipping language without image", "language", l.ID)
				continue
			}
			regs = append(regs, Registration{
				Handler: NewDockerHandler(cli, l, opts, logger),
				Aliases: l.Aliases,
			})
		}
		return regs, cli.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown execution mode %q", cfg.Mode)
}
