package config

import "time"

const (
	ModeSimulated = "simulated"
	ModeProcess   = "process"
	ModeDocker    = "docker"
)

type ExecutionConfig struct {
	Mode             string
	QuickTestTimeout time.Duration
	FullTestTimeout  time.Duration
	MaxCodeLength    int
	Parallelism      int
	MemoryLimitMB    int
	OutputLimitBytes int
	WorkDir          string
	CatalogPath      string
	CgroupRoot       string
	PidsLimit        int
}

func NewExecutionConfig() *ExecutionConfig {
	return &ExecutionConfig{
		Mode:             getEnv("EXECUTION_MODE", ModeSimulated),
		QuickTestTimeout: getMillisEnv("QUICK_TEST_TIMEOUT_MS", 3000),
		FullTestTimeout:  getMillisEnv("FULL_TEST_TIMEOUT_MS", 10000),
		MaxCodeLength:    getIntEnv("MAX_CODE_LENGTH", 10000),
		Parallelism:      getIntEnv("EXECUTION_PARALLELISM", 1),
		MemoryLimitMB:    getIntEnv("MEMORY_LIMIT_MB", 128),
		OutputLimitBytes: getIntEnv("OUTPUT_LIMIT_BYTES", 64*1024),
		WorkDir:          getEnv("EXECUTION_WORK_DIR", ""),
		CatalogPath:      getEnv("LANGUAGE_CATALOG_PATH", ""),
		CgroupRoot:       getEnv("EXECUTION_CGROUP_ROOT", ""),
		PidsLimit:        getIntEnv("EXECUTION_PIDS_LIMIT", 64),
	}
}
