package domain

// LanguageConfig describes one supported language
type LanguageConfig struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Version        string   `yaml:"version" json:"version"`
	Extension      string   `yaml:"extension" json:"extension"`
	Aliases        []string `yaml:"aliases" json:"aliases,omitempty"`
	SourceFile     string   `yaml:"source_file" json:"-"`
	CompileCommand string   `yaml:"compile_command" json:"-"`
	RunCommand     string   `yaml:"run_command" json:"-"`
	Image          string   `yaml:"image" json:"-"`
	MemoryLimitMB  int      `yaml:"memory_limit_mb" json:"memory_limit_mb"`
}

// NeedsCompile reports whether a compile step precedes the run.
func (l LanguageConfig) NeedsCompile() bool {
	return l.CompileCommand != ""
}
