package config

const (
	defaultProvider       = "openrouter"
	defaultModelName      = "anthropic/claude-sonnet-4"
	defaultOutputDir      = "output"
	defaultMaxTokens      = 8192
	defaultTemperature    = 0.7
	defaultMinCallGapMS   = 500
	defaultLeadMaxSteps   = 50
	defaultSubMaxSteps    = 30
	defaultEditorMaxSteps = 10
	defaultMaxTurns       = 20
	defaultKeepLastTurns  = 6
	defaultMaxResults     = 5
	defaultSearchDepth    = "advanced"
)

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	reflection := true
	temperature := defaultTemperature
	return &Config{
		Research: ResearchConfig{
			Provider:       defaultProvider,
			ModelName:      defaultModelName,
			OutputDir:      defaultOutputDir,
			MaxTokens:      defaultMaxTokens,
			Temperature:    &temperature,
			MinCallGapMS:   defaultMinCallGapMS,
			LeadMaxSteps:   defaultLeadMaxSteps,
			SubMaxSteps:    defaultSubMaxSteps,
			EditorMaxSteps: defaultEditorMaxSteps,
			Reflection:     &reflection,
		},
		Memory: MemoryConfig{
			MaxTurns:      defaultMaxTurns,
			KeepLastTurns: defaultKeepLastTurns,
		},
		Search: SearchConfig{
			MaxResults: defaultMaxResults,
			Depth:      defaultSearchDepth,
		},
		Logging: defaultLoggingConfig(),
	}
}

func defaultLoggingConfig() LoggingConfig {
	enabled := true
	return LoggingConfig{
		Enabled: &enabled,
		Level:   "info",
		Stdout:  true,
		File:    "logs/deepscout.log",
	}
}

func (c *Config) applyDefaults() {
	if c.Research.Provider == "" {
		c.Research.Provider = defaultProvider
	}
	if c.Research.ModelName == "" {
		c.Research.ModelName = defaultModelName
	}
	if c.Research.OutputDir == "" {
		c.Research.OutputDir = defaultOutputDir
	}
	if c.Research.MaxTokens <= 0 {
		c.Research.MaxTokens = defaultMaxTokens
	}
	// An explicit temperature: 0 in the file is a valid setting, so only
	// a missing field falls back to the default.
	if c.Research.Temperature == nil {
		temperature := float64(defaultTemperature)
		c.Research.Temperature = &temperature
	}
	if c.Research.MinCallGapMS <= 0 {
		c.Research.MinCallGapMS = defaultMinCallGapMS
	}
	if c.Research.LeadMaxSteps <= 0 {
		c.Research.LeadMaxSteps = defaultLeadMaxSteps
	}
	if c.Research.SubMaxSteps <= 0 {
		c.Research.SubMaxSteps = defaultSubMaxSteps
	}
	if c.Research.EditorMaxSteps <= 0 {
		c.Research.EditorMaxSteps = defaultEditorMaxSteps
	}
	if c.Research.Reflection == nil {
		on := true
		c.Research.Reflection = &on
	}

	if c.Memory.MaxTurns <= 0 {
		c.Memory.MaxTurns = defaultMaxTurns
	}
	// Zero keepLastTurns is a valid setting (summarize everything), so only
	// negative values fall back to the default.
	if c.Memory.KeepLastTurns < 0 {
		c.Memory.KeepLastTurns = defaultKeepLastTurns
	}

	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = defaultMaxResults
	}
	if c.Search.Depth == "" {
		c.Search.Depth = defaultSearchDepth
	}

	def := defaultLoggingConfig()
	if c.Logging == (LoggingConfig{}) {
		c.Logging = def
		return
	}
	hasAny := c.Logging.Level != "" || c.Logging.File != "" || c.Logging.Stdout
	if c.Logging.Enabled == nil && hasAny {
		enabled := true
		c.Logging.Enabled = &enabled
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Level
	}
	if c.Logging.File == "" {
		c.Logging.File = def.File
	}
	if c.Logging.Enabled == nil {
		c.Logging.Enabled = def.Enabled
	}
}
