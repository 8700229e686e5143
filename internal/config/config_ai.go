package config

// Operation names shared by config accessors, prompt loading and the AI service.
const (
	OperationEnhance     = "enhance"
	OperationCoverLetter = "coverLetter"
)

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	if opCfg.MaxOutputTokens == nil {
		opCfg.MaxOutputTokens = &c.AI.MaxOutputTokens
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetEnhanceConfig returns the AI configuration for experience enhancement with fallback to global config
func (c *Config) GetEnhanceConfig() OperationAIConfig {
	config := c.AI.Enhance
	c.applyOperationDefaults(&config)

	sys, user := &config.CustomPrompts.SystemPrompts, &config.CustomPrompts.UserPrompts
	global := c.AI.CustomPrompts
	fallback(&sys.EnhanceExperience, global.SystemPrompts.EnhanceExperience)
	fallback(&user.EnhanceExperience, global.UserPrompts.EnhanceExperience)
	fallback(&sys.EnhanceExperienceFile, global.SystemPrompts.EnhanceExperienceFile)
	fallback(&user.EnhanceExperienceFile, global.UserPrompts.EnhanceExperienceFile)

	return config
}

// GetCoverLetterConfig returns the AI configuration for cover letters with fallback to global config
func (c *Config) GetCoverLetterConfig() OperationAIConfig {
	config := c.AI.CoverLetter
	c.applyOperationDefaults(&config)

	sys, user := &config.CustomPrompts.SystemPrompts, &config.CustomPrompts.UserPrompts
	global := c.AI.CustomPrompts
	fallback(&sys.CoverLetter, global.SystemPrompts.CoverLetter)
	fallback(&user.CoverLetter, global.UserPrompts.CoverLetter)
	fallback(&sys.CoverLetterFile, global.SystemPrompts.CoverLetterFile)
	fallback(&user.CoverLetterFile, global.UserPrompts.CoverLetterFile)

	return config
}

// GetOperationConfig returns the resolved configuration for a named operation.
func (c *Config) GetOperationConfig(operation string) OperationAIConfig {
	if operation == OperationCoverLetter {
		return c.GetCoverLetterConfig()
	}
	return c.GetEnhanceConfig()
}

func fallback(target *string, value string) {
	if *target == "" {
		*target = value
	}
}

// GetLoadedEnhancePrompts returns a copy of the loaded prompts for experience enhancement
func (c *Config) GetLoadedEnhancePrompts() OperationLoadedPrompts {
	return GetPromptsForOperation(OperationEnhance)
}

// GetLoadedCoverLetterPrompts returns a copy of the loaded prompts for cover letters
func (c *Config) GetLoadedCoverLetterPrompts() OperationLoadedPrompts {
	return GetPromptsForOperation(OperationCoverLetter)
}

// GetLoadedGlobalPrompts returns a copy of the loaded global prompts
func (c *Config) GetLoadedGlobalPrompts() LoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts.Global
}
