package config

import (
	"sync"
)

var (
	loadedPrompts   AllLoadedPrompts
	loadedPromptsMu sync.RWMutex
)

// LoadedPrompts holds the content of prompts loaded from files
type LoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// LoadedSystemPrompts contains loaded system-level instructions
type LoadedSystemPrompts struct {
	EnhanceExperience string
	CoverLetter       string
}

// LoadedUserPrompts contains loaded user-level prompt templates
type LoadedUserPrompts struct {
	EnhanceExperience string
	CoverLetter       string
}

// OperationLoadedPrompts holds loaded prompts for a specific operation
type OperationLoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// AllLoadedPrompts holds all loaded prompts for all operations
type AllLoadedPrompts struct {
	Global      LoadedPrompts
	Enhance     OperationLoadedPrompts
	CoverLetter OperationLoadedPrompts
}

// GetPromptsForOperation returns a copy of the loaded prompts for an operation type.
// Operation-specific file content wins over global file content.
func GetPromptsForOperation(operationType string) OperationLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()

	global := loadedPrompts.Global
	var result OperationLoadedPrompts

	switch operationType {
	case OperationEnhance:
		result = loadedPrompts.Enhance
	case OperationCoverLetter:
		result = loadedPrompts.CoverLetter
	}

	fallback(&result.SystemPrompts.EnhanceExperience, global.SystemPrompts.EnhanceExperience)
	fallback(&result.SystemPrompts.CoverLetter, global.SystemPrompts.CoverLetter)
	fallback(&result.UserPrompts.EnhanceExperience, global.UserPrompts.EnhanceExperience)
	fallback(&result.UserPrompts.CoverLetter, global.UserPrompts.CoverLetter)

	return result
}
