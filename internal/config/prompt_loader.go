package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// promptFile ties a configured file path to the slot its content is loaded into.
type promptFile struct {
	path      string
	kind      string // "system" or "user"
	operation string
	target    *string
}

// promptFiles enumerates every configurable prompt file, global first.
func (c *Config) promptFiles(into *AllLoadedPrompts) []promptFile {
	g, e, cl := c.AI.CustomPrompts, c.AI.Enhance.CustomPrompts, c.AI.CoverLetter.CustomPrompts
	return []promptFile{
		{g.SystemPrompts.EnhanceExperienceFile, "system", "enhanceExperience", &into.Global.SystemPrompts.EnhanceExperience},
		{g.SystemPrompts.CoverLetterFile, "system", "coverLetter", &into.Global.SystemPrompts.CoverLetter},
		{g.UserPrompts.EnhanceExperienceFile, "user", "enhanceExperience", &into.Global.UserPrompts.EnhanceExperience},
		{g.UserPrompts.CoverLetterFile, "user", "coverLetter", &into.Global.UserPrompts.CoverLetter},

		{e.SystemPrompts.EnhanceExperienceFile, "enhance system", "enhanceExperience", &into.Enhance.SystemPrompts.EnhanceExperience},
		{e.UserPrompts.EnhanceExperienceFile, "enhance user", "enhanceExperience", &into.Enhance.UserPrompts.EnhanceExperience},
		{cl.SystemPrompts.CoverLetterFile, "coverLetter system", "coverLetter", &into.CoverLetter.SystemPrompts.CoverLetter},
		{cl.UserPrompts.CoverLetterFile, "coverLetter user", "coverLetter", &into.CoverLetter.UserPrompts.CoverLetter},
	}
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	var fresh AllLoadedPrompts
	count := 0
	for _, pf := range c.promptFiles(&fresh) {
		if pf.path == "" {
			continue
		}
		content, err := loadPromptFromFile(pf.path, pf.kind, pf.operation)
		if err != nil {
			return fmt.Errorf("failed to load %s %s prompt: %w", pf.kind, pf.operation, err)
		}
		*pf.target = content
		count++
	}

	loadedPromptsMu.Lock()
	loadedPrompts = fresh
	loadedPromptsMu.Unlock()

	if count == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", count)
	}
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	var scratch AllLoadedPrompts
	for _, pf := range c.promptFiles(&scratch) {
		if pf.path == "" {
			continue
		}
		absPath, err := filepath.Abs(pf.path)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", pf.kind, pf.operation, pf.path))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", pf.kind, pf.operation, absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}
