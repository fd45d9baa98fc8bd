package config

import "fmt"

// Validate checks the configuration for the serve and migrate commands.
// Fail-fast: called from Load so a bad configuration never reaches wiring.
func (c *Config) Validate() error {
	if c.FlashModel == "" {
		return fmt.Errorf("%w: flash_model is empty", ErrInvalidModelName)
	}
	if c.ProModel == "" {
		return fmt.Errorf("%w: pro_model is empty", ErrInvalidModelName)
	}
	if c.ImageModel == "" {
		return fmt.Errorf("%w: image_model is empty", ErrInvalidModelName)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalidDataDir)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("%w: http_addr is empty", ErrInvalidAddr)
	}
	if c.ContextMemoryCount < 1 || c.ContextMemoryCount > MaxContextMemoryCount {
		return fmt.Errorf("%w: %d (allowed 1..%d)",
			ErrInvalidContextCount, c.ContextMemoryCount, MaxContextMemoryCount)
	}
	if c.RequestsPerMinute < 1 || c.RequestsPerMinute > 600 {
		return fmt.Errorf("%w: %d (allowed 1..600)", ErrInvalidRate, c.RequestsPerMinute)
	}
	return nil
}

// ValidateServe additionally requires the API key, which only the
// assistant-facing commands need. The migrate and export commands work
// offline.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
	}
	return nil
}
