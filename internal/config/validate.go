package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateSimilarity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.ProbeTimeout <= 0 {
		return errors.New("tools.probe_timeout must be positive")
	}
	if c.Tools.ExtractTimeout <= 0 {
		return errors.New("tools.extract_timeout must be positive")
	}
	return nil
}

func (c *Config) validateSimilarity() error {
	if c.Similarity.FrameSize < 16 || c.Similarity.FrameSize > 1024 {
		return fmt.Errorf("similarity.frame_size must be between 16 and 1024, got %d", c.Similarity.FrameSize)
	}
	if c.Similarity.DefaultThreshold < 0 || c.Similarity.DefaultThreshold > 1 {
		return fmt.Errorf("similarity.default_threshold must be between 0 and 1, got %g", c.Similarity.DefaultThreshold)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
