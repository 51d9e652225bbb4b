package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAI(); err != nil {
		return err
	}
	if err := c.validateCovers(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q must be host:port: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateAI() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("ai.provider must be %q or %q, got %q", ProviderGemini, ProviderOpenRouter, c.AI.Provider)
	}
	if len(c.AI.Models) == 0 {
		return errors.New("ai.models must list at least one model")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return errors.New("ai.temperature must be between 0 and 2")
	}
	if c.AI.MaxOutputTokens <= 0 {
		return errors.New("ai.max_output_tokens must be positive")
	}
	if c.AI.AttemptTimeoutSeconds <= 0 {
		return errors.New("ai.attempt_timeout_seconds must be positive")
	}
	switch c.AI.Schema {
	case SchemaBasic, SchemaExtended:
	default:
		return fmt.Errorf("ai.schema must be %q or %q, got %q", SchemaBasic, SchemaExtended, c.AI.Schema)
	}
	return nil
}

func (c *Config) validateCovers() error {
	if c.Covers.RequestsPerMinute < 0 {
		return errors.New("covers.requests_per_minute must be positive")
	}
	if c.Covers.TimeoutSeconds < 0 {
		return errors.New("covers.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.AIRequestsPerMinute < 0 {
		return errors.New("server.ai_requests_per_minute must be positive")
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
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
