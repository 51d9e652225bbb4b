package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"varologs/internal/catalog"
	"varologs/internal/config"
	"varologs/internal/credentials"
	"varologs/internal/daemonrun"
	"varologs/internal/language"
	"varologs/internal/logging"
	"varologs/internal/media"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// openStore opens the catalog database for read-mostly CLI commands.
func (c *commandContext) openStore() (*catalog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return catalog.Open(cfg)
}

// keyManager builds a credential manager with the same discovery rules the
// server uses. CLI output stays quiet; failures surface as errors.
func (c *commandContext) keyManager() (*credentials.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return daemonrun.NewKeyManager(cfg, logging.NewNop()), nil
}

// typeLabel renders t with its icon in the configured prompt language.
func (c *commandContext) typeLabel(t media.Type) string {
	tag := language.Match("")
	if c.config != nil {
		tag = language.Match(c.config.AI.PromptLanguage)
	}
	return t.Icon() + " " + t.Label(tag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
