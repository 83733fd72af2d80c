package config

import (
	"fmt"
	"os"
	"slices"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.StorageDir == "" && !c.Fetch.Remote() {
		return fmt.Errorf("storage_dir is required")
	}
	if c.OutputFormat != "" && !slices.Contains([]string{OutputAuto, OutputText, OutputMarkdown, OutputJSON}, c.OutputFormat) {
		return fmt.Errorf("invalid output %q: want auto, text, markdown or json", c.OutputFormat)
	}
	if ui := c.UI; ui != nil {
		if ui.Port < 0 || ui.Port > 65535 {
			return fmt.Errorf("invalid ui.port %d", ui.Port)
		}
		if ui.PageSize < 0 {
			return fmt.Errorf("invalid ui.page_size %d", ui.PageSize)
		}
	}
	return nil
}

// ValidateDirectories checks if required directories exist.
func (c *Config) ValidateDirectories() error {
	if c.Fetch.Remote() {
		return nil
	}
	if _, err := os.Stat(c.StorageDir); os.IsNotExist(err) {
		return fmt.Errorf("storage directory does not exist: %s\nHint: Create the directory or use --storage-dir to specify a different path", c.StorageDir)
	}
	return nil
}
